package respond

// UserRespond 用户信息
// 使用位置:
//   - internal/service/user: Register, GetUser, UpdateUser
type UserRespond struct {
	Uuid       string `json:"uuid"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Nickname   string `json:"nickname"`
	Department string `json:"department"`
	IsVerify   bool   `json:"is_verify"`
	CreatedAt  string `json:"created_at"`
}

// LoginRespond 登录响应
type LoginRespond struct {
	UserRespond
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenRespond 刷新 Token 响应
type TokenRespond struct {
	AccessToken string `json:"access_token"`
}

// NotificationRespond 站内通知
type NotificationRespond struct {
	Id          int64  `json:"id,string"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	CreatedTime string `json:"created_time"`
}
