package request

// RegisterRequest 用户注册请求
// 使用位置:
//   - internal/handler/user_handler.go: Register
//   - internal/service/user/account_service.go: Register
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email,max=100"`
	Password   string `json:"password" binding:"required,min=8,max=64"`
	Password2  string `json:"password2" binding:"required,eqfield=Password"`
	FirstName  string `json:"first_name" binding:"max=20"`
	LastName   string `json:"last_name" binding:"max=20"`
	Nickname   string `json:"nickname" binding:"max=20"`
	Department string `json:"department" binding:"max=30"`
}

// LoginRequest 邮箱密码登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Access Token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateUserRequest 修改个人资料，空字段不修改
type UpdateUserRequest struct {
	Email      string `json:"email" binding:"omitempty,email,max=100"`
	FirstName  string `json:"first_name" binding:"max=20"`
	LastName   string `json:"last_name" binding:"max=20"`
	Nickname   string `json:"nickname" binding:"max=20"`
	Department string `json:"department" binding:"max=30"`
}

// ChangePasswordRequest 修改密码
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	Password    string `json:"password" binding:"required,min=8,max=64"`
	Password2   string `json:"password2" binding:"required,eqfield=Password"`
}

// ForgetPasswordRequest 申请重置密码
type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest 通过邮件 token 重置密码
type ResetPasswordRequest struct {
	Token     string `json:"token" binding:"required"`
	Password  string `json:"password" binding:"required,min=8,max=64"`
	Password2 string `json:"password2" binding:"required,eqfield=Password"`
}
