package model

// ActingUser 发起请求的用户，由中间件解析后显式传入房间服务
type ActingUser struct {
	Uuid       string
	Username   string
	IsVerified bool
}

// Actor 由用户信息构造 ActingUser
func (u *UserInfo) Actor() ActingUser {
	return ActingUser{Uuid: u.Uuid, Username: u.Username, IsVerified: u.IsVerify}
}
