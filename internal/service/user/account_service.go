package user

import (
	"context"
	"strings"

	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/jwt"
	"chatroom_server/pkg/util/random"

	"go.uber.org/zap"
)

// Register 注册，用户名取邮箱 @ 之前的部分，注册后发送验证邮件
func (u *userInfoService) Register(ctx context.Context, req request.RegisterRequest) (*respond.UserRespond, error) {
	email := strings.TrimSpace(req.Email)
	if err := u.checkEmailDomain(email); err != nil {
		return nil, err
	}
	if req.Password != req.Password2 {
		return nil, errorx.New(errorx.CodeInvalidParam, "两次输入的密码不一致")
	}
	if err := u.checkEmailFree(email, ""); err != nil {
		return nil, err
	}

	newUser := model.UserInfo{
		Uuid:        random.NewUserUuid(),
		Email:       email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Nickname:    req.Nickname,
		Department:  req.Department,
		RawPassword: req.Password,
		IsActive:    true,
	}
	if err := u.repos.User.Create(&newUser); err != nil {
		if errorx.IsConflict(err) {
			return nil, u.duplicateErr(email, "")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	u.sendVerifyMailAsync(ctx, newUser)
	rsp := toUserRespond(&newUser)
	return &rsp, nil
}

// Login 邮箱密码登录，签发双 Token
func (u *userInfoService) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repos.User.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在，请注册")
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确，请重试")
	}
	if !user.IsActive {
		return nil, errorx.New(errorx.CodeForbidden, "账号已停用")
	}

	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 将 Refresh Token ID 存入缓存，新登录覆盖旧登录
	if err := u.cache.Set(ctx, constants.USER_TOKEN_PREFIX+user.Uuid, tokenID, u.conf.RefreshTokenTTL); err != nil {
		zap.L().Error("存储 Token ID 失败", zap.Error(err))
	}

	return &respond.LoginRespond{
		UserRespond:  toUserRespond(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetMyID 当前登录用户的 ID
func (u *userInfoService) GetMyID(actor model.ActingUser) string {
	return actor.Uuid
}

// GetUser 获取用户信息
func (u *userInfoService) GetUser(ctx context.Context, uuid string) (*respond.UserRespond, error) {
	user, err := u.findUser(uuid)
	if err != nil {
		return nil, err
	}
	rsp := toUserRespond(user)
	return &rsp, nil
}

// UpdateUser 修改个人资料，只能修改自己
// 修改邮箱后需要重新验证
func (u *userInfoService) UpdateUser(ctx context.Context, actor model.ActingUser, uuid string, req request.UpdateUserRequest) (*respond.UserRespond, error) {
	if actor.Uuid != uuid {
		return nil, errorx.New(errorx.CodeForbidden, "只能修改自己的资料")
	}
	user, err := u.findUser(uuid)
	if err != nil {
		return nil, err
	}

	emailChanged := false
	if email := strings.TrimSpace(req.Email); email != "" && email != user.Email {
		if err := u.checkEmailDomain(email); err != nil {
			return nil, err
		}
		if err := u.checkEmailFree(email, user.Uuid); err != nil {
			return nil, err
		}
		user.Email = email
		user.IsVerify = false
		emailChanged = true
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Department != "" {
		user.Department = req.Department
	}

	if err := u.repos.User.Update(user); err != nil {
		if errorx.IsConflict(err) {
			return nil, u.duplicateErr(user.Email, user.Uuid)
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	if emailChanged {
		u.sendVerifyMailAsync(ctx, *user)
	}
	rsp := toUserRespond(user)
	return &rsp, nil
}

// ChangePassword 修改密码，需要校验旧密码
func (u *userInfoService) ChangePassword(ctx context.Context, actor model.ActingUser, uuid string, req request.ChangePasswordRequest) error {
	if actor.Uuid != uuid {
		return errorx.New(errorx.CodeForbidden, "只能修改自己的密码")
	}
	if req.Password != req.Password2 {
		return errorx.New(errorx.CodeInvalidParam, "两次输入的密码不一致")
	}
	user, err := u.findUser(uuid)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.OldPassword) {
		return errorx.New(errorx.CodeInvalidPassword, "旧密码不正确")
	}
	user.RawPassword = req.Password
	if err := u.repos.User.Update(user); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	u.revokeRefreshToken(ctx, uuid)
	return nil
}

// ResolveActor 将 JWT 中的用户 ID 解析为 ActingUser，供中间件使用
func (u *userInfoService) ResolveActor(ctx context.Context, uuid string) (model.ActingUser, error) {
	user, err := u.repos.User.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return model.ActingUser{}, errorx.New(errorx.CodeUnauthorized, "用户不存在")
		}
		zap.L().Error(err.Error())
		return model.ActingUser{}, errorx.ErrServerBusy
	}
	if !user.IsActive {
		return model.ActingUser{}, errorx.New(errorx.CodeUnauthorized, "账号已停用")
	}
	return user.Actor(), nil
}
