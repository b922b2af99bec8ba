package user

import (
	"context"
	"strings"

	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"

	"go.uber.org/zap"
)

// SendVerifyMail 重新发送邮箱验证邮件
func (u *userInfoService) SendVerifyMail(ctx context.Context, actor model.ActingUser) error {
	user, err := u.findUser(actor.Uuid)
	if err != nil {
		return err
	}
	if user.IsVerify {
		return errorx.New(errorx.CodeBadRequest, "邮箱已验证")
	}
	return u.sendVerifyMail(ctx, user)
}

// VerifyEmail 通过邮件中的 token 完成验证，token 只能使用一次
func (u *userInfoService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return errorx.New(errorx.CodeInvalidParam, "缺少 token")
	}
	userUuid, err := u.consumeToken(ctx, constants.VERIFY_TOKEN_PREFIX, token)
	if err != nil {
		return err
	}
	user, err := u.findUser(userUuid)
	if err != nil {
		return err
	}
	user.IsVerify = true
	if err := u.repos.User.Update(user); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// ForgetPassword 发送密码重置邮件
func (u *userInfoService) ForgetPassword(ctx context.Context, req request.ForgetPasswordRequest) error {
	user, err := u.repos.User.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeUserNotExist, "该邮箱未注册")
		}
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	link, err := u.issueToken(ctx, constants.RESET_TOKEN_PREFIX, user.Uuid, u.conf.ResetLinkBase, constants.RESET_TOKEN_TTL)
	if err != nil {
		return err
	}
	if err := u.mailer.SendResetMail(ctx, user.Email, link); err != nil {
		zap.L().Error("发送重置邮件失败", zap.String("email", user.Email), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// ResetPassword 通过重置 token 设置新密码
func (u *userInfoService) ResetPassword(ctx context.Context, req request.ResetPasswordRequest) error {
	if req.Password != req.Password2 {
		return errorx.New(errorx.CodeInvalidParam, "两次输入的密码不一致")
	}
	userUuid, err := u.consumeToken(ctx, constants.RESET_TOKEN_PREFIX, req.Token)
	if err != nil {
		return err
	}
	user, err := u.findUser(userUuid)
	if err != nil {
		return err
	}
	user.RawPassword = req.Password
	if err := u.repos.User.Update(user); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	u.revokeRefreshToken(ctx, userUuid)
	return nil
}
