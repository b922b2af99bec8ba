// Package user 提供账号、邮箱验证、密码重置与站内通知的业务逻辑
package user

import (
	"context"
	"net/url"
	"strings"
	"time"

	"chatroom_server/internal/dao/mysql/repository"
	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/infrastructure/mailer"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/random"

	"go.uber.org/zap"
)

// Config 账号策略
type Config struct {
	AllowedEmailDomain string        // 为空表示不限制
	VerifyLinkBase     string        // 验证链接前缀，token 作为查询参数拼接
	ResetLinkBase      string        // 重置链接前缀
	RefreshTokenTTL    time.Duration // user_token: 的过期时间
}

// userInfoService 用户业务逻辑实现
// 通过构造函数注入 Repository、Cache 与 Mailer
type userInfoService struct {
	repos  *repository.Repositories
	cache  myredis.AsyncCacheService
	mailer mailer.Mailer
	conf   Config
}

// NewUserService 构造函数，注入所有依赖
func NewUserService(repos *repository.Repositories, cache myredis.AsyncCacheService, m mailer.Mailer, conf Config) *userInfoService {
	if conf.RefreshTokenTTL <= 0 {
		conf.RefreshTokenTTL = time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
	}
	return &userInfoService{repos: repos, cache: cache, mailer: m, conf: conf}
}

var errUserNotExist = errorx.New(errorx.CodeUserNotExist, "用户不存在")

// findUser 按 uuid 查找用户，未找到返回 UserNotExist
func (u *userInfoService) findUser(uuid string) (*model.UserInfo, error) {
	user, err := u.repos.User.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errUserNotExist
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	return user, nil
}

// checkEmailDomain 校验邮箱后缀
func (u *userInfoService) checkEmailDomain(email string) error {
	if u.conf.AllowedEmailDomain == "" {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(u.conf.AllowedEmailDomain)) {
		return errorx.Newf(errorx.CodeInvalidParam, "仅支持 %s 邮箱注册", u.conf.AllowedEmailDomain)
	}
	return nil
}

// checkEmailFree 邮箱与由邮箱派生的用户名都未被其他用户占用
func (u *userInfoService) checkEmailFree(email, selfUuid string) error {
	if other, err := u.repos.User.FindByEmail(email); err == nil && other.Uuid != selfUuid {
		return errorx.New(errorx.CodeUserExist, "该邮箱已被注册")
	} else if err != nil && !errorx.IsNotFound(err) {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	username := model.UsernameFromEmail(email)
	if other, err := u.repos.User.FindByUsername(username); err == nil && other.Uuid != selfUuid {
		return errorx.New(errorx.CodeUserExist, "用户名已存在")
	} else if err != nil && !errorx.IsNotFound(err) {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// duplicateErr 写入撞上唯一索引时重新区分是邮箱还是用户名被占用
func (u *userInfoService) duplicateErr(email, selfUuid string) error {
	if err := u.checkEmailFree(email, selfUuid); err != nil {
		return err
	}
	return errorx.New(errorx.CodeUserExist, "该邮箱已被注册")
}

// issueToken 生成一次性 token 存入缓存，返回带 token 的链接
func (u *userInfoService) issueToken(ctx context.Context, prefix, userUuid, linkBase string, ttl time.Duration) (string, error) {
	token, err := random.NewToken()
	if err != nil {
		zap.L().Error("生成 token 失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	if err := u.cache.Set(ctx, prefix+token, userUuid, ttl); err != nil {
		zap.L().Error("存储 token 失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	return linkBase + "?token=" + url.QueryEscape(token), nil
}

// consumeToken 读取并删除一次性 token，返回对应的用户 uuid
func (u *userInfoService) consumeToken(ctx context.Context, prefix, token string) (string, error) {
	userUuid, err := u.cache.Get(ctx, prefix+token)
	if err != nil {
		zap.L().Error("读取 token 失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	if userUuid == "" {
		return "", errorx.New(errorx.CodeBadRequest, "链接无效或已过期")
	}
	if err := u.cache.Delete(ctx, prefix+token); err != nil {
		zap.L().Warn("删除 token 失败", zap.Error(err))
	}
	return userUuid, nil
}

// sendVerifyMail 生成验证 token 并发送验证邮件
func (u *userInfoService) sendVerifyMail(ctx context.Context, user *model.UserInfo) error {
	link, err := u.issueToken(ctx, constants.VERIFY_TOKEN_PREFIX, user.Uuid, u.conf.VerifyLinkBase, constants.VERIFY_TOKEN_TTL)
	if err != nil {
		return err
	}
	if err := u.mailer.SendVerifyMail(ctx, user.Email, link); err != nil {
		zap.L().Error("发送验证邮件失败", zap.String("email", user.Email), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// sendVerifyMailAsync 注册、改邮箱后异步发送验证邮件，失败只记录日志
func (u *userInfoService) sendVerifyMailAsync(ctx context.Context, user model.UserInfo) {
	ctx = context.WithoutCancel(ctx)
	u.cache.SubmitTask(func() {
		_ = u.sendVerifyMail(ctx, &user)
	})
}

// revokeRefreshToken 密码变更后使已签发的 Refresh Token 失效
func (u *userInfoService) revokeRefreshToken(ctx context.Context, userUuid string) {
	if err := u.cache.Delete(ctx, constants.USER_TOKEN_PREFIX+userUuid); err != nil {
		zap.L().Warn("删除 token id 失败", zap.String("user", userUuid), zap.Error(err))
	}
}

func toUserRespond(user *model.UserInfo) respond.UserRespond {
	return respond.UserRespond{
		Uuid:       user.Uuid,
		Email:      user.Email,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Nickname:   user.Nickname,
		Department: user.Department,
		IsVerify:   user.IsVerify,
		CreatedAt:  user.CreatedAt.Format(constants.TIME_LAYOUT),
	}
}
