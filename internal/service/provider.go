// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"time"

	"chatroom_server/internal/config"
	"chatroom_server/internal/dao/mysql/repository"
	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/internal/infrastructure/mailer"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/service/auth"
	"chatroom_server/internal/service/room"
	"chatroom_server/internal/service/user"
)

// Services 聚合所有 Service 实例
type Services struct {
	Room RoomService
	User UserService
	Auth AuthService
}

// Deps Service 层的外部依赖
type Deps struct {
	Repos    *repository.Repositories
	Cache    myredis.AsyncCacheService
	Notifier notify.Notifier
	Mailer   mailer.Mailer
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 接收 Repository、缓存、通知、邮件等依赖
//  2. 按配置创建各个 Service
//  3. 返回 Services 聚合
func NewServices(deps Deps, conf *config.Config) *Services {
	roomSvc := room.NewRoomService(deps.Repos, deps.Cache, deps.Notifier, room.Config{
		SystemAccount: conf.RoomConfig.SystemAccount,
		MaxAdminRooms: conf.RoomConfig.MaxAdminRooms,
	})
	userSvc := user.NewUserService(deps.Repos, deps.Cache, deps.Mailer, user.Config{
		AllowedEmailDomain: conf.AccountConfig.AllowedEmailDomain,
		VerifyLinkBase:     conf.AccountConfig.VerifyLinkBase,
		ResetLinkBase:      conf.AccountConfig.ResetLinkBase,
		RefreshTokenTTL:    time.Duration(conf.JWTConfig.RefreshTokenExpiry) * time.Hour,
	})
	authSvc := auth.NewAuthService(deps.Cache)

	return &Services{
		Room: roomSvc,
		User: userSvc,
		Auth: authSvc,
	}
}
