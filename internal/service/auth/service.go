// Package auth 提供认证相关的业务逻辑
// 处理 Token 验证、刷新等功能
package auth

import (
	"context"

	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/jwt"

	"go.uber.org/zap"
)

// Service 认证服务实现
type Service struct {
	cache myredis.CacheService // 缓存服务（依赖倒置）
}

// NewAuthService 创建认证服务实例
func NewAuthService(cache myredis.CacheService) *Service {
	return &Service{
		cache: cache,
	}
}

// ValidateTokenID 验证用户的 Token ID 是否有效
// 用于实现单点登录互踢机制
func (s *Service) ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, constants.USER_TOKEN_PREFIX+userID)
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}

// Refresh 用 Refresh Token 换取新的 Access Token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*respond.TokenRespond, error) {
	claims, err := jwt.ParseTokenOfKind(refreshToken, jwt.SubjectRefreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "Refresh Token 无效或已过期")
	}

	valid, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		zap.L().Error("验证 Token ID 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !valid {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已在其他地方登录，请重新登录")
	}

	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.TokenRespond{AccessToken: accessToken}, nil
}
