package auth

import (
	"context"
	"testing"
	"time"

	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresh(t *testing.T) {
	jwt.Init("test-secret", 15, 24)
	ctx := context.Background()
	cache := myredis.NewLocalCache(0, 0)
	svc := NewAuthService(cache)

	refresh, tokenID, err := jwt.GenerateRefreshToken("U1")
	require.NoError(t, err)

	// 未登录（缓存中没有 token id）
	_, err = svc.Refresh(ctx, refresh)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	require.NoError(t, cache.Set(ctx, constants.USER_TOKEN_PREFIX+"U1", tokenID, time.Hour))
	rsp, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	claims, err := jwt.ParseTokenOfKind(rsp.AccessToken, jwt.SubjectAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.UserID)

	// 新登录覆盖旧 token id
	require.NoError(t, cache.Set(ctx, constants.USER_TOKEN_PREFIX+"U1", "newer", time.Hour))
	_, err = svc.Refresh(ctx, refresh)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	access, err := jwt.GenerateAccessToken("U1")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, access)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}
