package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatroom_server/internal/model"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]model.ActingUser

func (s stubResolver) ResolveActor(_ context.Context, uuid string) (model.ActingUser, error) {
	if actor, ok := s[uuid]; ok {
		return actor, nil
	}
	return model.ActingUser{}, errorx.New(errorx.CodeUnauthorized, "用户不存在")
}

func newEngine(resolver ActorResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTAuth(), LoadActingUser(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uuid": Actor(c).Uuid, "verified": Actor(c).IsVerified})
	})
	return r
}

func get(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	jwt.Init("test-secret", 15, 24)
	r := newEngine(stubResolver{"U1": {Uuid: "U1", IsVerified: true}})

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-jwt").Code)

	refresh, _, err := jwt.GenerateRefreshToken("U1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+refresh).Code)

	access, err := jwt.GenerateAccessToken("U1")
	require.NoError(t, err)
	w := get(r, "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uuid":"U1","verified":true}`, w.Body.String())
}

func TestLoadActingUserUnknownUser(t *testing.T) {
	jwt.Init("test-secret", 15, 24)
	r := newEngine(stubResolver{})
	access, err := jwt.GenerateAccessToken("U9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+access).Code)
}

func TestTlsHandlerRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TlsHandler("example.com", 443, false))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/ping", nil))
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://example.com:443/ping", w.Header().Get("Location"))
}
