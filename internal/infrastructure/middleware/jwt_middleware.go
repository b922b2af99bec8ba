package middleware

import (
	"context"
	"net/http"
	"strings"

	"chatroom_server/internal/model"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// gin 上下文中的键
const (
	CtxUserID = "user_id"
	CtxActor  = "acting_user"
)

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(errorx.HTTPStatus(code), gin.H{
		"code": code,
		"msg":  msg,
	})
}

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将用户 ID 存入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, errorx.CodeUnauthorized, "请先登录")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, errorx.CodeUnauthorized, "Token 格式错误，请使用 Bearer Token")
			return
		}

		claims, err := jwt.ParseTokenOfKind(parts[1], jwt.SubjectAccessToken)
		if err != nil {
			abort(c, errorx.CodeUnauthorized, "Token 已过期或无效，请重新登录")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Next()
	}
}

// ActorResolver 根据用户 ID 查询 ActingUser
type ActorResolver interface {
	ResolveActor(ctx context.Context, uuid string) (model.ActingUser, error)
}

// LoadActingUser 在 JWTAuth 之后执行，查询用户的验证状态等信息并存入上下文
func LoadActingUser(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := resolver.ResolveActor(c.Request.Context(), c.GetString(CtxUserID))
		if err != nil {
			code := errorx.GetCode(err)
			if code == errorx.CodeServerBusy {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code": code,
					"msg":  errorx.ErrServerBusy.Msg,
				})
				return
			}
			abort(c, errorx.CodeUnauthorized, "登录状态已失效，请重新登录")
			return
		}
		c.Set(CtxActor, actor)
		c.Next()
	}
}

// Actor 取出 LoadActingUser 写入的 ActingUser
func Actor(c *gin.Context) model.ActingUser {
	if v, ok := c.Get(CtxActor); ok {
		if actor, ok := v.(model.ActingUser); ok {
			return actor
		}
	}
	return model.ActingUser{Uuid: c.GetString(CtxUserID)}
}
