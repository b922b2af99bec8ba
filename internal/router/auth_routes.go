// Package router 提供 HTTP 路由注册
// 本文件定义无需认证的账号相关路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册公开路由
func (rt *Router) RegisterAuthRoutes(r *gin.Engine) {
	user := rt.handlers.User

	r.POST("/user/register", user.Register)
	r.POST("/user/login", user.Login)
	r.GET("/user/verify_email", user.VerifyEmail)
	r.POST("/user/forget_password", user.ForgetPassword)
	r.POST("/user/password_reset", user.ResetPassword)

	authGroup := r.Group("/auth")
	{
		// POST /auth/refresh - 使用 Refresh Token 换取新的 Access Token
		authGroup.POST("/refresh", rt.handlers.Auth.Refresh)
	}
}
