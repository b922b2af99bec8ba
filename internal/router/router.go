// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"chatroom_server/internal/handler"
	"chatroom_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 handler 聚合对象与当前用户解析器
type Router struct {
	handlers *handler.Handlers
	resolver middleware.ActorResolver
}

func NewRouter(handlers *handler.Handlers, resolver middleware.ActorResolver) *Router {
	return &Router{handlers: handlers, resolver: resolver}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 公开路由直接挂在 engine 上，其余路由统一经过 JWT 认证与当前用户加载
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r) // 注册、登录、Token 刷新、邮箱验证、找回密码

	authed := r.Group("")
	authed.Use(middleware.JWTAuth(), middleware.LoadActingUser(rt.resolver))
	rt.RegisterUserRoutes(authed)
	rt.RegisterRoomRoutes(authed)
	rt.RegisterInvitationRoutes(authed)
}
