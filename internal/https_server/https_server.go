// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"chatroom_server/internal/config"
	"chatroom_server/internal/handler"
	"chatroom_server/internal/infrastructure/logger"
	"chatroom_server/internal/infrastructure/middleware"
	"chatroom_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// handlers: 通过依赖注入传入的 handler 聚合对象
// resolver: 将 token 中的用户 ID 解析为当前用户
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则
//  4. 按配置启用 TLS 重定向
//  5. 注册业务路由
func Init(handlers *handler.Handlers, resolver middleware.ActorResolver) *gin.Engine {
	conf := config.GetConfig()
	if conf.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 终止 TLS 时保持关闭
	if conf.MainConfig.TLSRedirect {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port, conf.MainConfig.Mode == "dev"))
	}

	rt := router.NewRouter(handlers, resolver)
	rt.RegisterRoutes(engine)

	return engine
}
