package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatroom_server/internal/config"
	"chatroom_server/internal/dao/memory"
	dao "chatroom_server/internal/dao/mysql"
	"chatroom_server/internal/dao/mysql/repository"
	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/internal/handler"
	"chatroom_server/internal/https_server"
	"chatroom_server/internal/infrastructure/logger"
	"chatroom_server/internal/infrastructure/mailer"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/service"
	"chatroom_server/pkg/util/jwt"
	"chatroom_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化存储
	var repos *repository.Repositories
	if conf.MainConfig.Storage == "memory" {
		repos = memory.New().Repositories()
		zap.L().Warn("使用内存存储，重启后数据丢失")
	} else {
		repos = dao.Init()
		zap.L().Info("数据库初始化成功")
	}

	// 4. 初始化缓存与异步任务池
	cache := myredis.Init()
	zap.L().Info("缓存初始化成功")

	// 5. 初始化 ID 生成与 JWT
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	if conf.JWTConfig.Secret == "" {
		zap.L().Fatal("jwtConfig.secret 未配置，请设置 CHATROOM_JWT_SECRET")
	}
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 6. 初始化房间事件推送
	publisher, err := notify.NewPublisher(conf)
	if err != nil {
		zap.L().Fatal("创建推送服务失败", zap.Error(err))
	}
	timeout := time.Duration(conf.NotifyConfig.Timeout) * time.Second
	var worker *notify.Worker
	if conf.NotifyConfig.Mode == notify.ModeAsynq {
		// asynq 只负责排队，worker 端仍通过 HTTP 投递
		delivery := notify.NewHTTPPublisher(conf.NotifyConfig.BaseURL, timeout)
		worker = notify.NewWorker(notify.AsynqRedisOpt(conf.RedisConfig), conf.NotifyConfig.Workers, delivery)
		if err := worker.Start(); err != nil {
			zap.L().Fatal("启动推送 worker 失败", zap.Error(err))
		}
	}
	hub := notify.NewHub(repos.Notification, publisher, cache, timeout)

	// 7. 初始化 Service 层 (依赖注入)
	services := service.NewServices(service.Deps{
		Repos:    repos,
		Cache:    cache,
		Notifier: hub,
		Mailer:   mailer.NewLogMailer(nil),
	}, conf)
	zap.L().Info("Service 层初始化成功")

	// 8. 初始化 Handler 与 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化校验翻译器失败", zap.Error(err))
	}
	engine := https_server.Init(handler.NewHandlers(services), services.User)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("服务器关闭异常", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := publisher.Close(); err != nil {
		zap.L().Warn("关闭推送服务失败", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
	_ = zap.L().Sync()
}
