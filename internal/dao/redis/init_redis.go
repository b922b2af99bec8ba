// Package redis 提供 Redis 缓存操作的封装
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"strconv"

	"chatroom_server/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Addr 拼接地址：host:port
func Addr(conf config.RedisConfig) string {
	return conf.Host + ":" + strconv.Itoa(conf.Port)
}

// Init 初始化缓存服务
// redisConfig.host 为空时退化为本地缓存；worker 数与缓冲区大小取 notifyConfig，通知与缓存失效共用同一个池
func Init() AsyncCacheService {
	conf := config.GetConfig()
	workers, queueSize := conf.NotifyConfig.Workers, conf.NotifyConfig.QueueSize

	if conf.RedisConfig.Host == "" {
		zap.L().Warn("redis host 未配置，使用本地缓存")
		return NewLocalCache(workers, queueSize)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     Addr(conf.RedisConfig),
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: workers,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		zap.L().Fatal("连接 Redis 失败", zap.Error(err))
	}
	return NewRedisCache(client, workers, queueSize)
}
