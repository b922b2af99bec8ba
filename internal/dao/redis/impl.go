// Package redis 提供 CacheService 接口的 Redis 实现
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chatroom_server/pkg/errorx"
)

// workerPool 异步任务池，Redis 与本地缓存共用
type workerPool struct {
	taskChan chan func()
}

func newWorkerPool(workerNum, taskChanSize int) *workerPool {
	p := &workerPool{taskChan: make(chan func(), taskChanSize)}
	for i := 0; i < workerNum; i++ {
		go p.startWorker()
	}
	zap.L().Info("cache workers started", zap.Int("workers", workerNum), zap.Int("buffer", taskChanSize))
	return p
}

// startWorker 启动单个 Worker 消费循环，panic 后重启
func (p *workerPool) startWorker() {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("cache worker panic", zap.Any("recover", rec))
			go p.startWorker()
		}
	}()

	for task := range p.taskChan {
		if task != nil {
			task()
		}
	}
}

// SubmitTask 提交异步任务
func (p *workerPool) SubmitTask(action func()) {
	select {
	case p.taskChan <- action:
	default:
		// 降级：同步执行
		zap.L().Warn("cache task channel full, executing synchronously")
		action()
	}
}

// RedisCache Redis 缓存实现
// 同时实现 CacheService 与 AsyncCacheService：
// 只读写缓存的模块声明 CacheService，需要异步任务的模块声明 AsyncCacheService
type RedisCache struct {
	*workerPool
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存实例并启动 Worker Pool
func NewRedisCache(client *redis.Client, workerNum, taskChanSize int) *RedisCache {
	return &RedisCache{
		workerPool: newWorkerPool(workerNum, taskChanSize),
		client:     client,
	}
}

// Set 设置键值对并指定过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Get 获取键对应的值（键不存在返回空字符串和 nil）
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// GetOrError 获取键对应的值（键不存在返回错误）
func (r *RedisCache) GetOrError(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errorx.Wrapf(err, errorx.CodeNotFound, "redis key %s not found", key)
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Delete 删除键（如果存在）
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Unlink(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
	}
	return nil
}

// 确保 RedisCache 实现了 AsyncCacheService 接口
var _ AsyncCacheService = (*RedisCache)(nil)
