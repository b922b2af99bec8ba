package redis

import (
	"context"
	"sync"
	"time"

	"chatroom_server/pkg/errorx"
)

type localEntry struct {
	value    string
	expireAt time.Time
}

// LocalCache 进程内缓存，redisConfig.host 为空时替代 Redis，也用于测试
type LocalCache struct {
	*workerPool
	mu      sync.RWMutex
	entries map[string]localEntry
	now     func() time.Time
}

// NewLocalCache 创建本地缓存实例
func NewLocalCache(workerNum, taskChanSize int) *LocalCache {
	return &LocalCache{
		workerPool: newWorkerPool(workerNum, taskChanSize),
		entries:    make(map[string]localEntry),
		now:        time.Now,
	}
}

func (l *LocalCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	e := localEntry{value: value}
	if ttl > 0 {
		e.expireAt = l.now().Add(ttl)
	}
	l.mu.Lock()
	l.entries[key] = e
	l.mu.Unlock()
	return nil
}

func (l *LocalCache) lookup(key string) (string, bool) {
	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expireAt.IsZero() && !l.now().Before(e.expireAt) {
		l.mu.Lock()
		delete(l.entries, key)
		l.mu.Unlock()
		return "", false
	}
	return e.value, true
}

func (l *LocalCache) Get(_ context.Context, key string) (string, error) {
	value, _ := l.lookup(key)
	return value, nil
}

func (l *LocalCache) GetOrError(_ context.Context, key string) (string, error) {
	value, ok := l.lookup(key)
	if !ok {
		return "", errorx.Newf(errorx.CodeNotFound, "cache key %s not found", key)
	}
	return value, nil
}

func (l *LocalCache) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
	return nil
}

var _ AsyncCacheService = (*LocalCache)(nil)
