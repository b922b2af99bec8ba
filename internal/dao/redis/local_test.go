package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"chatroom_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(1, 4)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "verify_email_abc", "U1", time.Minute))
	v, err := c.GetOrError(ctx, "verify_email_abc")
	require.NoError(t, err)
	assert.Equal(t, "U1", v)

	now = now.Add(2 * time.Minute)
	v, err = c.Get(ctx, "verify_email_abc")
	assert.NoError(t, err)
	assert.Empty(t, v)

	_, err = c.GetOrError(ctx, "verify_email_abc")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestLocalCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(1, 4)
	require.NoError(t, c.Set(ctx, "room_info_R1", "{}", 0))
	require.NoError(t, c.Delete(ctx, "room_info_R1"))
	v, _ := c.Get(ctx, "room_info_R1")
	assert.Empty(t, v)
}

func TestSubmitTaskFallsBackWhenFull(t *testing.T) {
	// 无 worker、零缓冲：任务只能同步执行
	c := NewLocalCache(0, 0)
	var wg sync.WaitGroup
	wg.Add(1)
	ran := false
	c.SubmitTask(func() {
		ran = true
		wg.Done()
	})
	wg.Wait()
	assert.True(t, ran)
}
