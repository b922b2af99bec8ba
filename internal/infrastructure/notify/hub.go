package notify

import (
	"context"
	"time"

	"chatroom_server/internal/dao/mysql/repository"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Notifier 房间服务依赖的通知能力
// 调用立即返回，推送在后台执行，失败不影响调用方
type Notifier interface {
	// CreateNotification 写入站内通知并提醒用户
	CreateNotification(ctx context.Context, userUuid, message string)
	// NotifyRoomUpdate 房间某些方面发生变化
	NotifyRoomUpdate(ctx context.Context, roomUuid string, aspects ...string)
	NotifyUserJoined(ctx context.Context, roomUuid, userUuid string)
	NotifyUserLeft(ctx context.Context, roomUuid, userUuid string)
}

// TaskSubmitter 异步任务池，由缓存服务提供
type TaskSubmitter interface {
	SubmitTask(action func())
}

// Hub Notifier 的默认实现
type Hub struct {
	repo      repository.NotificationRepository
	publisher Publisher
	pool      TaskSubmitter
	timeout   time.Duration
}

// NewHub 创建通知中心
func NewHub(repo repository.NotificationRepository, publisher Publisher, pool TaskSubmitter, timeout time.Duration) *Hub {
	if timeout <= 0 {
		timeout = constants.NOTIFY_HTTP_TIMEOUT
	}
	return &Hub{repo: repo, publisher: publisher, pool: pool, timeout: timeout}
}

// run 在任务池中执行 fn，请求结束不会取消推送
func (h *Hub) run(ctx context.Context, what string, fn func(ctx context.Context) error) {
	base := context.WithoutCancel(ctx)
	h.pool.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(base, h.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			zap.L().Warn("notify failed", zap.String("what", what), zap.Error(err))
		}
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (h *Hub) CreateNotification(ctx context.Context, userUuid, message string) {
	n := &model.Notification{
		ID:       snowflake.GenerateID(),
		UserUuid: userUuid,
		Message:  truncate(message, constants.MESSAGE_MAX_LEN),
		Status:   model.NotificationUnread,
	}
	h.run(ctx, "notification", func(ctx context.Context) error {
		if err := h.repo.Create(n); err != nil {
			return err
		}
		return h.publisher.Publish(ctx, Event{Kind: KindUserPing, UserUuid: userUuid})
	})
}

func (h *Hub) NotifyRoomUpdate(ctx context.Context, roomUuid string, aspects ...string) {
	if len(aspects) == 0 {
		return
	}
	e := Event{Kind: KindRoomUpdate, RoomUuid: roomUuid, Data: JoinAspects(aspects)}
	h.run(ctx, KindRoomUpdate, func(ctx context.Context) error {
		return h.publisher.Publish(ctx, e)
	})
}

func (h *Hub) NotifyUserJoined(ctx context.Context, roomUuid, userUuid string) {
	e := Event{Kind: KindUserJoined, RoomUuid: roomUuid, UserUuid: userUuid}
	h.run(ctx, KindUserJoined, func(ctx context.Context) error {
		return h.publisher.Publish(ctx, e)
	})
}

func (h *Hub) NotifyUserLeft(ctx context.Context, roomUuid, userUuid string) {
	e := Event{Kind: KindUserLeft, RoomUuid: roomUuid, UserUuid: userUuid}
	h.run(ctx, KindUserLeft, func(ctx context.Context) error {
		return h.publisher.Publish(ctx, e)
	})
}

var _ Notifier = (*Hub)(nil)
