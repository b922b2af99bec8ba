package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"chatroom_server/internal/config"
	myredis "chatroom_server/internal/dao/redis"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeDeliver 投递任务类型
const TypeDeliver = "notify:deliver"

// AsynqRedisOpt 复用 redisConfig 连接 asynq
func AsynqRedisOpt(conf config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     myredis.Addr(conf),
		Password: conf.Password,
		DB:       conf.Db,
	}
}

// NewDeliverTask 创建投递任务，不重试
func NewDeliverTask(e Event) (*asynq.Task, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeliver, payload, asynq.MaxRetry(0)), nil
}

// AsynqPublisher 将事件放入 Redis 队列，由 Worker 投递
type AsynqPublisher struct {
	client *asynq.Client
}

// NewAsynqPublisher 创建 asynq 投递实现
func NewAsynqPublisher(opt asynq.RedisClientOpt) *AsynqPublisher {
	return &AsynqPublisher{client: asynq.NewClient(opt)}
}

func (p *AsynqPublisher) Publish(ctx context.Context, e Event) error {
	task, err := NewDeliverTask(e)
	if err != nil {
		return err
	}
	_, err = p.client.EnqueueContext(ctx, task)
	return err
}

func (p *AsynqPublisher) Close() error {
	return p.client.Close()
}

// Worker 消费投递任务，实际投递交给 delivery（通常是 HTTPPublisher）
type Worker struct {
	server   *asynq.Server
	delivery Publisher
}

// NewWorker 创建投递 Worker
func NewWorker(opt asynq.RedisClientOpt, concurrency int, delivery Publisher) *Worker {
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			zap.L().Warn("notify task failed",
				zap.String("type", task.Type()),
				zap.ByteString("payload", task.Payload()),
				zap.Error(err))
		}),
	})
	return &Worker{server: server, delivery: delivery}
}

// ProcessTask 实现 asynq.Handler 接口
func (w *Worker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var e Event
	if err := json.Unmarshal(t.Payload(), &e); err != nil {
		return fmt.Errorf("unmarshal notify payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.delivery.Publish(ctx, e)
}

// Start 启动后台消费，不阻塞；信号由调用方处理
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDeliver, w)

	zap.L().Info("notify worker starting")
	return w.server.Start(mux)
}

// Shutdown 优雅关闭
func (w *Worker) Shutdown() {
	w.server.Shutdown()
	_ = w.delivery.Close()
}
