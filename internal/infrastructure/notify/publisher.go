package notify

import (
	"context"
	"fmt"
	"time"

	"chatroom_server/internal/config"

	"go.uber.org/zap"
)

// 推送模式
const (
	ModeHTTP  = "http"
	ModeKafka = "kafka"
	ModeAsynq = "asynq"
	ModeLog   = "log"
)

// Publisher 事件投递接口
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NewPublisher 按 notifyConfig.mode 创建投递实现
func NewPublisher(conf *config.Config) (Publisher, error) {
	timeout := time.Duration(conf.NotifyConfig.Timeout) * time.Second
	switch conf.NotifyConfig.Mode {
	case ModeHTTP:
		return NewHTTPPublisher(conf.NotifyConfig.BaseURL, timeout), nil
	case ModeKafka:
		return NewKafkaPublisher(conf.KafkaConfig), nil
	case ModeAsynq:
		return NewAsynqPublisher(AsynqRedisOpt(conf.RedisConfig)), nil
	case ModeLog, "":
		return LogPublisher{}, nil
	}
	return nil, fmt.Errorf("unknown notify mode %q", conf.NotifyConfig.Mode)
}

// LogPublisher 只记录日志，未部署实时服务时使用
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	zap.L().Info("notify event",
		zap.String("kind", e.Kind),
		zap.String("room", e.RoomUuid),
		zap.String("user", e.UserUuid),
		zap.String("data", e.Data))
	return nil
}

func (LogPublisher) Close() error { return nil }
