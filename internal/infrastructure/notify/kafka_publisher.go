package notify

import (
	"context"
	"encoding/json"
	"time"

	"chatroom_server/internal/config"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher 将事件以 JSON 写入 kafkaConfig.roomEventTopic，按房间分区
type KafkaPublisher struct {
	producer *kafka.Writer
}

// NewKafkaPublisher 创建 Kafka 投递实现
func NewKafkaPublisher(conf config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.RoomEventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
