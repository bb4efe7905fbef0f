package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
)

// Publisher は予約イベントをKafkaに配信する
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher はブローカーに接続してPublisherを作成する
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("Kafkaプロデューサー作成に失敗: %w", err)
	}
	return NewPublisherWithProducer(producer, topic), nil
}

// NewPublisherWithProducer は既存のプロデューサーからPublisherを作成する
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish はイベントをJSONにして予約IDをキーに送信する
// 同じ予約のイベントは同じパーティションに入る
func (p *Publisher) Publish(ctx context.Context, ev reservation.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(ev.ReservationID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: ev.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("イベント送信に失敗: %w", err)
	}

	logger.Debug("予約イベントを送信しました",
		zap.String("type", string(ev.Type)),
		zap.String("reservation_id", ev.ReservationID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close はプロデューサーを閉じる
func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("Kafkaプロデューサーのクローズに失敗: %w", err)
	}
	return nil
}
