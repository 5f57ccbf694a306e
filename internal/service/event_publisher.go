package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventAnswerScored     = "answer.scored"
	EventSessionCompleted = "session.completed"
	EventSessionAbandoned = "session.abandoned"
	EventStreakUpdated    = "streak.updated"
)

// EventPublisher 领域事件发布，失败只记录日志，不影响主流程
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close()
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex // amqp.Channel 不支持并发发布
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// routing key 即事件类型
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   model.GenerateUUID(),
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NopPublisher 未配置消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NopPublisher) Close() {}

func publishEvent(ctx context.Context, pub EventPublisher, eventType string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, eventType, payload); err != nil {
		logger.Log.Warn("publish event failed", zap.String("event", eventType), zap.Error(err))
	}
}
