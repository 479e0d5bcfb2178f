package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQPublisher публикует события в topic exchange.
type RabbitMQPublisher struct {
	exchange string
	logger   *zap.Logger

	mu sync.Mutex // amqp091.Channel нельзя использовать из нескольких горутин
	ch *amqp091.Channel
}

// NewRabbitMQPublisher открывает канал и объявляет durable topic exchange.
// Соединение принадлежит вызывающему коду.
func NewRabbitMQPublisher(conn *amqp091.Connection, exchange string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	log := logger.Named("EventPublisher")

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}

	log.Info("Events exchange declared", zap.String("exchange", exchange))
	return &RabbitMQPublisher{exchange: exchange, logger: log, ch: ch}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event TaskEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		p.logger.Error("Failed to publish task event",
			zap.String("type", string(event.Type)),
			zap.Stringer("task_id", event.TaskID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	p.logger.Debug("Task event published", zap.String("type", string(event.Type)), zap.Stringer("task_id", event.TaskID))
	return nil
}

// Close закрывает канал.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
