package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ExchangePromptEvents - fanout exchange для событий изменения промптов.
const ExchangePromptEvents = "prompt_events"

var _ interfaces.PromptEventPublisher = (*RabbitMQPromptPublisher)(nil)

// RabbitMQPromptPublisher публикует PromptEvent в fanout exchange.
type RabbitMQPromptPublisher struct {
	mu     sync.Mutex // amqp091.Channel не безопасен для конкурентной публикации
	ch     *amqp091.Channel
	logger *zap.Logger
}

// NewRabbitMQPromptPublisher открывает канал и объявляет exchange.
func NewRabbitMQPromptPublisher(conn *amqp091.Connection, logger *zap.Logger) (*RabbitMQPromptPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	log := logger.Named("PromptEventPublisher").With(zap.String("exchange", ExchangePromptEvents))

	ch, err := conn.Channel()
	if err != nil {
		log.Error("Failed to open a channel", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangePromptEvents, // name
		"fanout",             // type
		true,                 // durable
		false,                // auto-deleted
		false,                // internal
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error("Failed to declare exchange", zap.Error(err))
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", ExchangePromptEvents, err)
	}

	log.Info("Prompt event exchange declared")
	return &RabbitMQPromptPublisher{ch: ch, logger: log}, nil
}

// PublishPromptEvent публикует событие в RabbitMQ.
func (p *RabbitMQPromptPublisher) PublishPromptEvent(ctx context.Context, event models.PromptEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		ExchangePromptEvents, // exchange
		"",                   // routing key (не используется для fanout)
		false,                // mandatory
		false,                // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish prompt event",
			zap.Error(err),
			zap.String("eventType", string(event.EventType)),
			zap.String("userID", event.UserID.String()),
		)
		return fmt.Errorf("failed to publish prompt event: %w", err)
	}

	p.logger.Debug("Prompt event published", zap.String("eventType", string(event.EventType)), zap.String("userID", event.UserID.String()))
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQPromptPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// MultiPublisher рассылает событие всем публикаторам. Ошибка одного не мешает остальным.
type MultiPublisher []interfaces.PromptEventPublisher

func (m MultiPublisher) PublishPromptEvent(ctx context.Context, event models.PromptEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishPromptEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
