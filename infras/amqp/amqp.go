package amqp

//go:generate go run go.uber.org/mock/mockgen -source=./amqp.go -destination=./mocks/amqp_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"parkspot/config"
	"parkspot/shared/constant"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const exchangeKind = "topic"

type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, value any) error
	Close() error
}

type publisherImpl struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// New dials RabbitMQ and declares a durable topic exchange.
func New(cfg *config.Config, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err = ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("Connected to RabbitMQ")

	return &publisherImpl{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishJSON sends value as a persistent JSON message. Channels are not safe for concurrent publishing.
func (p *publisherImpl) PublishJSON(ctx context.Context, routingKey string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("exchange", p.exchange).Str("routing_key", routingKey).Msg("failed to publish message")

		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *publisherImpl) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}

	if p.conn != nil {
		return p.conn.Close()
	}

	return nil
}
