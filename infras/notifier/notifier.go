package notifier

//go:generate go run go.uber.org/mock/mockgen -source=./notifier.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"parkspot/config"
	"parkspot/infras/amqp"
	"parkspot/infras/kafka"
	"parkspot/infras/otel"
	"parkspot/shared/constant"
	"parkspot/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindBookingApproved  Kind = "booking-approved"
	KindBookingDeclined  Kind = "booking-declined"
	KindBookingCancelled Kind = "booking-cancelled"
)

const (
	DriverLog   = "log"
	DriverKafka = "kafka"
	DriverAMQP  = "amqp"
)

// Notification is the payload handed to the delivery channel.
type Notification struct {
	Kind      Kind           `json:"kind"`
	Recipient string         `json:"recipient"`
	Data      map[string]any `json:"data"`
	SentAt    time.Time      `json:"sent_at"`
}

// Notifier is fire-and-forget from the caller's point of view. Errors are returned for logging only.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, recipient string, data map[string]any) error
}

type sender func(ctx context.Context, n Notification) error

type notifierImpl struct {
	driver string
	send   sender
	otel   otel.Otel
}

func (n *notifierImpl) Notify(ctx context.Context, kind Kind, recipient string, data map[string]any) (err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelNotifierScopeName, constant.OtelNotifierScopeName+".Notify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"notifier.driver": n.driver,
		"notifier.kind":   string(kind),
	})

	if recipient == "" {
		return fmt.Errorf("notification %s has no recipient", kind)
	}

	err = n.send(ctx, Notification{
		Kind:      kind,
		Recipient: recipient,
		Data:      data,
		SentAt:    timezone.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", kind, err)
	}

	return nil
}

func NewLog(otl otel.Otel) Notifier {
	return &notifierImpl{
		driver: DriverLog,
		otel:   otl,
		send: func(_ context.Context, n Notification) error {
			log.Info().
				Str("kind", string(n.Kind)).
				Str("recipient", n.Recipient).
				Interface("data", n.Data).
				Msg("notification dispatched")

			return nil
		},
	}
}

func NewKafka(client kafka.Client, topic string, otl otel.Otel) Notifier {
	return &notifierImpl{
		driver: DriverKafka,
		otel:   otl,
		send: func(ctx context.Context, n Notification) error {
			return client.SendMessages(ctx, topic, kafka.Message{Key: n.Recipient, Value: n})
		},
	}
}

func NewAMQP(publisher amqp.Publisher, otl otel.Otel) Notifier {
	return &notifierImpl{
		driver: DriverAMQP,
		otel:   otl,
		send: func(ctx context.Context, n Notification) error {
			return publisher.PublishJSON(ctx, string(n.Kind), n)
		},
	}
}

// New builds the driver named by APP_NOTIFIER_DRIVER, falling back to the log driver
// when the broker cannot be reached.
func New(cfg *config.Config, otl otel.Otel) Notifier {
	switch cfg.App.Notifier.Driver {
	case DriverKafka:
		return NewKafka(kafka.New(cfg), cfg.App.Notifier.Topic, otl)
	case DriverAMQP:
		publisher, err := amqp.New(cfg, cfg.App.Notifier.Exchange)
		if err != nil {
			log.Error().Err(err).Msg("failed to init amqp notifier, falling back to log driver")

			return NewLog(otl)
		}

		return NewAMQP(publisher, otl)
	default:
		return NewLog(otl)
	}
}
