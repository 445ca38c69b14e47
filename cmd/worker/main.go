// Command worker drains the notification topic written by the kafka notifier driver
// and hands each notification to the log driver for delivery.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"parkspot/config"
	"parkspot/infras/kafka"
	"parkspot/infras/notifier"
	"parkspot/infras/otel"
	"parkspot/shared/logger"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := kafka.New(cfg)

	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}()

	tracer := otel.New(cfg)

	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
	}()

	delivery := notifier.NewLog(tracer)

	log.Info().Str("topic", cfg.App.Notifier.Topic).Msg("Notification worker started.")

	client.Consume(ctx, cfg.Kafka.ConsumerGroup, cfg.App.Notifier.Topic, func(ctx context.Context, message kafkaGo.Message) {
		_, n, err := kafka.DecodeKafkaMessage[notifier.Notification](message)
		if err != nil {
			log.Error().Err(err).Int64("offset", message.Offset).Msg("Dropping malformed notification")

			return
		}

		if err = delivery.Notify(ctx, n.Kind, n.Recipient, n.Data); err != nil {
			log.Error().Err(err).Str("kind", string(n.Kind)).Msg("Failed to deliver notification")
		}
	})

	log.Info().Msg("Notification worker stopped.")
}
