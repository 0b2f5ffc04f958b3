package kafka_middleware

import (
	"context"
	"time"

	"aqevent/pkg/kafka"
	"aqevent/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"message_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"correlation_id", msg.GetCorrelationID(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Error("Failed to publish message", append(attrs,
				"error", err,
				"error_type", kafka.ClassifyError(err).String(),
			)...)
		} else {
			log.Debug("Published message", attrs...)
		}
		return err
	}
}
