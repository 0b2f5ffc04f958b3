package service

import (
	"context"
	"time"

	"aqevent/pkg/kafka"
	"aqevent/pkg/logger"
	"aqevent/pkg/middleware"
	"aqevent/pkg/model"
)

const (
	NotificationSubmitted = "event.submitted"
	NotificationApproved  = "event.approved"
	NotificationRejected  = "event.rejected"

	notificationSource = "aqevent"
)

type Notification struct {
	Type       string            `json:"type"`
	EventID    string            `json:"eventId"`
	Name       string            `json:"name"`
	Location   string            `json:"location"`
	EventDate  string            `json:"eventDate"`
	Status     model.EventStatus `json:"status"`
	SeriesID   string            `json:"seriesId,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// Notifier announces lifecycle transitions. Delivery failures are logged by
// the implementation and never fail the transition.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaNotifier struct {
	producer Publisher
	log      *logger.Logger
}

func NewKafkaNotifier(producer Publisher, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, log: log}
}

func (n *KafkaNotifier) Notify(ctx context.Context, notification Notification) {
	msg, err := kafka.NewMessage().
		WithKey(notification.EventID).
		WithValue(notification).
		WithEventType(notification.Type).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithSchemaVersion(model.SchemaVersion).
		WithSource(notificationSource).
		WithTimestamp(notification.OccurredAt).
		Build()
	if err != nil {
		n.log.Error("Failed to build lifecycle notification",
			"event_id", notification.EventID,
			"type", notification.Type,
			"error", err,
		)
		return
	}

	if err := n.producer.Publish(ctx, msg); err != nil {
		n.log.Warn("Failed to publish lifecycle notification",
			"event_id", notification.EventID,
			"type", notification.Type,
			"error", err,
		)
	}
}

func newNotification(kind string, ev *model.Event, now time.Time) Notification {
	return Notification{
		Type:       kind,
		EventID:    ev.ID,
		Name:       ev.Name,
		Location:   ev.Location,
		EventDate:  ev.EventDate,
		Status:     ev.Status,
		SeriesID:   ev.SeriesID,
		OccurredAt: now,
	}
}
