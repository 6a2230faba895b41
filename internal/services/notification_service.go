package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/observability"
)

// EdgeInvoker is the outbound edge-function surface the services need.
type EdgeInvoker interface {
	Invoke(ctx context.Context, name string, payload any, out any) error
}

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// NotificationIntent is one queued best-effort notification.
type NotificationIntent struct {
	Channel   string
	BookingID uuid.UUID
	Phone     string
	Email     string
	GuestName string
}

// NotificationService is the best-effort outbox for booking confirmations.
// Intents are enqueued after the booking commit and processed independently;
// a failed send is logged and counted but never rolls back or blocks the
// booking. No ordering is guaranteed between channels.
type NotificationService struct {
	edge   EdgeInvoker
	logger *slog.Logger
	queue  chan NotificationIntent
	wg     sync.WaitGroup
	once   sync.Once
}

func NewNotificationService(edge EdgeInvoker, logger *slog.Logger, buffer int) *NotificationService {
	if buffer <= 0 {
		buffer = 64
	}
	ns := &NotificationService{
		edge:   edge,
		logger: logger,
		queue:  make(chan NotificationIntent, buffer),
	}
	ns.wg.Add(1)
	go ns.worker()
	return ns
}

// Enqueue never blocks the caller; a full queue drops the intent with a log
// line, which is an acceptable loss for a best-effort channel.
func (ns *NotificationService) Enqueue(intent NotificationIntent) {
	select {
	case ns.queue <- intent:
	default:
		ns.logger.Warn("notification queue full, dropping intent",
			"channel", intent.Channel,
			"booking_id", intent.BookingID,
		)
		observability.NotificationOutcomes.WithLabelValues(intent.Channel, "dropped").Inc()
	}
}

// Close drains outstanding intents and stops the worker.
func (ns *NotificationService) Close() {
	ns.once.Do(func() { close(ns.queue) })
	ns.wg.Wait()
}

func (ns *NotificationService) worker() {
	defer ns.wg.Done()
	for intent := range ns.queue {
		ns.dispatch(intent)
	}
}

func (ns *NotificationService) dispatch(intent NotificationIntent) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch intent.Channel {
	case ChannelSMS:
		err = ns.edge.Invoke(ctx, "send-sms", map[string]interface{}{
			"booking_id": intent.BookingID.String(),
			"phone":      intent.Phone,
		}, nil)
	case ChannelEmail:
		err = ns.edge.Invoke(ctx, "send-booking-email", map[string]interface{}{
			"booking_id":  intent.BookingID.String(),
			"guest_email": intent.Email,
			"guest_name":  intent.GuestName,
		}, nil)
	default:
		ns.logger.Error("unknown notification channel", "channel", intent.Channel)
		return
	}

	if err != nil {
		ns.logger.Warn("notification dispatch failed",
			"channel", intent.Channel,
			"booking_id", intent.BookingID,
			"error", err,
		)
		observability.NotificationOutcomes.WithLabelValues(intent.Channel, "failure").Inc()
		return
	}
	observability.NotificationOutcomes.WithLabelValues(intent.Channel, "success").Inc()
}
