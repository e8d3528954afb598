package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/pkg/config"
	"github.com/drivelane/fi-decision-api/pkg/jobs"
)

// NotificationPayload is what the delivery boundary receives per message.
type NotificationPayload struct {
	Template  string               `json:"template"`
	Recipient string               `json:"recipient"`
	Event     models.WorkflowEvent `json:"event"`
}

// NotificationSender is the outbound delivery boundary. Delivery retries
// live behind this interface, not in the engine.
type NotificationSender interface {
	Send(ctx context.Context, payload NotificationPayload) error
}

// LogNotificationSender records deliveries without sending anything. It
// stands in until a mail/SMS integration is configured.
type LogNotificationSender struct {
	logger *zap.Logger
}

// NewLogNotificationSender constructs the logging sender.
func NewLogNotificationSender(logger *zap.Logger) *LogNotificationSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotificationSender{logger: logger}
}

// Send logs the notification.
func (s *LogNotificationSender) Send(_ context.Context, payload NotificationPayload) error {
	s.logger.Info("notification",
		zap.String("template", payload.Template),
		zap.String("recipient", payload.Recipient),
		zap.String("request_id", payload.Event.RequestID))
	return nil
}

// NotifyService queues workflow notifications so a slow delivery boundary
// never blocks the transition that triggered them.
type NotifyService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotifyService constructs the service and its dispatch queue. Call
// Start before dispatching and Stop on shutdown.
func NewNotifyService(sender NotificationSender, cfg config.NotifyConfig, logger *zap.Logger) *NotifyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(NotificationPayload)
		if !ok {
			return nil
		}
		return sender.Send(ctx, payload)
	}
	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &NotifyService{queue: queue, logger: logger}
}

// Start launches the queue workers.
func (s *NotifyService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotifyService) Stop() {
	s.queue.Stop()
}

// Notify enqueues one notification. Fire-and-forget from the caller's
// perspective; an enqueue failure is reported but the event is dropped.
func (s *NotifyService) Notify(_ context.Context, template, recipient string, event models.WorkflowEvent) error {
	return s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "workflow_notification",
		Payload: NotificationPayload{
			Template:  template,
			Recipient: recipient,
			Event:     event,
		},
	})
}
