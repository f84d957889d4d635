// Package notify delivers rendered fulfillment notifications over the
// channels the deployment enables: structured log, email and SMS.
package notify

import (
	"context"

	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogSink writes every notification to the application log.
// It is always enabled so deliveries remain auditable without SMTP or SMS.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{logger: log.Named("notify")}
}

// Name returns "log"
func (s *LogSink) Name() string { return "log" }

// Send logs the notification at info
func (s *LogSink) Send(ctx context.Context, n appfulfillment.Notification) error {
	logger.FromContext(ctx, s.logger).Info("customer notification",
		zap.String("event_id", n.EventID.String()),
		zap.String("event_type", n.EventType),
		zap.String("order_id", n.OrderID.String()),
		zap.String("recipient", n.Recipient.Name),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body),
	)
	return nil
}

var _ appfulfillment.NotificationSink = (*LogSink)(nil)
