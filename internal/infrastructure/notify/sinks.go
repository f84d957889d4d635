package notify

import (
	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewSinks builds the log sink plus every channel enabled in cfg.
// A channel that cannot be constructed is skipped with a warning.
func NewSinks(cfg config.NotificationConfig, log *zap.Logger) []appfulfillment.NotificationSink {
	if log == nil {
		log = zap.NewNop()
	}
	sinks := []appfulfillment.NotificationSink{NewLogSink(log)}

	if cfg.Email.Enabled {
		if sink, err := NewEmailSink(cfg.Email); err != nil {
			log.Warn("email notifications disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sink)
		}
	}
	if cfg.SMS.Enabled {
		if sink, err := NewSMSSink(cfg.SMS); err != nil {
			log.Warn("sms notifications disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sink)
		}
	}

	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	log.Info("notification sinks configured", zap.Strings("sinks", names))
	return sinks
}
