package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/services"
)

// LogNotifier writes notifications to the application log. It is always
// granted.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Str("channel", ChannelLog).Logger()}
}

func (notifier *LogNotifier) RequestPermission(context.Context) (services.Permission, error) {
	return services.PermissionGranted, nil
}

func (notifier *LogNotifier) Notify(_ context.Context, title string, body string) error {
	notifier.logger.Info().Str("title", title).Str("body", body).Msg("notification")
	return nil
}

// Disabled never grants permission, so reminders stay idle.
type Disabled struct{}

func (Disabled) RequestPermission(context.Context) (services.Permission, error) {
	return services.PermissionDenied, nil
}

func (Disabled) Notify(context.Context, string, string) error {
	return nil
}
