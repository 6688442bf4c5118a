package notify

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/config"
	"github.com/terraincognita07/healthpulse/internal/services"
)

const (
	ChannelLog      = "log"
	ChannelTelegram = "telegram"
	ChannelMQTT     = "mqtt"
	ChannelNone     = "none"
)

// FromConfig builds the notifier selected by NOTIFY_CHANNEL. A channel that
// cannot be initialized falls back to the log notifier.
func FromConfig(cfg *config.Config, logger zerolog.Logger) services.Notifier {
	channel := strings.ToLower(strings.TrimSpace(cfg.NotifyChannel))
	switch channel {
	case "", ChannelLog:
		return NewLogNotifier(logger)
	case ChannelNone:
		return Disabled{}
	case ChannelTelegram:
		notifier, err := NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifier unavailable, using log notifier")
			return NewLogNotifier(logger)
		}
		return notifier
	case ChannelMQTT:
		notifier, err := DialMQTT(MQTTOptions{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Topic:    cfg.MQTTTopic,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("mqtt notifier unavailable, using log notifier")
			return NewLogNotifier(logger)
		}
		return notifier
	default:
		logger.Warn().Str("channel", channel).Msgf("unknown notify channel, using %s", ChannelLog)
		return NewLogNotifier(logger)
	}
}
