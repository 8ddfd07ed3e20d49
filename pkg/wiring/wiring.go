package wiring

import (
	"github.com/andrew/rag-webapp/pkg/chat"
	"github.com/andrew/rag-webapp/pkg/config"
	"github.com/andrew/rag-webapp/pkg/webhook"
	"github.com/rs/zerolog"
)

// NewController builds the webhook client and conversation controller described by cfg
func NewController(cfg *config.Config, logger zerolog.Logger) (*chat.Controller, error) {
	mode, err := chat.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	client := webhook.NewClient(
		cfg.WebhookURL,
		webhook.WithTimeout(cfg.Timeout),
		webhook.WithLogger(logger.With().Str("component", "webhook").Logger()),
	)
	if client.URL() == "" {
		logger.Warn().Msg("no webhook URL configured; questions will fail until WEBHOOK_URL is set")
	}

	return chat.NewController(client, mode, logger.With().Str("component", "chat").Logger()), nil
}
