package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/messaging-mcp/internal/config"
	smsprovider "github.com/example/messaging-mcp/internal/providers/sms"
)

// SMS constructs the configured SMS provider. Supports Twilio and mock backends.
func SMS(cfg config.ProviderConfig, timeouts config.TimeoutConfig, logger zerolog.Logger) (smsprovider.Provider, error) {
	backend := normalize(cfg.SMSProvider, "twilio")
	switch backend {
	case "twilio":
		var opts []smsprovider.TwilioOption
		if timeouts.ProviderTimeoutSeconds > 0 {
			opts = append(opts, smsprovider.WithTwilioTimeout(time.Duration(timeouts.ProviderTimeoutSeconds)*time.Second))
		}
		if timeouts.MaxBodyBytes > 0 {
			opts = append(opts, smsprovider.WithTwilioBodyLimit(int64(timeouts.MaxBodyBytes)))
		}
		provider, err := smsprovider.NewTwilioProvider(cfg.Twilio, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("factory: twilio sms provider init: %w", err)
		}
		logger.Info().
			Str("backend", "twilio").
			Str("base_url", cfg.Twilio.BaseURL).
			Msg("sms provider initialised")
		return provider, nil
	case "mock":
		scenario, err := smsprovider.ParseScenario(cfg.MockScenario)
		if err != nil {
			return nil, fmt.Errorf("factory: mock sms provider init: %w", err)
		}
		opts := []smsprovider.Option{smsprovider.WithScenario(scenario)}
		if timeouts.ProviderTimeoutSeconds > 0 {
			opts = append(opts, smsprovider.WithTimeout(time.Duration(timeouts.ProviderTimeoutSeconds)*time.Second))
		}
		provider := smsprovider.NewMockProvider(logger, opts...)
		logger.Info().
			Str("backend", "mock").
			Str("scenario", string(scenario)).
			Msg("sms provider initialised")
		return provider, nil
	default:
		return nil, fmt.Errorf("factory: unsupported sms provider backend %q", cfg.SMSProvider)
	}
}

func normalize(value, def string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return def
	}
	return v
}
