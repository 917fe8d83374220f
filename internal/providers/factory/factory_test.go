package factory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	common "github.com/example/messaging-mcp/internal/adapters/common"
	"github.com/example/messaging-mcp/internal/config"
	"github.com/example/messaging-mcp/internal/models"
	"github.com/example/messaging-mcp/internal/providers/factory"
	smsprovider "github.com/example/messaging-mcp/internal/providers/sms"
)

func TestSMSDefaultsToTwilio(t *testing.T) {
	cfg := config.ProviderConfig{Twilio: config.TwilioConfig{AccountSID: "ACtest", APIKey: "SKkey", APISecret: "secret"}}
	provider, err := factory.SMS(cfg, config.TimeoutConfig{ProviderTimeoutSeconds: 5, MaxBodyBytes: 1024}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := provider.(*smsprovider.TwilioProvider); !ok {
		t.Fatalf("expected twilio provider, got %T", provider)
	}
	if _, ok := provider.(smsprovider.Prober); !ok {
		t.Fatalf("twilio provider should support probing")
	}
}

func TestSMSTwilioWithoutAccountIsConfigurationError(t *testing.T) {
	_, err := factory.SMS(config.ProviderConfig{SMSProvider: "twilio"}, config.TimeoutConfig{}, zerolog.Nop())
	if !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSMSMock(t *testing.T) {
	provider, err := factory.SMS(config.ProviderConfig{SMSProvider: " Mock ", MockScenario: "soft_error"}, config.TimeoutConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := provider.(*smsprovider.MockProvider); !ok {
		t.Fatalf("expected mock provider, got %T", provider)
	}
}

func TestSMSRejectsUnknownInputs(t *testing.T) {
	if _, err := factory.SMS(config.ProviderConfig{SMSProvider: "carrier-pigeon"}, config.TimeoutConfig{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := factory.SMS(config.ProviderConfig{SMSProvider: "mock", MockScenario: "flaky"}, config.TimeoutConfig{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
}

func TestSMSMockTimeoutUsesProviderTimeout(t *testing.T) {
	provider, err := factory.SMS(
		config.ProviderConfig{SMSProvider: "mock", MockScenario: "timeout"},
		config.TimeoutConfig{ProviderTimeoutSeconds: 1},
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := provider.Send(context.Background(), &models.MessageRequest{To: "+15551234567", From: "+15559876543", Body: "hi"})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, common.ErrTransport) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected transport deadline error, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("mock timeout scenario did not honour PROVIDER_TIMEOUT_SECONDS")
	}
}
