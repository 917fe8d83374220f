package config_test

import (
	"strings"
	"testing"

	"github.com/example/messaging-mcp/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "SMS_PROVIDER", "MOCK_SCENARIO",
		"TWILIO_ACCOUNT_SID", "TWILIO_API_KEY", "TWILIO_API_SECRET", "TWILIO_AUTH_TOKEN",
		"TWILIO_CREDENTIALS", "TWILIO_API_BASE_URL", "PROVIDER_TIMEOUT_SECONDS",
		"PROVIDER_MAX_BODY_BYTES", "HEALTH_ENABLE_PROVIDER_PROBE", "MCP_TRANSPORT", "MCP_ADDR", "ACCOUNT_SID",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Env != "development" || cfg.App.LogLevel != "info" {
		t.Fatalf("unexpected app config: %+v", cfg.App)
	}
	if cfg.Providers.SMSProvider != "twilio" {
		t.Fatalf("expected twilio backend by default, got %q", cfg.Providers.SMSProvider)
	}
	if cfg.Providers.Twilio.BaseURL != config.DefaultTwilioBaseURL {
		t.Fatalf("unexpected base url %q", cfg.Providers.Twilio.BaseURL)
	}
	if cfg.Timeouts.ProviderTimeoutSeconds != 30 || cfg.Timeouts.MaxBodyBytes != 64*1024 {
		t.Fatalf("unexpected timeouts: %+v", cfg.Timeouts)
	}
	if cfg.MCP.Transport != "stdio" || cfg.MCP.Addr != ":8080" {
		t.Fatalf("unexpected mcp config: %+v", cfg.MCP)
	}
	if cfg.Health.EnableProviderProbe {
		t.Fatalf("expected provider probe disabled by default")
	}
}

func TestLoadMissingCredentialsIsNotAnError(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "ACtest")
	t.Setenv("TWILIO_API_KEY", "")
	t.Setenv("TWILIO_API_SECRET", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_CREDENTIALS", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.Twilio.APIKey != "" || cfg.Providers.Twilio.APISecret != "" {
		t.Fatalf("expected empty key pair, got %+v", cfg.Providers.Twilio)
	}
}

func TestLoadAuthTokenFallback(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "ACabc")
	t.Setenv("TWILIO_API_KEY", "")
	t.Setenv("TWILIO_API_SECRET", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_CREDENTIALS", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tw := cfg.Providers.Twilio
	if tw.APIKey != "ACabc" || tw.APISecret != "token" {
		t.Fatalf("expected account sid / auth token pair, got %+v", tw)
	}
}

func TestLoadCredentialsShorthandOverrides(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "ACold")
	t.Setenv("TWILIO_API_KEY", "SKold")
	t.Setenv("TWILIO_API_SECRET", "old")
	t.Setenv("TWILIO_CREDENTIALS", "ACnew/SKnew:secret")
	t.Setenv("TWILIO_API_BASE_URL", "http://localhost:9999/2010-04-01/")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tw := cfg.Providers.Twilio
	if tw.AccountSID != "ACnew" || tw.APIKey != "SKnew" || tw.APISecret != "secret" {
		t.Fatalf("unexpected credentials: %+v", tw)
	}
	if tw.BaseURL != "http://localhost:9999/2010-04-01" {
		t.Fatalf("expected trailing slash trimmed, got %q", tw.BaseURL)
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "soon")
	t.Setenv("HEALTH_ENABLE_PROVIDER_PROBE", "maybe")
	t.Setenv("MCP_TRANSPORT", "carrier-pigeon")
	t.Setenv("TWILIO_CREDENTIALS", "no-slash")

	_, err := config.Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"PROVIDER_TIMEOUT_SECONDS must be a valid integer",
		"HEALTH_ENABLE_PROVIDER_PROBE must be a valid boolean",
		"MCP_TRANSPORT must be one of",
		"TWILIO_CREDENTIALS",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error, got %v", want, err)
		}
	}
}

func TestParseCredentials(t *testing.T) {
	creds, err := config.ParseCredentials(" AC123/SK456:s3cr:et ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccountSID != "AC123" || creds.APIKey != "SK456" || creds.APISecret != "s3cr:et" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	// Key and secret may be empty here; the request builder rejects them later.
	creds, err = config.ParseCredentials("AC123/:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.APIKey != "" || creds.APISecret != "" {
		t.Fatalf("expected empty key pair, got %+v", creds)
	}

	for _, raw := range []string{"", "AC123", "/SK:x", "AC123/SK456"} {
		if _, err := config.ParseCredentials(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
