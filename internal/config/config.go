package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultTwilioBaseURL is the Programmable Messaging REST API root.
const DefaultTwilioBaseURL = "https://api.twilio.com/2010-04-01"

// Config captures all runtime configuration for the messaging MCP server.
type Config struct {
	App       AppConfig
	Providers ProviderConfig
	Timeouts  TimeoutConfig
	Health    HealthConfig
	MCP       MCPConfig
}

// AppConfig contains generic application level settings.
type AppConfig struct {
	Env      string
	LogLevel string
}

// TwilioConfig stores the credentials and endpoint for the messaging API.
// Values are read once at startup and never mutated afterwards.
type TwilioConfig struct {
	AccountSID string
	APIKey     string
	APISecret  string
	BaseURL    string
}

// ProviderConfig wraps configuration for the outbound provider.
type ProviderConfig struct {
	SMSProvider  string
	MockScenario string
	Twilio       TwilioConfig
}

// TimeoutConfig contains transport limits for outbound calls.
type TimeoutConfig struct {
	ProviderTimeoutSeconds int
	MaxBodyBytes           int
}

// HealthConfig controls the optional startup probe against the provider.
type HealthConfig struct {
	EnableProviderProbe bool
}

// MCPConfig controls how the tool is exposed to the agent host.
type MCPConfig struct {
	Transport string
	Addr      string
	// DefaultAccountSID is only used in the instructions text shown to the host.
	DefaultAccountSID string
}

// Load reads environment variables, applies defaults, validates the values
// that are present and returns a populated Config instance. Credentials are
// optional here; a missing secret surfaces on the first send.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{}
	cfg.App.Env = ldr.getString("APP_ENV", "development", false)
	cfg.App.LogLevel = ldr.getString("LOG_LEVEL", "info", false)

	cfg.Providers.SMSProvider = ldr.getString("SMS_PROVIDER", "twilio", false)
	cfg.Providers.MockScenario = ldr.getString("MOCK_SCENARIO", "success", false)

	authToken := ldr.getString("TWILIO_AUTH_TOKEN", "", false)
	cfg.Providers.Twilio = TwilioConfig{
		AccountSID: ldr.getString("TWILIO_ACCOUNT_SID", "", false),
		APIKey:     ldr.getString("TWILIO_API_KEY", "", false),
		APISecret:  ldr.getString("TWILIO_API_SECRET", "", false),
		BaseURL:    strings.TrimRight(ldr.getString("TWILIO_API_BASE_URL", DefaultTwilioBaseURL, false), "/"),
	}
	if cfg.Providers.Twilio.APIKey == "" && cfg.Providers.Twilio.APISecret == "" && authToken != "" {
		cfg.Providers.Twilio.APIKey = cfg.Providers.Twilio.AccountSID
		cfg.Providers.Twilio.APISecret = authToken
	}
	if raw := ldr.getString("TWILIO_CREDENTIALS", "", false); raw != "" {
		creds, err := ParseCredentials(raw)
		if err != nil {
			ldr.addError(fmt.Sprintf("TWILIO_CREDENTIALS: %v", err))
		} else {
			cfg.Providers.Twilio = cfg.Providers.Twilio.WithCredentials(creds)
		}
	}

	cfg.Timeouts.ProviderTimeoutSeconds = ldr.getInt("PROVIDER_TIMEOUT_SECONDS", 30, false)
	cfg.Timeouts.MaxBodyBytes = ldr.getInt("PROVIDER_MAX_BODY_BYTES", 64*1024, false)

	cfg.Health.EnableProviderProbe = ldr.getBool("HEALTH_ENABLE_PROVIDER_PROBE", false, false)

	cfg.MCP.Transport = strings.ToLower(ldr.getString("MCP_TRANSPORT", "stdio", false))
	cfg.MCP.Addr = ldr.getString("MCP_ADDR", ":8080", false)
	cfg.MCP.DefaultAccountSID = ldr.getString("ACCOUNT_SID", "", false)

	switch cfg.MCP.Transport {
	case "stdio", "sse", "http":
	default:
		ldr.addError(fmt.Sprintf("MCP_TRANSPORT must be one of stdio, sse, http; got %q", cfg.MCP.Transport))
	}

	if err := ldr.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Credentials is the parsed form of the "AC.../SK...:secret" shorthand.
type Credentials struct {
	AccountSID string
	APIKey     string
	APISecret  string
}

// ParseCredentials splits "accountSid/apiKey:apiSecret". The account part is
// required; key and secret are validated when a request is built.
func ParseCredentials(raw string) (Credentials, error) {
	raw = strings.TrimSpace(raw)
	account, rest, ok := strings.Cut(raw, "/")
	if !ok {
		return Credentials{}, errors.New(`expected "accountSid/apiKey:apiSecret"`)
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return Credentials{}, errors.New("account sid is empty")
	}
	key, secret, ok := strings.Cut(rest, ":")
	if !ok {
		return Credentials{}, errors.New(`expected "apiKey:apiSecret" after the account sid`)
	}
	return Credentials{
		AccountSID: account,
		APIKey:     strings.TrimSpace(key),
		APISecret:  strings.TrimSpace(secret),
	}, nil
}

// WithCredentials returns a copy of c using the supplied account and key pair.
func (c TwilioConfig) WithCredentials(creds Credentials) TwilioConfig {
	c.AccountSID = creds.AccountSID
	c.APIKey = creds.APIKey
	c.APISecret = creds.APISecret
	return c
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val == "" {
			if required {
				l.addError(fmt.Sprintf("%s is required", key))
			}
			return def
		}
		return val
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid integer", key))
		return def
	}
	return i
}

func (l *envLoader) getBool(key string, def bool, required bool) bool {
	raw := l.getString(key, "", required)
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		l.addError(fmt.Sprintf("%s must be a valid boolean", key))
		return def
	}
	return parsed
}

func (l *envLoader) addError(err string) {
	l.errs = append(l.errs, err)
}
