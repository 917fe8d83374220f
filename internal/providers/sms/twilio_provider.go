package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	common "github.com/example/messaging-mcp/internal/adapters/common"
	"github.com/example/messaging-mcp/internal/config"
	"github.com/example/messaging-mcp/internal/models"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 64 * 1024

	idempotencyHeader = "I-Twilio-Idempotency-Token"
)

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TwilioOption customises the behaviour of the Twilio provider.
type TwilioOption func(*TwilioProvider)

// WithTwilioHTTPClient overrides the HTTP client used to talk to Twilio.
func WithTwilioHTTPClient(client HTTPClient) TwilioOption {
	return func(p *TwilioProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithTwilioBaseURL sets the base Twilio API URL. Useful for tests.
func WithTwilioBaseURL(baseURL string) TwilioOption {
	return func(p *TwilioProvider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTwilioTimeout sets the timeout of the default HTTP client. It has no
// effect when a client is supplied with WithTwilioHTTPClient.
func WithTwilioTimeout(d time.Duration) TwilioOption {
	return func(p *TwilioProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTwilioBodyLimit adjusts how many bytes are retained from the HTTP response body.
func WithTwilioBodyLimit(limit int64) TwilioOption {
	return func(p *TwilioProvider) {
		if limit > 0 {
			p.maxBodyBytes = limit
		}
	}
}

// WithTwilioTokenSource overrides the generator of idempotency tokens.
func WithTwilioTokenSource(next func() string) TwilioOption {
	return func(p *TwilioProvider) {
		if next != nil {
			p.newToken = next
		}
	}
}

// TwilioProvider sends messages through the Programmable Messaging API.
type TwilioProvider struct {
	logger       zerolog.Logger
	accountSID   string
	apiKey       string
	apiSecret    string
	httpClient   HTTPClient
	baseURL      string
	timeout      time.Duration
	maxBodyBytes int64
	newToken     func() string
}

// NewTwilioProvider constructs a Twilio-backed SMS provider. Only the account
// SID is required up front; the key/secret pair is checked on every request so
// that a missing secret reaches the caller as a configuration error.
func NewTwilioProvider(cfg config.TwilioConfig, logger zerolog.Logger, opts ...TwilioOption) (*TwilioProvider, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, common.Configuration("twilio sms provider: account SID is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultTwilioBaseURL
	}

	provider := &TwilioProvider{
		logger:       logger,
		accountSID:   strings.TrimSpace(cfg.AccountSID),
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		baseURL:      baseURL,
		timeout:      defaultTimeout,
		maxBodyBytes: defaultMaxBodyBytes,
		newToken:     uuid.NewString,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(provider)
		}
	}

	if provider.httpClient == nil {
		provider.httpClient = &http.Client{Timeout: provider.timeout}
	}
	if provider.baseURL == "" {
		provider.baseURL = config.DefaultTwilioBaseURL
	}

	return provider, nil
}

// Send creates a message via POST /Accounts/{sid}/Messages.json.
func (p *TwilioProvider) Send(ctx context.Context, req *models.MessageRequest) (*models.MessageResource, error) {
	if req == nil {
		return nil, errors.New("twilio sms provider: request is required")
	}

	path := fmt.Sprintf("/Accounts/%s/Messages.json", url.PathEscape(p.accountSID))
	token := p.newToken()
	body, err := p.do(ctx, http.MethodPost, path, req.Params(), token)
	if err != nil {
		return nil, err
	}

	var resource models.MessageResource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, common.WrapMalformed(fmt.Errorf("twilio sms provider: decode message resource: %w", err))
	}

	p.logger.Debug().
		Str("request_id", token).
		Str("sid", resource.SID).
		Str("provider_status", resource.Status).
		Msg("twilio message created")
	return &resource, nil
}

// Probe fetches the account resource to verify the configured credentials.
func (p *TwilioProvider) Probe(ctx context.Context) (*models.AccountResource, error) {
	path := fmt.Sprintf("/Accounts/%s.json", url.PathEscape(p.accountSID))
	body, err := p.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var account models.AccountResource
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, common.WrapMalformed(fmt.Errorf("twilio sms provider: decode account resource: %w", err))
	}
	return &account, nil
}

// Request performs a single call against baseURL+path and returns the body of
// a 2xx response. POST sends params as a form body, GET as the query string.
// Non-2xx responses become *common.ProviderError; connection failures are
// returned with their original text and classified as transport errors.
func (p *TwilioProvider) Request(ctx context.Context, method, path string, params map[string]any) ([]byte, error) {
	return p.do(ctx, method, path, params, "")
}

func (p *TwilioProvider) do(ctx context.Context, method, path string, params map[string]any, idempotencyToken string) ([]byte, error) {
	auth, err := BasicAuthHeader(p.apiKey, p.apiSecret)
	if err != nil {
		return nil, err
	}

	endpoint := p.baseURL + path
	encoded := EncodeForm(params).Encode()

	var body io.Reader
	switch method {
	case http.MethodGet:
		if encoded != "" {
			endpoint += "?" + encoded
		}
	case http.MethodPost:
		body = strings.NewReader(encoded)
	default:
		return nil, fmt.Errorf("twilio sms provider: unsupported method %s", method)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("twilio sms provider: new request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyToken != "" {
		req.Header.Set(idempotencyHeader, idempotencyToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, common.WrapTransport(err)
	}
	defer resp.Body.Close()

	data, err := p.readBody(resp.Body)
	if err != nil {
		return nil, common.WrapTransport(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	perr := parseErrorBody(resp.StatusCode, data)
	p.logger.Warn().
		Str("method", method).
		Str("path", path).
		Int("http_status", resp.StatusCode).
		Int("code", perr.Code).
		Str("raw", common.TruncateRaw(perr.Raw, common.DefaultRawBodyLimit)).
		Msg("twilio request rejected")
	return nil, perr
}

func (p *TwilioProvider) readBody(rc io.ReadCloser) ([]byte, error) {
	if rc == nil {
		return nil, nil
	}

	limit := p.maxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}

	data, err := io.ReadAll(io.LimitReader(rc, limit))
	if err != nil {
		return nil, fmt.Errorf("twilio sms provider: read body: %w", err)
	}
	return data, nil
}

// parseErrorBody tries the structured error shape first. A body that is not
// JSON, or JSON without a message, is kept verbatim.
func parseErrorBody(status int, body []byte) *common.ProviderError {
	perr := &common.ProviderError{StatusCode: status, Raw: string(body)}

	var desc models.ErrorDescriptor
	if err := json.Unmarshal(body, &desc); err != nil {
		return perr
	}
	if desc.Message == "" {
		return perr
	}
	perr.Code = desc.Code
	perr.Message = desc.Message
	perr.MoreInfo = desc.MoreInfo
	if desc.Status != 0 {
		perr.StatusCode = desc.Status
	}
	return perr
}
