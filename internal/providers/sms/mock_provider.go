package sms

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	common "github.com/example/messaging-mcp/internal/adapters/common"
	"github.com/example/messaging-mcp/internal/models"
)

// Scenario enumerates the mock behaviours supported by the SMS provider.
type Scenario string

const (
	ScenarioSuccess       Scenario = "success"
	ScenarioSoftError     Scenario = "soft_error"
	ScenarioProviderError Scenario = "provider_error"
	ScenarioMalformed     Scenario = "malformed"
	ScenarioTimeout       Scenario = "timeout"
)

// ParseScenario maps a configuration value to a Scenario.
func ParseScenario(value string) (Scenario, error) {
	s := Scenario(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case "":
		return ScenarioSuccess, nil
	case ScenarioSuccess, ScenarioSoftError, ScenarioProviderError, ScenarioMalformed, ScenarioTimeout:
		return s, nil
	default:
		return "", fmt.Errorf("sms mock: unknown scenario %q", value)
	}
}

// Option customises the mock provider.
type Option func(*MockProvider)

// WithScenario sets the scenario used for every send.
func WithScenario(s Scenario) Option {
	return func(p *MockProvider) {
		p.scenario = s
	}
}

// WithLatency configures the artificial latency injected before sending.
func WithLatency(d time.Duration) Option {
	return func(p *MockProvider) {
		if d < 0 {
			d = 0
		}
		p.latency = d
	}
}

// WithTimeout bounds how long the timeout scenario waits before failing.
func WithTimeout(d time.Duration) Option {
	return func(p *MockProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock overrides the clock used to timestamp responses (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(p *MockProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// MockProvider is a deterministic SMS provider for local development and tests.
// It never touches the network.
type MockProvider struct {
	logger   zerolog.Logger
	scenario Scenario
	latency  time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu   sync.Mutex
	rnd  *rand.Rand
	sent []models.MessageRequest
}

// NewMockProvider constructs a mock SMS provider.
func NewMockProvider(logger zerolog.Logger, opts ...Option) *MockProvider {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	p := &MockProvider{
		logger:   logger,
		scenario: ScenarioSuccess,
		latency:  25 * time.Millisecond,
		timeout:  defaultTimeout,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- predictable in tests.
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Send simulates creating a message according to the configured scenario.
func (p *MockProvider) Send(ctx context.Context, req *models.MessageRequest) (*models.MessageResource, error) {
	if req == nil {
		return nil, errors.New("sms mock: request is required")
	}

	// honour context cancellation before work begins
	select {
	case <-ctx.Done():
		return nil, common.WrapTransport(ctx.Err())
	default:
	}

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, common.WrapTransport(ctx.Err())
		case <-timer.C:
		}
	}

	p.mu.Lock()
	p.sent = append(p.sent, *req)
	p.mu.Unlock()

	resource := &models.MessageResource{
		SID:         p.generateSID(),
		Status:      "queued",
		To:          req.To,
		Body:        req.Body,
		Direction:   "outbound-api",
		NumSegments: "1",
		DateCreated: p.now().UTC().Format(time.RFC1123Z),
	}
	if req.From != "" {
		from := req.From
		resource.From = &from
	}
	if req.MessagingServiceSid != "" {
		service := req.MessagingServiceSid
		resource.MessagingServiceSID = &service
	}

	switch p.scenario {
	case ScenarioSuccess:
		return resource, nil
	case ScenarioSoftError:
		code := 30006
		msg := "Landline or unreachable carrier"
		resource.ErrorCode = &code
		resource.ErrorMessage = &msg
		return resource, nil
	case ScenarioProviderError:
		return nil, &common.ProviderError{
			StatusCode: 400,
			Code:       21211,
			Message:    fmt.Sprintf("The 'To' number %s is not a valid phone number.", req.To),
			MoreInfo:   "https://www.twilio.com/docs/errors/21211",
		}
	case ScenarioMalformed:
		return nil, common.WrapMalformed(errors.New("sms mock: unexpected end of JSON input"))
	case ScenarioTimeout:
		tctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		<-tctx.Done()
		return nil, common.WrapTransport(tctx.Err())
	default:
		return nil, fmt.Errorf("sms mock unknown scenario: %s", p.scenario)
	}
}

// Sent returns a copy of every request the mock has accepted.
func (p *MockProvider) Sent() []models.MessageRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.MessageRequest(nil), p.sent...)
}

func (p *MockProvider) generateSID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("SM%016x%016x", p.rnd.Uint64(), p.rnd.Uint64())
}
