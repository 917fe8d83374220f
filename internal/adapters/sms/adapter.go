package sms

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	common "github.com/example/messaging-mcp/internal/adapters/common"
	"github.com/example/messaging-mcp/internal/models"
	smsprovider "github.com/example/messaging-mcp/internal/providers/sms"
)

// Adapter implements common.Adapter on top of an SMS provider.
type Adapter struct {
	logger   zerolog.Logger
	provider smsprovider.Provider
}

// NewAdapter constructs an SMS adapter using the supplied provider.
func NewAdapter(provider smsprovider.Provider, logger zerolog.Logger) (*Adapter, error) {
	if provider == nil {
		return nil, errors.New("sms adapter: provider dependency is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &Adapter{logger: logger, provider: provider}, nil
}

// Send delivers the request and folds the outcome into a text Result. It is
// the terminal catch-all of the pipeline and does not return errors.
func (a *Adapter) Send(ctx context.Context, req *models.MessageRequest) (result common.Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			a.logger.Error().Err(err).Msg("sms adapter recovered from panic")
			result = Failure(err)
		}
	}()

	if req == nil {
		return Failure(errors.New("message request is nil"))
	}

	resource, err := a.provider.Send(ctx, req)
	if err != nil {
		a.logger.Warn().
			Str("to", req.To).
			Str("error_class", classOf(err)).
			Err(err).
			Msg("sms adapter send failed")
		return Failure(err)
	}
	if resource == nil {
		return Failure(errors.New("provider returned no message resource"))
	}

	evt := a.logger.Info().
		Str("to", req.To).
		Str("sid", resource.SID).
		Str("provider_status", resource.Status)
	if msg, ok := resource.SoftError(); ok {
		evt = a.logger.Warn().
			Str("to", req.To).
			Str("sid", resource.SID).
			Str("provider_status", resource.Status).
			Str("provider_error", msg)
		if resource.ErrorCode != nil {
			evt = evt.Int("provider_error_code", *resource.ErrorCode)
		}
	}
	evt.Msg("sms adapter send succeeded")

	return common.Result{Text: FormatSuccess(resource)}
}

// Failure builds the error outcome for err.
func Failure(err error) common.Result {
	return common.Result{Text: FormatError(err), IsError: true}
}

func classOf(err error) string {
	switch {
	case errors.Is(err, common.ErrConfiguration):
		return "configuration"
	case errors.Is(err, common.ErrInvalidArguments):
		return "invalid_arguments"
	case errors.Is(err, common.ErrProvider):
		return "provider"
	case errors.Is(err, common.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, common.ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
