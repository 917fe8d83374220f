package smsvalidator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	common "github.com/example/messaging-mcp/internal/adapters/common"
	"github.com/example/messaging-mcp/internal/models"
	"github.com/example/messaging-mcp/internal/util"
)

// Validator turns raw tool arguments into a validated models.MessageRequest.
type Validator struct {
	logger zerolog.Logger
}

// New constructs a Validator.
func New(logger zerolog.Logger) *Validator {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &Validator{logger: logger}
}

// ParseAndValidate decodes the JSON arguments strictly and validates them.
// Every failure matches common.ErrInvalidArguments.
func (v *Validator) ParseAndValidate(ctx context.Context, payload []byte) (*models.MessageRequest, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, common.InvalidArguments(errors.New("arguments are empty"))
	}

	var args arguments
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		return nil, common.InvalidArguments(fmt.Errorf("decode: %w", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, common.InvalidArguments(errors.New("decode: trailing data after arguments"))
	}

	req := args.MessageRequest
	if args.ValidityPeriod != nil {
		seconds, err := wholeSeconds(*args.ValidityPeriod)
		if err != nil {
			return nil, common.InvalidArguments(err)
		}
		req.ValidityPeriod = &seconds
	}

	if err := v.applyDefaultsAndValidate(&req); err != nil {
		v.logger.Debug().Err(err).Msg("send_message arguments rejected")
		return nil, common.InvalidArguments(err)
	}
	return &req, nil
}

// arguments shadows ValidityPeriod so integral floats such as 3600.0 decode.
type arguments struct {
	models.MessageRequest
	ValidityPeriod *json.Number `json:"ValidityPeriod,omitempty"`
}

func wholeSeconds(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return clampSeconds(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("ValidityPeriod must be a whole number of seconds, got %s", n.String())
	}
	return clampSeconds(int64(f)), nil
}

// clampSeconds keeps out-of-range values out of range after the int conversion.
func clampSeconds(v int64) int {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

func (v *Validator) applyDefaultsAndValidate(req *models.MessageRequest) error {
	to, err := util.NormalizeAddress(req.To)
	if err != nil {
		return fmt.Errorf("To: %w", err)
	}
	req.To = to

	if err := validateSender(req); err != nil {
		return err
	}
	if err := validateContent(req); err != nil {
		return err
	}

	if strings.TrimSpace(req.StatusCallback) != "" {
		cb, err := util.ValidateHTTPURL(req.StatusCallback)
		if err != nil {
			return fmt.Errorf("StatusCallback: %w", err)
		}
		req.StatusCallback = cb
	} else {
		req.StatusCallback = ""
	}

	if req.ValidityPeriod != nil {
		if err := util.EnsureRange("ValidityPeriod", *req.ValidityPeriod, models.MinValidityPeriod, models.MaxValidityPeriod); err != nil {
			return err
		}
	}
	return nil
}

// validateSender requires at least one of From and MessagingServiceSid.
func validateSender(req *models.MessageRequest) error {
	req.From = strings.TrimSpace(req.From)
	req.MessagingServiceSid = strings.TrimSpace(req.MessagingServiceSid)
	if req.From == "" && req.MessagingServiceSid == "" {
		return errors.New("one of From or MessagingServiceSid is required")
	}
	if req.From != "" {
		from, err := util.NormalizeSender(req.From)
		if err != nil {
			return fmt.Errorf("From: %w", err)
		}
		req.From = from
	}
	if req.MessagingServiceSid != "" {
		if _, err := util.ValidateSID("MG", req.MessagingServiceSid); err != nil {
			return fmt.Errorf("MessagingServiceSid: %w", err)
		}
	}
	return nil
}

// validateContent requires at least one of Body, MediaUrl and ContentSid.
func validateContent(req *models.MessageRequest) error {
	req.ContentSid = strings.TrimSpace(req.ContentSid)
	if strings.TrimSpace(req.Body) == "" {
		req.Body = ""
	}
	if req.Body == "" && len(req.MediaURLs) == 0 && req.ContentSid == "" {
		return errors.New("one of Body, MediaUrl or ContentSid is required")
	}
	if err := util.EnsureMaxRunes("Body", req.Body, models.MaxBodyChars); err != nil {
		return err
	}
	if len(req.MediaURLs) > 0 {
		media, err := util.ValidateHTTPURLs(req.MediaURLs, 1, models.MaxMediaURLs)
		if err != nil {
			return fmt.Errorf("MediaUrl: %w", err)
		}
		req.MediaURLs = media
	}
	if req.ContentSid != "" {
		if _, err := util.ValidateSID("HX", req.ContentSid); err != nil {
			return fmt.Errorf("ContentSid: %w", err)
		}
	}
	return nil
}
