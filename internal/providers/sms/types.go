package sms

import (
	"context"

	"github.com/example/messaging-mcp/internal/models"
)

// Provider represents an outbound SMS provider (e.g. Twilio).
type Provider interface {
	Send(ctx context.Context, req *models.MessageRequest) (*models.MessageResource, error)
}

// Prober is implemented by providers that can verify their credentials
// without sending a message.
type Prober interface {
	Probe(ctx context.Context) (*models.AccountResource, error)
}
