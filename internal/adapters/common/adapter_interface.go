package common

import (
	"context"

	"github.com/example/messaging-mcp/internal/models"
)

// Adapter turns a validated message request into a text outcome. It never
// returns an error: every failure is folded into Result.
type Adapter interface {
	Send(ctx context.Context, req *models.MessageRequest) Result
}
