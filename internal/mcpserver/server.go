package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	common "github.com/example/messaging-mcp/internal/adapters/common"
	smsadapter "github.com/example/messaging-mcp/internal/adapters/sms"
	smsvalidator "github.com/example/messaging-mcp/internal/validator/sms"
)

const (
	DefaultName    = "messaging-mcp"
	DefaultVersion = "dev"

	shutdownTimeout = 5 * time.Second
)

// Transport names accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Options configures the MCP server.
type Options struct {
	Name    string
	Version string
	// DefaultAccountSID is mentioned in the instructions when set.
	DefaultAccountSID string
}

// Server exposes the send tool over MCP.
type Server struct {
	logger    zerolog.Logger
	adapter   common.Adapter
	validator *smsvalidator.Validator
	mcp       *mcp.Server
}

// New builds the MCP server and registers the send tool.
func New(adapter common.Adapter, opts Options, logger zerolog.Logger) (*Server, error) {
	if adapter == nil {
		return nil, errors.New("mcpserver: adapter dependency is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}

	s := &Server{
		logger:    logger,
		adapter:   adapter,
		validator: smsvalidator.New(logger.With().Str("component", "sms-validator").Logger()),
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, &mcp.ServerOptions{
		Instructions: Instructions(opts.DefaultAccountSID),
	})

	openWorld := true
	destructive := false
	s.mcp.AddTool(&mcp.Tool{
		Name:        ToolName,
		Description: toolDescription,
		InputSchema: inputSchema(),
		Annotations: &mcp.ToolAnnotations{
			Title:           "Send message",
			DestructiveHint: &destructive,
			OpenWorldHint:   &openWorld,
		},
	}, s.handleSend)

	return s, nil
}

// Instructions returns the server instructions shown to the host.
func Instructions(accountSID string) string {
	var b strings.Builder
	b.WriteString("Use the ")
	b.WriteString(ToolName)
	b.WriteString(" tool to send SMS, MMS or WhatsApp messages through Twilio. ")
	b.WriteString("Phone numbers must be in E.164 format (for example +15551234567). ")
	b.WriteString("Each call sends exactly one message and is not retried.")
	if sid := strings.TrimSpace(accountSID); sid != "" {
		b.WriteString(" Messages are sent from Twilio account ")
		b.WriteString(sid)
		b.WriteString(".")
	}
	return b.String()
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

func (s *Server) handleSend(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.logger.With().Str("call_id", uuid.NewString()).Str("tool", ToolName).Logger()

	var args []byte
	if req != nil && req.Params != nil {
		args = req.Params.Arguments
	}

	msg, err := s.validator.ParseAndValidate(ctx, args)
	if err != nil {
		log.Info().Err(err).Msg("tool call rejected")
		return toCallToolResult(smsadapter.Failure(err)), nil
	}

	res := s.adapter.Send(ctx, msg)
	log.Debug().Bool("is_error", res.IsError).Msg("tool call finished")
	return toCallToolResult(res), nil
}

func toCallToolResult(res common.Result) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
		IsError: res.IsError,
	}
}

// Serve runs the server on the named transport until ctx is cancelled or
// the transport fails. addr is only used by the HTTP based transports.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "", TransportStdio:
		s.logger.Info().Str("transport", TransportStdio).Msg("mcp server listening")
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	case TransportSSE:
		return s.serveHTTP(ctx, TransportSSE, addr, s.SSEHandler())
	case TransportHTTP:
		return s.serveHTTP(ctx, TransportHTTP, addr, s.StreamableHandler())
	default:
		return fmt.Errorf("mcpserver: unsupported transport %q", transport)
	}
}

// SSEHandler serves the tool over the legacy SSE transport.
func (s *Server) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}

// StreamableHandler serves the tool over the streamable HTTP transport.
func (s *Server) StreamableHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}

func (s *Server) serveHTTP(ctx context.Context, transport, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("transport", transport).Str("addr", addr).Msg("mcp server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("mcpserver: %s listener: %w", transport, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mcpserver: shutdown: %w", err)
	}
	s.logger.Info().Str("transport", transport).Msg("mcp server stopped")
	return nil
}
