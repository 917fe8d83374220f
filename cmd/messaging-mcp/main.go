package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	smsadapter "github.com/example/messaging-mcp/internal/adapters/sms"
	"github.com/example/messaging-mcp/internal/config"
	"github.com/example/messaging-mcp/internal/logger"
	"github.com/example/messaging-mcp/internal/mcpserver"
	"github.com/example/messaging-mcp/internal/models"
	"github.com/example/messaging-mcp/internal/providers/factory"
	smsprovider "github.com/example/messaging-mcp/internal/providers/sms"
	smsvalidator "github.com/example/messaging-mcp/internal/validator/sms"
)

const probeTimeout = 10 * time.Second

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var errSendFailed = errors.New("message was not sent")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errSendFailed) {
			fmt.Fprintln(os.Stderr, "messaging-mcp:", err)
		}
		stop()
		os.Exit(1)
	}
}

type rootFlags struct {
	credentials string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "messaging-mcp",
		Short:         "messaging-mcp - send SMS/MMS through Twilio from an agent host",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.credentials, "credentials", "", `Twilio credentials as "ACxxx/SKxxx:secret" (overrides TWILIO_CREDENTIALS)`)
	root.AddCommand(newServeCmd(flags), newSendCmd(flags))
	return root
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var transport, addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server exposing the send_message tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.MCP.Transport = strings.ToLower(strings.TrimSpace(transport))
			}
			if cmd.Flags().Changed("addr") {
				cfg.MCP.Addr = addr
			}
			return runServe(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "MCP transport: stdio, sse or http (overrides MCP_TRANSPORT)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for sse/http (overrides MCP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log = log.With().Str("service", "messaging-mcp").Logger()

	provider, adapter, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Health.EnableProviderProbe {
		probe(ctx, provider, log.With().Str("component", "provider-probe").Logger())
	}

	srv, err := mcpserver.New(adapter, mcpserver.Options{
		Name:              mcpserver.DefaultName,
		Version:           version,
		DefaultAccountSID: cfg.MCP.DefaultAccountSID,
	}, log.With().Str("component", "mcp-server").Logger())
	if err != nil {
		return fmt.Errorf("mcp server init: %w", err)
	}

	if err := srv.Serve(ctx, cfg.MCP.Transport, cfg.MCP.Addr); err != nil {
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

type sendFlags struct {
	to             string
	from           string
	serviceSID     string
	body           string
	mediaURLs      []string
	contentSID     string
	statusCallback string
	validityPeriod int
}

func newSendCmd(flags *rootFlags) *cobra.Command {
	sf := &sendFlags{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single message and print the tool result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(cmd, flags)
			if err != nil {
				return err
			}
			payload, err := sf.arguments(cmd)
			if err != nil {
				return err
			}
			return runSend(cmd.Context(), cfg, log, payload, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sf.to, "to", "", "recipient in E.164 format")
	cmd.Flags().StringVar(&sf.from, "from", "", "sender number or alphanumeric ID")
	cmd.Flags().StringVar(&sf.serviceSID, "messaging-service-sid", "", "messaging service SID (MG...)")
	cmd.Flags().StringVar(&sf.body, "body", "", "message text")
	cmd.Flags().StringArrayVar(&sf.mediaURLs, "media-url", nil, "media URL, repeatable")
	cmd.Flags().StringVar(&sf.contentSID, "content-sid", "", "content template SID (HX...)")
	cmd.Flags().StringVar(&sf.statusCallback, "status-callback", "", "status callback URL")
	cmd.Flags().IntVar(&sf.validityPeriod, "validity-period", 0, "validity period in seconds")
	return cmd
}

// arguments renders the flags as the JSON arguments an agent host would send.
func (sf *sendFlags) arguments(cmd *cobra.Command) ([]byte, error) {
	req := models.MessageRequest{
		To:                  sf.to,
		From:                sf.from,
		MessagingServiceSid: sf.serviceSID,
		Body:                sf.body,
		MediaURLs:           sf.mediaURLs,
		ContentSid:          sf.contentSID,
		StatusCallback:      sf.statusCallback,
	}
	if cmd.Flags().Changed("validity-period") {
		v := sf.validityPeriod
		req.ValidityPeriod = &v
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	return payload, nil
}

func runSend(ctx context.Context, cfg *config.Config, log zerolog.Logger, payload []byte, out io.Writer) error {
	log = log.With().Str("service", "messaging-mcp").Logger()

	_, adapter, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	validator := smsvalidator.New(log.With().Str("component", "sms-validator").Logger())
	req, err := validator.ParseAndValidate(ctx, payload)
	result := smsadapter.Failure(err)
	if err == nil {
		result = adapter.Send(ctx, req)
	}

	fmt.Fprintln(out, result.Text)
	if result.IsError {
		return errSendFailed
	}
	return nil
}

func loadRuntime(cmd *cobra.Command, flags *rootFlags) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("config load: %w", err)
	}
	if flags.credentials != "" {
		creds, err := config.ParseCredentials(flags.credentials)
		if err != nil {
			return nil, zerolog.Logger{}, fmt.Errorf("--credentials: %w", err)
		}
		cfg.Providers.Twilio = cfg.Providers.Twilio.WithCredentials(creds)
	}

	var writers []io.Writer
	if w := cmd.ErrOrStderr(); w != io.Writer(os.Stderr) {
		writers = append(writers, w)
	}
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel, writers...)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("logger init: %w", err)
	}
	return cfg, *log, nil
}

func buildPipeline(cfg *config.Config, log zerolog.Logger) (smsprovider.Provider, *smsadapter.Adapter, error) {
	providerLogger := log.With().
		Str("component", "sms-provider").
		Str("backend", strings.ToLower(strings.TrimSpace(cfg.Providers.SMSProvider))).
		Logger()
	provider, err := factory.SMS(cfg.Providers, cfg.Timeouts, providerLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("sms provider init: %w", err)
	}

	adapter, err := smsadapter.NewAdapter(provider, log.With().Str("component", "sms-adapter").Logger())
	if err != nil {
		return nil, nil, fmt.Errorf("sms adapter init: %w", err)
	}
	return provider, adapter, nil
}

// probe verifies credentials once at startup. Failures are reported but never
// stop the server.
func probe(ctx context.Context, provider smsprovider.Provider, log zerolog.Logger) {
	prober, ok := provider.(smsprovider.Prober)
	if !ok {
		log.Debug().Msg("provider does not support probing")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	account, err := prober.Probe(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("provider probe failed")
		return
	}
	log.Info().
		Str("account_sid", account.SID).
		Str("account_status", account.Status).
		Msg("provider probe succeeded")
}
