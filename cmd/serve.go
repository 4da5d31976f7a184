package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zpam/hamspam/pkg/api"
	"github.com/zpam/hamspam/pkg/cache"
	"github.com/zpam/hamspam/pkg/config"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/logger"
	"github.com/zpam/hamspam/pkg/milter"
	"github.com/zpam/hamspam/pkg/profiler"
	"github.com/zpam/hamspam/pkg/service"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddress  string
	serveLanguage string
	serveMilter   bool
	serveLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the classification server",
	Long: `Start the hamspam HTTP server and, when enabled, the milter server for
Postfix/Sendmail integration. Both share one in-memory model.

The model starts empty on every start; train it with 'hamspam train'.

Example usage:
  # Start with defaults (HTTP on :3000, english stemming)
  hamspam serve

  # Custom address and language
  hamspam serve --address 127.0.0.1:8080 --language russian

  # Also accept mail from an MTA
  hamspam serve --milter

For Postfix integration, add to main.cf:
  smtpd_milters = inet:127.0.0.1:7357
  non_smtpd_milters = inet:127.0.0.1:7357
  milter_default_action = accept`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flags override file and environment
		if cmd.Flags().Changed("address") {
			cfg.Server.Address = serveAddress
		}
		if cmd.Flags().Changed("language") {
			cfg.Model.Language = serveLanguage
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = serveLogLevel
		}
		if serveMilter {
			cfg.Milter.Enabled = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err := logger.New(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runServer(ctx, cfg, log)
	},
}

// runServer builds the shared classifier and runs every enabled transport
// until ctx is cancelled or one of them fails
func runServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	model, err := learning.NewModel(cfg.Model.Language)
	if err != nil {
		return err
	}

	rc, err := cache.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create result cache: %w", err)
	}
	defer rc.Close()

	if redisCache, ok := rc.(*cache.RedisCache); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("result cache unreachable, continuing without hits")
		}
		cancel()
	}

	svc := service.NewClassifier(learning.NewGuard(model), rc, profiler.NewProfiler(0), log)

	var milterServer *milter.Server
	var milterListener net.Listener
	if cfg.Milter.Enabled {
		if milterServer, err = milter.NewServer(cfg, svc, log); err != nil {
			return err
		}
		if milterListener, err = milterServer.Listen(); err != nil {
			return err
		}
	}

	httpListener, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		if milterListener != nil {
			milterListener.Close()
		}
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Address, err)
	}
	httpServer := api.NewServer(cfg, svc, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Serve(ctx, httpListener)
	})
	if milterServer != nil {
		g.Go(func() error {
			return milterServer.Serve(ctx, milterListener)
		})
	}

	log.Info().
		Str("address", cfg.Server.Address).
		Str("language", cfg.Model.Language).
		Str("cache", rc.Name()).
		Bool("milter", cfg.Milter.Enabled).
		Msg("hamspam started")

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("hamspam stopped")
	return nil
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "HTTP bind address (e.g. :3000)")
	serveCmd.Flags().StringVarP(&serveLanguage, "language", "l", "", "Stemming language")
	serveCmd.Flags().BoolVarP(&serveMilter, "milter", "m", false, "Enable the milter server")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
