package api

import (
	"context"
	"fmt"
	"net"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/config"
)

// Server is the HTTP transport
type Server struct {
	app *fiber.App
	cfg config.ServerConfig
	log zerolog.Logger
}

// NewServer builds the fiber app with middleware and routes
func NewServer(cfg *config.Config, svc Classifier, log zerolog.Logger) *Server {
	log = log.With().Str("component", "http").Logger()

	app := fiber.New(fiber.Config{
		AppName:               "hamspam",
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
		UnescapePath:          true,

		// go-json for all request and response bodies
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    cfg.Server.BodyLimitBytes,
		ReadTimeout:  config.Millis(cfg.Server.ReadTimeoutMs),
		WriteTimeout: config.Millis(cfg.Server.WriteTimeoutMs),
	})

	app.Use(Recover(log))
	app.Use(RequestID())
	app.Use(RequestLogger(log))

	NewHandler(svc, cfg.Model.MaxBatchSize).Register(app)

	return &Server{app: app, cfg: cfg.Server, log: log}
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", ln.Addr().String()).Msg("http server listening")
		errChan <- s.app.Listener(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Millis(s.cfg.ShutdownTimeoutMs))
		defer cancel()

		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown http server: %w", err)
		}
		s.log.Info().Msg("http server stopped")
		return nil

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}
}
