package milter

import (
	"context"
	"fmt"
	"net"

	"github.com/d--j/go-milter"
	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/config"
)

// Server is the milter transport
type Server struct {
	config    *config.Config
	milterSrv *milter.Server
	log       zerolog.Logger
}

// NewServer creates a new milter server classifying with svc
func NewServer(cfg *config.Config, svc Classifier, log zerolog.Logger) (*Server, error) {
	if !cfg.Milter.Enabled {
		return nil, fmt.Errorf("milter is not enabled in configuration")
	}

	log = log.With().Str("component", "milter").Logger()

	milterOpts := []milter.Option{
		// Only headers and body are needed for classification
		milter.WithProtocol(milter.OptNoConnect | milter.OptNoHelo | milter.OptNoRcptTo | milter.OptNoData),
		milter.WithAction(milter.OptAddHeader),
		milter.WithReadTimeout(config.Millis(cfg.Milter.ReadTimeoutMs)),
		milter.WithWriteTimeout(config.Millis(cfg.Milter.WriteTimeoutMs)),
		milter.WithMilter(func() milter.Milter {
			return NewHandler(cfg.Milter, svc, log)
		}),
	}

	return &Server{
		config:    cfg,
		milterSrv: milter.NewServer(milterOpts...),
		log:       log,
	}, nil
}

// Listen opens the configured milter socket
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen(s.config.Milter.Network, s.config.Milter.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s %s: %w", s.config.Milter.Network, s.config.Milter.Address, err)
	}
	return ln, nil
}

// Serve accepts milter connections until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", listener.Addr().String()).Msg("milter server listening")
		errChan <- s.milterSrv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			config.Millis(s.config.Server.ShutdownTimeoutMs),
		)
		defer cancel()

		if err := s.milterSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown milter server: %w", err)
		}
		s.log.Info().Uint64("sessions", s.milterSrv.MilterCount()).Msg("milter server stopped")
		return nil

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("milter server error: %w", err)
		}
		return nil
	}
}

// Close closes the milter server
func (s *Server) Close() error {
	return s.milterSrv.Close()
}

// Stats returns server statistics
func (s *Server) Stats() ServerStats {
	return ServerStats{
		MilterCount: s.milterSrv.MilterCount(),
	}
}

// ServerStats contains server statistics
type ServerStats struct {
	MilterCount uint64 // Total number of milter instances created
}
