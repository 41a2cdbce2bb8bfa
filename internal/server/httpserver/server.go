package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/timekeep-go/internal/infra/tlsroots"
)

// Config configures the HTTP server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TLSCertFile and TLSKeyFile enable HTTPS; the pair is reloaded when
	// either file changes.
	TLSCertFile string
	TLSKeyFile  string

	Logger *slog.Logger
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	reloader   *tlsroots.Reloader
	logger     *slog.Logger
}

// New creates a new HTTP server. With TLS configured the key pair is
// loaded here, so a bad certificate fails startup.
func New(cfg *Config, handler http.Handler) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ErrorLog:          slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelWarn),
		},
		logger: cfg.Logger,
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		reloader, err := tlsroots.NewReloader(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.Logger)
		if err != nil {
			return nil, err
		}
		s.reloader = reloader
		s.httpServer.TLSConfig = reloader.ServerConfig()
	}
	return s, nil
}

// TLSEnabled reports whether the server serves HTTPS.
func (s *Server) TLSEnabled() bool {
	return s.reloader != nil
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln, with TLS if configured.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", "addr", ln.Addr().String(), "tls", s.TLSEnabled())

	var err error
	if s.reloader != nil {
		// Certificates come from TLSConfig.GetCertificate.
		err = s.httpServer.ServeTLS(ln, "", "")
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// WatchCertificates reloads the TLS key pair on change until ctx is done.
// It is a no-op without TLS.
func (s *Server) WatchCertificates(ctx context.Context) error {
	if s.reloader == nil {
		return nil
	}
	return s.reloader.Watch(ctx)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
