package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/archdiagram/pkg/buildinfo"
	"github.com/matzehuels/archdiagram/pkg/generate"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultShutdownTimeout = 10 * time.Second

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 1 << 20
)

// DefaultTempDir returns the default parent directory for render output.
func DefaultTempDir() string {
	return filepath.Join(os.TempDir(), "archdiagram")
}

// Config configures a [Server].
type Config struct {
	Host    string
	Port    int
	TempDir string
	Version string

	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.TempDir == "" {
		c.TempDir = DefaultTempDir()
	}
	if c.Version == "" {
		c.Version = buildinfo.Version
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Server is the HTTP front end of the pipeline. It keeps no state between
// requests besides its configuration.
type Server struct {
	cfg       Config
	runner    *pipeline.Runner
	assistant generate.Assistant
	logger    *log.Logger
	router    chi.Router
}

// New creates a server. runner must not be nil. A nil runner.Generator or
// nil assistant leaves the corresponding routes answering 503.
func New(cfg Config, runner *pipeline.Runner, assistant generate.Assistant, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		cfg:       cfg,
		runner:    runner,
		assistant: assistant,
		logger:    logger,
	}
	s.router = s.routes()
	return s
}

// Config returns the server configuration with defaults applied.
func (s *Server) Config() Config { return s.cfg }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/node-types", s.handleNodeTypes)
		r.Post("/generate-diagram", s.handleGenerateDiagram)
		r.Post("/render-diagram", s.handleRenderDiagram)
		r.Post("/assistant", s.handleAssistant)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method Not Allowed"})
	})
	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully. TempDir is created before listening and removed after
// shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.Run] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := os.MkdirAll(s.cfg.TempDir, 0o755); err != nil {
		ln.Close()
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer s.removeTempDir()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", ln.Addr().String(), "temp_dir", s.cfg.TempDir)
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.runner.Renderer.Pool().Wait()
	return nil
}

func (s *Server) removeTempDir() {
	if err := os.RemoveAll(s.cfg.TempDir); err != nil {
		s.logger.Warn("failed to remove temp dir", "path", s.cfg.TempDir, "error", err)
	}
}
