package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"hireflow/internal/api"
	"hireflow/internal/config"
	"hireflow/internal/logging"
	"hireflow/internal/pipeline"
)

// Server exposes the pipeline over HTTP and enforces single-instance
// execution with a file lock next to the database.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *pipeline.Store
	service *api.PipelineService

	lockPath string
	lock     *flock.Flock

	listener net.Listener
	server   *http.Server
}

// New constructs a server around the provided store. The returned server is
// not listening yet; call Start.
func New(cfg *config.Config, store *pipeline.Store, logger *slog.Logger) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("server requires config and store")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "hireflowd.lock")
	srv := &Server{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		service:  api.NewPipelineService(store, cfg.Pipeline.PageSize),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	srv.server = &http.Server{
		Addr:              bind,
		Handler:           authMiddleware(cfg.Paths.APIToken, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start acquires the instance lock and begins serving. Serving stops when
// ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another hireflow server instance is already running")
	}

	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.log().Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath))
	return nil
}

// Stop drains in-flight requests and releases the instance lock.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	if err := s.lock.Unlock(); err != nil {
		s.log().Warn("failed to release instance lock", logging.Error(err))
	}
}

// Addr returns the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler exposes the routed (and authenticated) handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
