package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/pkg/book"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host           string        // Host to bind to (default "localhost")
	Port           int           // Port to listen on (default 8080)
	ReadTimeout    time.Duration // Read timeout (default 30s)
	WriteTimeout   time.Duration // Write timeout (default 90s, above SolveTimeout)
	IdleTimeout    time.Duration // Idle timeout (default 60s)
	MaxFastWorkers int           // Max concurrent book lookups (default 100)
	MaxSlowWorkers int           // Max concurrent solves (default 2)
	SolverWorkers  int           // Goroutines per solve (default NumCPU)
	SolveTimeout   time.Duration // Limit for one solve (default 60s)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	pool := DefaultPoolConfig()
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   90 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: pool.MaxFastWorkers,
		MaxSlowWorkers: pool.MaxSlowWorkers,
		SolveTimeout:   DefaultSolveTimeout,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	handlers *Handlers
	metrics  *Metrics
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a new API server. b may be nil, in which case every
// position is solved.
func NewServer(b *book.Book, sv *quantik.Solver, config ServerConfig, version string) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: config.MaxFastWorkers,
		MaxSlowWorkers: config.MaxSlowWorkers,
	})
	metrics := NewMetrics(sv)

	handlers := NewHandlersWithPool(b, sv, version, pool)
	handlers.metrics = metrics
	if config.SolverWorkers > 0 {
		handlers.workers = config.SolverWorkers
	}
	if config.SolveTimeout > 0 {
		handlers.solveTimeout = config.SolveTimeout
	}

	return &Server{
		config:   config,
		handlers: handlers,
		metrics:  metrics,
		pool:     pool,
		version:  version,
	}
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the response status for request logging. It
// passes Hijack through so websocket upgrades still work.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// loggingMiddleware logs all requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("component", "http").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handlers.Health)
	mux.HandleFunc("POST /api/lookup", s.handlers.Lookup)
	mux.HandleFunc("POST /api/solve", s.handlers.Solve)
	mux.HandleFunc("GET /api/book/stats", s.handlers.BookStats)
	mux.HandleFunc("/api/ws", s.handlers.WebSocket)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return corsMiddleware(loggingMiddleware(mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Info().
		Str("version", s.version).
		Str("addr", addr).
		Bool("book", s.handlers.book != nil).
		Msg("starting opening book server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown runs the server until SIGINT or SIGTERM
// and then drains open requests for up to ten seconds.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	drain, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(drain); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Int64("lookups", s.pool.Stats().TotalFast).Int64("solves", s.pool.Stats().TotalSlow).Msg("server stopped")
	return nil
}
