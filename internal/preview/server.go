package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/dilithium/internal/scene"
	"github.com/vango-dev/dilithium/pkg/telemetry"
)

// ErrNoScene is returned by New when Options.Scene is nil.
var ErrNoScene = errors.New("preview: no scene to replay")

// Options configures the preview server.
type Options struct {
	// Addr is the listen address used by Start.
	Addr string

	// Scene is the scene every request replays.
	Scene *scene.Scene

	// Registry resolves the scene's components.
	Registry *scene.Registry

	// Logger receives request and stream logs. Default: slog.Default().
	Logger *slog.Logger

	// Metrics, when set, observes every engine the server creates.
	Metrics *telemetry.Metrics

	// Gatherer, when set, is served at /metrics.
	Gatherer prometheus.Gatherer

	// Tracer, when set, traces every engine the server creates.
	Tracer *telemetry.Tracer

	// StepInterval is the delay between steps on a stream. Default: 1s.
	StepInterval time.Duration

	// WriteTimeout bounds each frame write. Default: 10s.
	WriteTimeout time.Duration
}

// Server is the preview server.
type Server struct {
	opts       Options
	logger     *slog.Logger
	router     chi.Router
	upgrader   websocket.Upgrader
	httpServer *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	running bool
}

// New creates a preview server.
func New(opts Options) (*Server, error) {
	if opts.Scene == nil {
		return nil, ErrNoScene
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = scene.NewRegistry()
	}
	if opts.StepInterval <= 0 {
		opts.StepInterval = time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		opts:    opts,
		logger:  opts.Logger.With("scene", opts.Scene.Name),
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // local preview only
			},
		},
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/html", s.handleFragment)
	r.Get("/ws", s.handleStream)
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// logRequests logs each request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Start serves on Options.Addr until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("preview server running", "addr", s.opts.Addr, "steps", len(s.opts.Scene.Steps))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop closes every stream and shuts the HTTP server down.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	srv := s.httpServer
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// ClientCount returns the number of open streams.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
}
