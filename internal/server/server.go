package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/config"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/history"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/limiter"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/workspace"
)

// Server is the HTTP server for the playground.
type Server struct {
	cfg       *config.Config
	engine    *engine.Engine
	workspace *workspace.Workspace
	history   *history.Recorder
	limiter   *limiter.RateLimiter
	logger    *zerolog.Logger
	router    chi.Router
	http      *http.Server
}

// New creates a new Server. rec may be nil when run history is disabled.
func New(cfg *config.Config, eng *engine.Engine, ws *workspace.Workspace, rec *history.Recorder, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Server{
		cfg:       cfg,
		engine:    eng,
		workspace: ws,
		history:   rec,
		limiter: limiter.NewRateLimiter(
			cfg.Limits.GlobalRPS, cfg.Limits.PerIPRPS, cfg.Limits.PerIPBurst, cfg.Limits.MaxConcurrent),
		logger: logger,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	s.http = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: writeTimeout(cfg.Server.WriteTimeout, eng.Budget()),
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// writeSlack is the time left to write a response once the slowest run ends.
const writeSlack = 5 * time.Second

// writeTimeout raises a configured write timeout that a run could outlast.
// Zero stays zero, meaning no timeout.
func writeTimeout(configured, runBudget time.Duration) time.Duration {
	if configured > 0 && configured <= runBudget {
		return runBudget + writeSlack
	}
	return configured
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(maxBody(s.cfg.Server.MaxBodyBytes))

		// Workspace files
		r.Get("/list", s.handleList)
		r.Get("/file/{lang}/{file}", s.handleReadFile)
		r.Post("/save/{lang}/{file}", s.handleSaveFile)

		// Runs
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware)
			r.Post("/runTemp", s.handleRunTemp)
			r.Post("/run", s.handleRun)
		})
		// The websocket is limited per message, not per connection.
		r.Get("/ws", s.handleWebSocket)

		// History
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)

		r.Post("/echo", s.handleEcho)
	})

	// Playground shell
	r.Handle("/*", spaHandler())
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// requestLogger logs one line per request with zerolog.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// maxBody caps request bodies. Zero disables the cap.
func maxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Start begins listening on the given port. Idle per-IP limiters are reaped
// until ctx is done.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http.Addr = addr
	s.limiter.StartCleanup(ctx, 5*time.Minute)

	s.logger.Info().Str("addr", addr).Msgf("Playground running at http://localhost%s", addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
