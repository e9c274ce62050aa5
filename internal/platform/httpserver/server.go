package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resultsservice "voteflow/contexts/voting/results-service"
	voteintake "voteflow/contexts/voting/vote-intake"

	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"
	_ "voteflow/internal/platform/httpserver/docs"
)

type Options struct {
	Addr    string
	Logger  *slog.Logger
	Intake  voteintake.Module
	Results resultsservice.Module
	// Live serves the websocket endpoint.
	Live    http.Handler
	Metrics http.Handler

	RefreshLimiter     *rate.Limiter
	OnRefreshThrottled func()
	EnableSwagger      bool
}

type Server struct {
	mux    *http.ServeMux
	http   *http.Server
	logger *slog.Logger
	addr   string

	intake  voteintake.Module
	results resultsservice.Module
	live    http.Handler
	metrics http.Handler

	refreshLimiter     *rate.Limiter
	onRefreshThrottled func()
	enableSwagger      bool
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:                http.NewServeMux(),
		logger:             logger,
		addr:               addr,
		intake:             opts.Intake,
		results:            opts.Results,
		live:               opts.Live,
		metrics:            opts.Metrics,
		refreshLimiter:     opts.RefreshLimiter,
		onRefreshThrottled: opts.OnRefreshThrottled,
		enableSwagger:      opts.EnableSwagger,
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	if s.enableSwagger {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	s.mux.HandleFunc("POST /api/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/options", s.handleOptions)

	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/export", s.handleExport)

	if s.live != nil {
		s.mux.Handle("GET /ws", s.live)
	}
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
