// Package api exposes the scoring triggers, standings and health checks over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/service"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Config holds the configuration for the API server. TriggerRate and
// TriggerBurst limit the recalculation endpoints.
type Config struct {
	ServiceName  string
	Version      string
	Commit       string
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TriggerRate  float64
	TriggerBurst int
	MetricsPath  string
	Logger       *logrus.Logger
	DB           DatabasePinger
}

// Services are the operations the API dispatches to.
type Services struct {
	Points      *service.PointsService
	Scorer      *service.PredictionScorer
	Results     *service.ResultService
	Predictions *service.PredictionService
	Standings   *service.StandingsService
}

// Server serves the scoring API.
type Server struct {
	cfg     Config
	svc     Services
	limiter *rate.Limiter
	logger  *logrus.Logger
	server  *http.Server
	mu      sync.RWMutex
	ready   bool
}

// NewServer creates a new API server.
func NewServer(cfg Config, svc Services) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.TriggerRate <= 0 {
		cfg.TriggerRate = 1
	}
	if cfg.TriggerBurst <= 0 {
		cfg.TriggerBurst = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Server{
		cfg:     cfg,
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(cfg.TriggerRate), cfg.TriggerBurst),
		logger:  cfg.Logger,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/live", s.handleLive)
	r.Get("/ready", s.handleReady)
	if s.cfg.MetricsPath != "" {
		r.Handle(s.cfg.MetricsPath, metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Post("/races/{raceID}/points", s.handleCalculatePoints)
			r.Post("/predictions/score", s.handleScorePredictions)
			r.Put("/races/{raceID}/result", s.handleSaveResult)
		})
		r.Put("/races/{raceID}/predictions", s.handleSubmitPrediction)

		r.Route("/standings", func(r chi.Router) {
			r.Get("/drivers", s.handleDriverStandings)
			r.Get("/constructors", s.handleConstructorStandings)
			r.Get("/predictions/{category}", s.handlePredictionStandings)
		})
	})

	return r
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":    s.cfg.Addr,
			"service": s.cfg.ServiceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.SetReady(true)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.SetReady(false)
	s.logger.Info("API server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Status: "error",
				Error:  "too many recalculation requests, try again shortly",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
