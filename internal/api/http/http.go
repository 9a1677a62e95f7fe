package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robopoint/salesops-manager/internal/analytics"
	"github.com/robopoint/salesops-manager/internal/middleware"
	"github.com/robopoint/salesops-manager/internal/ratelimit"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RateLimit      int      `mapstructure:"rate_limit"`
	RateWindowSec  int      `mapstructure:"rate_window_sec"`
}

// Pinger reports store liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}
}

// New creates a new server
func New(config *Config) *Server {
	return &Server{
		c:    config,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) router(svc *analytics.Service, pinger Pinger) http.Handler {
	h := newHandlers(svc)

	limit := s.c.RateLimit
	if limit <= 0 {
		limit = 100
	}
	windowSec := s.c.RateWindowSec
	if windowSec <= 0 {
		windowSec = 60
	}
	limiter := ratelimit.NewLimiter(time.Duration(windowSec)*time.Second, limit)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))
	r.Use(middleware.ClientIdentifier)
	r.Use(middleware.RequestLogger)
	r.Use(instrumentHTTP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Handler)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/kpis", h.getKpis)
			r.Get("/kpis/latest", h.getLatestKpis)
			r.Get("/funnel", h.getFunnel)
			r.Get("/timeseries", h.getTimeSeries)
			r.Get("/leaderboard", h.getLeaderboard)
		})
		r.Get("/opportunities", h.getOpportunities)
		r.Get("/opportunities/{uuid}/margins", h.getOpportunityMargins)
		r.Get("/goals/progress", h.getGoalProgress)
	})

	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context, svc *analytics.Service, pinger Pinger) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:         listenerAddr,
		Handler:      s.router(svc, pinger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("salesops-manager new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}
