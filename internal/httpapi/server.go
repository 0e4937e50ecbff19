// Package httpapi exposes the plan and account operations as a JSON API.
// All /api routes except login, invite redemption and password reset
// require a bearer session token.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"einsatzplan/internal/auth"
	"einsatzplan/internal/plan"
	"einsatzplan/internal/storage"
	logx "einsatzplan/pkg/logx"
)

// Config controls the HTTP server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ServiceKey gates the admin invite endpoint. Empty disables it.
	ServiceKey string

	// LoginRatePerMin caps credential-guessing endpoints per client IP.
	LoginRatePerMin int

	// View knobs for the weekly plan.
	Geometry        plan.Geometry
	WeekTargetHours float64
}

type Server struct {
	cfg   Config
	log   logx.Logger
	store *storage.Store
	auth  *auth.Service

	limiter *ipLimiter
	now     func() time.Time
}

func New(cfg Config, store *storage.Store, authSvc *auth.Service, log logx.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.LoginRatePerMin <= 0 {
		cfg.LoginRatePerMin = 10
	}
	if cfg.Geometry == (plan.Geometry{}) {
		cfg.Geometry = plan.DefaultGeometry
	}
	if cfg.WeekTargetHours <= 0 {
		cfg.WeekTargetHours = plan.DefaultWeekTargetHours
	}
	return &Server{
		cfg:     cfg,
		log:     log.With(logx.String("component", "http")),
		store:   store,
		auth:    authSvc,
		limiter: newIPLimiter(cfg.LoginRatePerMin),
		now:     time.Now,
	}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// unauthenticated, rate limited
	mux.Handle("POST /api/auth/login", s.limited(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/auth/forgot-password", s.limited(http.HandlerFunc(s.handleForgotPassword)))
	mux.Handle("POST /api/auth/reset-password", s.limited(http.HandlerFunc(s.handleResetPassword)))
	mux.Handle("POST /api/invite/accept", s.limited(http.HandlerFunc(s.handleAcceptInvite)))

	// service-key gated
	mux.HandleFunc("POST /api/admin/create-invite", s.handleCreateInvite)

	// session gated
	mux.Handle("POST /api/auth/logout", s.withSession(s.handleLogout))
	mux.Handle("GET /api/auth/me", s.withSession(s.handleMe))
	mux.Handle("GET /api/einsaetze", s.withSession(s.handleListEinsaetze))
	mux.Handle("PUT /api/einsaetze/{id}", s.withSession(s.requireAdmin(s.handlePutEinsatz)))
	mux.Handle("PATCH /api/einsaetze/{id}/status", s.withSession(s.requireAdmin(s.handlePatchStatus)))
	mux.Handle("DELETE /api/einsaetze/{id}", s.withSession(s.requireAdmin(s.handleDeleteEinsatz)))
	mux.Handle("GET /api/plan/week", s.withSession(s.handleWeekView))
	mux.Handle("GET /api/maps-link", s.withSession(s.handleMapsLink))

	return s.accessLog(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	s.log.Info("http started", logx.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = srv.Close()
		<-errc
		s.log.Info("http stopped")
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.Int("status", rec.status),
			logx.Duration("dur", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// clientIP prefers X-Forwarded-For (first hop) over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
