package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/idtoken"

	"github.com/jameshartig/energyreport/pkg/storage"
	"github.com/jameshartig/energyreport/pkg/types"
)

type contextKey string

const (
	emailContextKey contextKey = "email"
	authTokenCookie            = "auth_token"
)

// TokenValidator validates an OIDC ID token for the given audience.
type TokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)

// ReportGenerator generates a report for a request.
type ReportGenerator interface {
	Generate(ctx context.Context, req types.ReportRequest) (types.ReportRecord, error)
}

// Server exposes report generation, settings and history over HTTP.
type Server struct {
	generator ReportGenerator
	storage   storage.Database
	metrics   http.Handler

	listenAddr             string
	oidcAudience           string
	adminEmails            []string
	generateAudience       string
	generateEmail          string
	bypassAuth             bool
	tokenValidator         TokenValidator
	historyDefaultDuration time.Duration
}

// Configured registers the server flags and returns a Server that is ready
// once lflag.Configure has been called.
func Configured(gen ReportGenerator, db storage.Database, registry *prometheus.Registry) *Server {
	listenAddr := lflag.String("listen-addr", ":8080", "Address the HTTP server listens on")
	oidcAudience := lflag.String("oidc-audience", "", "OAuth client ID used to validate login ID tokens")
	adminEmails := lflag.String("admin-emails", "", "Comma-separated emails allowed to change settings and generate reports")
	generateAudience := lflag.String("generate-audience", "", "Audience of bearer ID tokens sent by a scheduler to /api/generate")
	generateEmail := lflag.String("generate-email", "", "Service account email allowed to call /api/generate with a bearer token")
	bypassAuth := lflag.Bool("bypass-auth", false, "Disable authentication entirely, only for local development")

	s := &Server{
		generator:              gen,
		storage:                db,
		tokenValidator:         idtoken.Validate,
		historyDefaultDuration: 30 * 24 * time.Hour,
	}
	if registry != nil {
		s.metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	lflag.Do(func() {
		s.listenAddr = *listenAddr
		s.oidcAudience = *oidcAudience
		s.adminEmails = splitEmails(*adminEmails)
		s.generateAudience = *generateAudience
		s.generateEmail = strings.TrimSpace(*generateEmail)
		s.bypassAuth = *bypassAuth
		if err := s.Validate(); err != nil {
			panic(fmt.Sprintf("invalid server configuration: %v", err))
		}
	})

	return s
}

// Validate checks the server configuration.
func (s *Server) Validate() error {
	if s.listenAddr == "" {
		return errors.New("listen address is required")
	}
	if s.generateEmail != "" && s.generateAudience == "" {
		return errors.New("generate audience is required when a generate email is set")
	}
	return nil
}

func splitEmails(v string) []string {
	var emails []string
	for _, e := range strings.Split(v, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

func (s *Server) isAdmin(email string) bool {
	for _, admin := range s.adminEmails {
		if email == admin {
			return true
		}
	}
	return false
}

func (s *Server) setupHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleUpdateSettings)
	mux.HandleFunc("GET /api/reports", s.handleReportHistory)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return s.authMiddleware(mux)
}

// Run serves HTTP until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.setupHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "server listening", slog.String("addr", s.listenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
