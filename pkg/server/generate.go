package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jameshartig/energyreport/pkg/report"
	"github.com/jameshartig/energyreport/pkg/types"
)

// authorizeGenerate writes an error response and returns false when the
// caller may not generate reports.
func (s *Server) authorizeGenerate(w http.ResponseWriter, r *http.Request) bool {
	ctx := r.Context()

	email, ok := ctx.Value(emailContextKey).(string)
	if ok && email != "" {
		// User is authenticated via Cookie (OIDC)
		if !s.generateAllowed(email) {
			slog.WarnContext(ctx, "unauthorized email for generate", slog.String("email", email))
			http.Error(w, "unauthorized email", http.StatusForbidden)
			return false
		}
		slog.DebugContext(ctx, "generate: authorized", slog.String("email", email))
		return true
	}

	if s.generateAudience != "" && (s.generateEmail != "" || len(s.adminEmails) > 0) {
		// Not authenticated via Cookie, check Authorization Header (e.g. a scheduler)
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return false
		}

		email, _, err := s.tokenEmail(ctx, parts[1], s.generateAudience)
		if errors.Is(err, errMissingEmail) || errors.Is(err, errUnverifiedEmail) {
			slog.WarnContext(ctx, "invalid email in id token", slog.Any("error", err))
			http.Error(w, "invalid token claims", http.StatusForbidden)
			return false
		}
		if err != nil {
			slog.WarnContext(ctx, "failed to validate id token", slog.Any("error", err))
			http.Error(w, "invalid id token", http.StatusUnauthorized)
			return false
		}
		if !s.generateAllowed(email) {
			slog.WarnContext(ctx, "unauthorized email for generate", slog.String("email", email))
			http.Error(w, "unauthorized email", http.StatusForbidden)
			return false
		}
		slog.DebugContext(ctx, "generate: authorized", slog.String("email", email))
		return true
	}

	if s.bypassAuth {
		return true
	}
	slog.WarnContext(ctx, "missing authentication for generate")
	http.Error(w, "missing authentication", http.StatusUnauthorized)
	return false
}

func (s *Server) generateAllowed(email string) bool {
	if s.generateEmail != "" && email == s.generateEmail {
		return true
	}
	return s.isAdmin(email)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.authorizeGenerate(w, r) {
		return
	}

	var req types.ReportRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	// an empty body generates the default report
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.WarnContext(ctx, "failed to decode generate request", slog.Any("error", err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, err := s.generator.Generate(ctx, req)
	if err != nil {
		if report.IsInvalidRequest(err) {
			slog.WarnContext(ctx, "invalid generate request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if report.IsNotConfigured(err) {
			slog.WarnContext(ctx, "energy dashboard not configured", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		slog.ErrorContext(ctx, "failed to generate report", slog.Any("error", err))
		http.Error(w, "failed to generate report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		panic(http.ErrAbortHandler)
	}
}
