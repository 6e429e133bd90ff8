package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	errMissingEmail    = errors.New("id token has no email claim")
	errUnverifiedEmail = errors.New("id token email is not verified")
)

// tokenEmail validates token for audience and returns its email claim along
// with the token expiry.
func (s *Server) tokenEmail(ctx context.Context, token, audience string) (string, time.Time, error) {
	payload, err := s.tokenValidator(ctx, token, audience)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to validate id token: %w", err)
	}
	email, ok := payload.Claims["email"].(string)
	if !ok || email == "" {
		return "", time.Time{}, errMissingEmail
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return "", time.Time{}, errUnverifiedEmail
	}
	return email, time.Unix(payload.Expires, 0), nil
}

// authMiddleware puts the email of a valid login cookie in the request
// context. Requests without a cookie pass through unchanged.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cookie, err := r.Cookie(authTokenCookie)
		if errors.Is(err, http.ErrNoCookie) {
			next.ServeHTTP(w, r)
			return
		}
		if err == nil {
			var email string
			email, _, err = s.tokenEmail(ctx, cookie.Value, s.oidcAudience)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, emailContextKey, email)))
				return
			}
		}

		slog.WarnContext(ctx, "invalid auth token cookie", slog.Any("error", err))
		s.clearCookie(w)
		http.Error(w, "invalid cookies", http.StatusBadRequest)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	email, expires, err := s.tokenEmail(ctx, req.Token, s.oidcAudience)
	if err != nil {
		slog.WarnContext(ctx, "login rejected", slog.Any("error", err))
		http.Error(w, "invalid id token", http.StatusUnauthorized)
		return
	}

	slog.InfoContext(ctx, "login successful", slog.String("email", email))

	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    req.Token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w)
	w.WriteHeader(http.StatusOK)
}

type authStatusResponse struct {
	LoggedIn     bool   `json:"loggedIn"`
	IsAdmin      bool   `json:"isAdmin"`
	CanGenerate  bool   `json:"canGenerate"`
	Email        string `json:"email"`
	AuthRequired bool   `json:"authRequired"`
	ClientID     string `json:"clientID"`
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	email, _ := r.Context().Value(emailContextKey).(string)
	resp := authStatusResponse{
		LoggedIn:     email != "",
		IsAdmin:      email != "" && s.isAdmin(email),
		CanGenerate:  email != "" && s.generateAllowed(email),
		Email:        email,
		AuthRequired: s.oidcAudience != "",
		ClientID:     s.oidcAudience,
	}
	if s.bypassAuth {
		resp.LoggedIn = true
		resp.IsAdmin = true
		resp.CanGenerate = true
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		panic(http.ErrAbortHandler)
	}
}
