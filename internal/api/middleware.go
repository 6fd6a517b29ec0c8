package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MohanBalaji3/TestCaseStudio/internal/config"
	"github.com/MohanBalaji3/TestCaseStudio/internal/jira"
)

// AuthMiddleware validates the service API key.
func AuthMiddleware(apiKey string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(auth, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type credsKey struct{}

// JiraCredentials resolves the Jira credentials for a request: the
// X-Jira-Url / X-Jira-Email / X-Jira-Token headers when present, the
// configured defaults otherwise. Credentials live only in the request
// context; nothing is stored server-side.
func JiraCredentials(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := jira.Credentials{
				BaseURL:  cfg.JiraBaseURL,
				Email:    cfg.JiraEmail,
				APIToken: cfg.JiraAPIToken,
			}
			if v := r.Header.Get("X-Jira-Url"); v != "" {
				creds.BaseURL = v
			}
			if v := r.Header.Get("X-Jira-Email"); v != "" {
				creds.Email = v
			}
			if v := r.Header.Get("X-Jira-Token"); v != "" {
				creds.APIToken = v
			}
			ctx := context.WithValue(r.Context(), credsKey{}, creds)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CredentialsFrom returns the Jira credentials resolved for this request.
func CredentialsFrom(ctx context.Context) jira.Credentials {
	creds, _ := ctx.Value(credsKey{}).(jira.Credentials)
	return creds
}

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
