package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"filament-inventory-api/pkg/apierror"
	"filament-inventory-api/pkg/response"

	"golang.org/x/exp/slog"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// EditToken is the shared bearer secret. Empty rejects every request.
	EditToken string
	Logger    *slog.Logger
}

// NewAuthMiddleware creates a middleware that admits only requests carrying
// "Authorization: Bearer <EditToken>".
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "auth"))
	want := []byte(cfg.EditToken)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				log.Debug("rejected request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				response.Error(w, apierror.Unauthorized("Unauthorized"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}
