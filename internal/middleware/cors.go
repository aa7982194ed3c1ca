package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/cors"
)

const (
	corsMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsHeaders = "Content-Type, Authorization"
)

// CORS applies the origin allow-list to every response.
//
// An empty list, or one containing "*", allows any origin. A request without
// an Origin header gets "*" when the list is empty and the first entry
// otherwise. Origins match exactly. An origin missing from a non-empty list
// gets "null" while the underlying status is still returned. Every OPTIONS
// request is answered with 204 and never reaches the router.
func CORS(allowed []string) func(http.Handler) http.Handler {
	allowAll := len(allowed) == 0
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
	}

	preflight := cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return allowAll || slices.Contains(allowed, origin)
		},
		AllowedMethods:     strings.Split(corsMethods, ","),
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		ExposedHeaders:     []string{"X-Request-ID"},
		MaxAge:             300,
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		// Runs after cors.Handler has added its headers; ours win.
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", allowOrigin(r.Header.Get("Origin"), allowed, allowAll))
			header.Set("Access-Control-Allow-Methods", corsMethods)
			header.Set("Access-Control-Allow-Headers", corsHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
		return preflight(inner)
	}
}

// allowOrigin is the Allow-Origin value sent with every response.
func allowOrigin(origin string, allowed []string, allowAll bool) string {
	if origin == "" {
		if len(allowed) == 0 {
			return "*"
		}
		return allowed[0]
	}
	if allowAll {
		return "*"
	}
	for _, o := range allowed {
		if o == origin {
			return origin
		}
	}
	return "null"
}
