package middlewares

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsAllowedMethods = "GET, POST, OPTIONS"
	corsAllowedHeaders = "Content-Type, X-Request-ID"
	corsMaxAge         = "3600"
)

// CORSMiddleware handles cross-origin requests from the browser client.
// A "*" entry admits every origin without credentials; listed origins
// are matched case-insensitively and may send credentials.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			header.Add("Vary", "Origin")

			if origin := r.Header.Get("Origin"); origin != "" {
				if value, credentials := policy.resolve(origin); value != "" {
					header.Set("Access-Control-Allow-Origin", value)
					if credentials {
						header.Set("Access-Control-Allow-Credentials", "true")
					}
				}
			}

			header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			header.Set("Access-Control-Max-Age", corsMaxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type originPolicy struct {
	any    bool
	listed map[string]struct{}
}

func newOriginPolicy(allowedOrigins []string) originPolicy {
	p := originPolicy{
		any:    slices.Contains(allowedOrigins, "*"),
		listed: make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		p.listed[strings.ToLower(origin)] = struct{}{}
	}
	return p
}

// resolve returns the Access-Control-Allow-Origin value for origin, empty if rejected
func (p originPolicy) resolve(origin string) (string, bool) {
	if p.any {
		return "*", false
	}
	if _, ok := p.listed[strings.ToLower(origin)]; ok {
		return origin, true
	}
	return "", false
}
