package middleware

import (
	"net/http"
	"strings"
)

// CORS returns a middleware that answers preflight requests and stamps the
// configured allowed origins on every response. origins is the raw
// CORS_ORIGINS value: "*" or a comma-separated list.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	allowAll := origins == "" || origins == "*"
	for _, o := range strings.Split(origins, ",") {
		allowed[strings.TrimSpace(o)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
