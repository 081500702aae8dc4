package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/heartmarshall/interlinear-backend/internal/config"
)

// CORS returns middleware that handles Cross-Origin Resource Sharing for
// browser clients of the REST API. Preflight OPTIONS requests are answered
// here and never reach the handler.
func CORS(cfg config.CORSConfig) Middleware {
	origins := lo.Compact(lo.Map(strings.Split(cfg.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
	anyOrigin := lo.Contains(origins, "*")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || lo.Contains(origins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-Id")
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
