package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy describes which cross-origin callers the service accepts.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// WithCORS answers preflight requests and stamps CORS headers on matching
// origins. With no configured origins the middleware passes everything
// through untouched.
func WithCORS(p CORSPolicy) Middleware {
	origins := cleanList(p.AllowedOrigins)
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	methods := strings.Join(cleanList(p.AllowedMethods), ", ")
	headerList := strings.Join(cleanList(p.AllowedHeaders), ", ")
	maxAgeSecs := ""
	if p.MaxAge > 0 {
		maxAgeSecs = strconv.Itoa(int(p.MaxAge / time.Second))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")

			origin := r.Header.Get("Origin")
			allowed := origin != "" && originAllowed(origin, origins)
			if allowed {
				if wildcard && !p.AllowCredentials {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
				}
				if p.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if preflight {
				if allowed {
					if methods != "" {
						h.Set("Access-Control-Allow-Methods", methods)
					}
					if headerList != "" {
						h.Set("Access-Control-Allow-Headers", headerList)
					}
					if maxAgeSecs != "" {
						h.Set("Access-Control-Max-Age", maxAgeSecs)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
