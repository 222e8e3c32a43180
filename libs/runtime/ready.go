package runtime

import (
	"context"
	"net/http"
	"time"
)

const checkTimeout = 2 * time.Second

// ReadyCheck probes one dependency for the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

// NewBaseMuxWithReady returns a mux preloaded with /healthz (liveness, always
// ok) and /readyz (readiness, fails while any dependency check fails).
// Service routes get registered on top.
func NewBaseMuxWithReady(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", writeOK)
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if c.Check == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			err := c.Check(ctx)
			cancel()
			if err != nil {
				name := c.Name
				if name == "" {
					name = "dependency"
				}
				http.Error(w, name+": "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		writeOK(w, r)
	})
	return mux
}

func writeOK(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
