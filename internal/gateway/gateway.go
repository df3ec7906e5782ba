// Package gateway is the single public entry point. It forwards requests by
// path prefix to the owning service and adds rate limiting and an upstream
// health view on top.
package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Cheertaboi/shop-microservices/internal/api/middleware"
)

type Options struct {
	Routes          []Route
	ResponseTimeout time.Duration
	IdleTimeout     time.Duration
	ProbeTimeout    time.Duration
	RateRPS         int
	RateBurst       int

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// New builds the gateway handler. Rate limiting is off when RateRPS is 0.
func New(opts Options, log *slog.Logger) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	if opts.RateRPS > 0 {
		r.Use(newRateLimiter(opts.RateRPS, opts.RateBurst).Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "api-gateway"})
	})
	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	r.Method(http.MethodGet, "/health/upstreams", newProber(opts.Routes, probeTimeout))

	transport := newTransport(opts.ResponseTimeout, opts.IdleTimeout)
	for _, rt := range opts.Routes {
		p, err := newProxy(rt, transport, log)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", rt.Name, err)
		}
		r.Mount(rt.Prefix, p)
		log.Info("gateway route", "prefix", rt.Prefix, "target", rt.Target, "rewrite", rt.upstreamPath(rt.Prefix))
	}
	return r, nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}
