package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/concurrency"
)

const probeWorkers = 4

type prober struct {
	routes []Route
	client *http.Client
}

func newProber(routes []Route, timeout time.Duration) *prober {
	return &prober{routes: routes, client: &http.Client{Timeout: timeout}}
}

// probe reports "up" or "down" for every route, keyed by route name.
func (p *prober) probe(ctx context.Context) map[string]string {
	results := make(map[string]string, len(p.routes))
	var mu sync.Mutex

	concurrency.SimpleWorkerPool(ctx, probeWorkers, len(p.routes), func(ctx context.Context, i int) {
		rt := p.routes[i]
		state := "down"
		if p.healthy(ctx, rt.Target) {
			state = "up"
		}
		mu.Lock()
		results[rt.Name] = state
		mu.Unlock()
	})

	// routes skipped by cancellation still get an entry
	for _, rt := range p.routes {
		if _, ok := results[rt.Name]; !ok {
			results[rt.Name] = "down"
		}
	}
	return results
}

func (p *prober) healthy(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(target, "/")+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (p *prober) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	results := p.probe(r.Context())
	code := http.StatusOK
	for _, s := range results {
		if s != "up" {
			code = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, results)
}
