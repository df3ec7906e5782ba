package gateway

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

var errIdleTimeout = fmt.Errorf("upstream idle: %w", context.DeadlineExceeded)

// idleTransport fails a request once the upstream exchange stays silent for
// idle. The timer belongs to the request, so pooled connections carry no
// deadline between requests.
type idleTransport struct {
	base http.RoundTripper
	idle time.Duration
}

func (t *idleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())
	w := &idleWatch{idle: t.idle, cancel: cancel}
	w.timer = time.AfterFunc(t.idle, w.fire)

	out := req.Clone(ctx)
	if req.Body != nil && req.Body != http.NoBody {
		out.Body = &idleBody{ReadCloser: req.Body, w: w}
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		w.stop()
		if w.fired.Load() {
			return nil, errIdleTimeout
		}
		return nil, err
	}
	// Waiting for the response headers is over; the body restarts the clock
	// on every read.
	w.touch()
	resp.Body = &idleBody{ReadCloser: resp.Body, w: w, owner: true}
	return resp, nil
}

type idleWatch struct {
	timer  *time.Timer
	idle   time.Duration
	cancel context.CancelFunc
	fired  atomic.Bool
}

func (w *idleWatch) fire() {
	w.fired.Store(true)
	w.cancel()
}

func (w *idleWatch) touch() {
	if !w.fired.Load() {
		w.timer.Reset(w.idle)
	}
}

func (w *idleWatch) stop() {
	w.timer.Stop()
	w.cancel()
}

// idleBody restarts the idle timer on each read. The response body owns the
// watch and releases it on Close.
type idleBody struct {
	io.ReadCloser
	w     *idleWatch
	owner bool
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && b.owner && b.w.fired.Load() {
		return n, errIdleTimeout
	}
	b.w.touch()
	return n, err
}

func (b *idleBody) Close() error {
	err := b.ReadCloser.Close()
	if b.owner {
		b.w.stop()
	}
	return err
}

func newTransport(responseTimeout, idleTimeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	base := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: responseTimeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
	if idleTimeout <= 0 {
		return base
	}
	return &idleTransport{base: base, idle: idleTimeout}
}
