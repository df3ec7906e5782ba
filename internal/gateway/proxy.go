package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

func newProxy(rt Route, transport http.RoundTripper, log *slog.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rt.Target)
	if err != nil {
		return nil, err
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetXForwarded()
			pr.Out.URL.Scheme = target.Scheme
			pr.Out.URL.Host = target.Host
			pr.Out.URL.Path = strings.TrimRight(target.Path, "/") + rt.upstreamPath(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			pr.Out.Host = target.Host
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			code, msg := http.StatusBadGateway, "service unreachable"
			if isTimeout(err) {
				code, msg = http.StatusGatewayTimeout, "upstream timeout"
			}
			log.Warn("proxy error",
				"route", rt.Name,
				"method", r.Method,
				"path", r.URL.Path,
				"status", code,
				"err", err,
			)
			writeMessage(w, code, msg)
		},
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
