package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/examgrid/internal/core"
)

// withRequestMeta adds the client IP and User-Agent to the request context
// so generation logs can name who asked.
func withRequestMeta(ctx context.Context, r *http.Request) context.Context {
	return core.WithRequestMeta(ctx, core.RequestMeta{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
}

// clientIP is r.RemoteAddr without the port. TrustedRealIP has already
// replaced it with the forwarded address for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
