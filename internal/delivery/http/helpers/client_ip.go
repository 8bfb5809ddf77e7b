package helpers

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating client address for a request, preferring
// proxy-set headers over the connection's remote address. The first entry of
// X-Forwarded-For wins, then X-Real-IP, then RemoteAddr with the port stripped.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
