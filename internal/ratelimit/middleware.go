package ratelimit

import (
	"net"
	"net/http"

	"github.com/lumina-social/lumina/internal/logging"
)

// Allower is the limiter capability the middleware needs. Both
// GeneralLimiter and AuthLimiter satisfy it.
type Allower interface {
	AllowIP(ip string) bool
}

// ClientKey extracts the rate-limit key for a request: the remote host
// without its port, or UnknownKey when no address is available.
func ClientKey(r *http.Request) string {
	if r.RemoteAddr == "" {
		return UnknownKey
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests
		return r.RemoteAddr
	}
	return host
}

// Middleware returns an admission guard consulting the given limiter before
// the wrapped handler runs. Denied requests are answered with
// 429 Too Many Requests and never reach the handler.
func Middleware(limiter Allower, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			if !limiter.AllowIP(key) {
				log.Warn(r.Context(), "request rate limited", "ip", key, "path", r.URL.Path)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
