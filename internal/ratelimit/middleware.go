package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/logging"
)

// Policy is a named per-IP budget.
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

// Middleware rejects requests from an IP once the policy budget is spent.
// Limiter failures are logged and the request is let through.
func Middleware(l *Limiter, p Policy) func(http.Handler) http.Handler {
	message := p.Message
	if message == "" {
		message = "too many requests, please try again later"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)

			res, err := l.Allow(r.Context(), p.Name+":"+ip, p.Limit, p.Window)
			if err != nil {
				logging.GetLoggerFromContext(r.Context()).Error("rate limiter unavailable", "policy", p.Name, "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				logging.GetLoggerFromContext(r.Context()).Warn("rate limit exceeded", "policy", p.Name, "ip", ip)
				seconds := int(res.RetryAfter.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				httputil.RespondErrorWithCode(w, message, httputil.CodeTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the peer address of the request. Forwarding headers are
// never read here: behind a trusted proxy, chi's RealIP middleware rewrites
// RemoteAddr before this runs.
func ClientIP(r *http.Request) string {
	// RemoteAddr format is "IP:port", or a bare IP after RealIP
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
