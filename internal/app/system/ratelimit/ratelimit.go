// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter hands each client key its own token bucket. Buckets idle for
// longer than idleTTL are dropped on a later Allow call.
// It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	nextSweep time.Time
	now       func() time.Time
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing perSecond requests per client with the
// given burst.
func New(perSecond float64, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether a request from key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.idleTTL {
				delete(l.clients, k)
			}
		}
		l.nextSweep = now.Add(l.idleTTL)
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.bucket.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// retryAfter is the whole-second wait advertised on a 429.
func (l *Limiter) retryAfter() string {
	if l.limit <= 0 {
		return "60"
	}
	secs := int(1/float64(l.limit) + 0.999)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// KeyFunc maps a request to the client key its bucket is stored under.
type KeyFunc func(*http.Request) string

// Middleware rejects requests over the limit with 429 Too Many Requests.
// A nil key buckets by ClientIP.
func (l *Limiter) Middleware(logger *zap.Logger, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := key(r)
			if !l.Allow(ip) {
				logger.Warn("rate limited", zap.String("client", ip), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", l.retryAfter())
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is the host part of the connection's RemoteAddr. Forwarding
// headers are ignored: any client can set them.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// ProxyAwareIP returns a KeyFunc that honors X-Forwarded-For and X-Real-IP
// only when the connection comes from one of the trusted networks. All
// other requests are keyed by ClientIP.
func ProxyAwareIP(trusted []*net.IPNet) KeyFunc {
	if len(trusted) == 0 {
		return ClientIP
	}
	return func(r *http.Request) string {
		direct := ClientIP(r)
		if !contains(trusted, net.ParseIP(direct)) {
			return direct
		}
		// X-Forwarded-For is a comma-separated list; the first is the client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ip := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
			return xri
		}
		return direct
	}
}

func contains(nets []*net.IPNet, ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies parses a comma-separated list of CIDRs or bare IPs.
// A blank list yields no trusted networks.
func ParseTrustedProxies(list string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.Contains(item, "/") {
			ip := net.ParseIP(item)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q is not an IP or CIDR", item)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(item)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", item, err)
		}
		out = append(out, n)
	}
	return out, nil
}
