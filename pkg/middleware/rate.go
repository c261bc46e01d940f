package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shashiranjanraj/sampleapp/pkg/fault"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one token bucket per client IP.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	trusted []*net.IPNet
}

// NewLimiter allows rps requests per second per IP with the given burst.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    time.Hour,
		now:     time.Now,
	}
}

func (l *Limiter) allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastSeen = now
	limiter := entry.limiter

	// Sweep lazily instead of running a janitor goroutine.
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.entries, key)
		}
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Middleware rejects requests over the limit with a 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.clientIP(r)) {
			fault.Pass(w, r, fault.New(http.StatusTooManyRequests, "Too Many Requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TrustProxies names the networks allowed to report the client address in
// X-Forwarded-For. Entries are CIDRs or bare IPs. With none, only the
// connection's remote address counts.
func (l *Limiter) TrustProxies(proxies ...string) error {
	nets := make([]*net.IPNet, 0, len(proxies))
	for _, p := range proxies {
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return fmt.Errorf("trusted proxy %q is not an IP or CIDR", p)
			}
			bits := 8 * len(ip.To16())
			if v4 := ip.To4(); v4 != nil {
				ip, bits = v4, 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return fmt.Errorf("trusted proxy %q: %w", p, err)
		}
		nets = append(nets, n)
	}
	l.mu.Lock()
	l.trusted = nets
	l.mu.Unlock()
	return nil
}

func (l *Limiter) isTrusted(ip net.IP) bool {
	for _, n := range l.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP is the remote address, unless that is a trusted proxy. Then the
// X-Forwarded-For chain is walked from the right and the first hop that is
// not itself a trusted proxy wins. Hops further left are client supplied.
func (l *Limiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	remote := net.ParseIP(host)
	if remote == nil || !l.isTrusted(remote) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := net.ParseIP(strings.TrimSpace(hops[i]))
		if hop == nil {
			break
		}
		if !l.isTrusted(hop) {
			return hop.String()
		}
	}
	return host
}
