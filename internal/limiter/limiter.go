package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/metrics"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter combines a global token bucket, one bucket per client IP and
// a cap on in-flight runs.
type RateLimiter struct {
	globalLimiter *rate.Limiter
	ipRate        rate.Limit
	ipBurst       int
	maxConcurrent int64

	mu          sync.Mutex
	perIP       map[string]*ipLimiter
	currentConc int64
	now         func() time.Time
}

func NewRateLimiter(globalRPS float64, perIPRPS float64, perIPBurst int, maxConcurrent int) *RateLimiter {
	burst := int(globalRPS) * 2
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		globalLimiter: rate.NewLimiter(rate.Limit(globalRPS), burst),
		ipRate:        rate.Limit(perIPRPS),
		ipBurst:       perIPBurst,
		maxConcurrent: int64(maxConcurrent),
		perIP:         make(map[string]*ipLimiter),
		now:           time.Now,
	}
}

func (rl *RateLimiter) getIPLimiter(ip string) *rate.Limiter {
	l, ok := rl.perIP[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.ipRate, rl.ipBurst)}
		rl.perIP[ip] = l
	}
	l.lastSeen = rl.now()
	return l.limiter
}

// Allow reserves a concurrency slot for ip. Callers that get true must call Done.
func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.globalLimiter.Allow() {
		metrics.RateLimitHits.Inc()
		return false
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.getIPLimiter(ip).Allow() {
		metrics.RateLimitHits.Inc()
		return false
	}
	if rl.maxConcurrent > 0 && rl.currentConc >= rl.maxConcurrent {
		metrics.RateLimitHits.Inc()
		return false
	}
	rl.currentConc++
	return true
}

func (rl *RateLimiter) Done() {
	rl.mu.Lock()
	if rl.currentConc > 0 {
		rl.currentConc--
	}
	rl.mu.Unlock()
}

// Middleware rejects requests over the limits with 429. The client address
// is taken from RemoteAddr, which chi's RealIP middleware rewrites upstream.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.Allow(ip) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		defer rl.Done()

		next.ServeHTTP(w, r)
	})
}

// Cleanup drops per-IP limiters idle for longer than maxIdle and returns how
// many were removed.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	removed := 0
	for ip, l := range rl.perIP {
		if l.lastSeen.Before(cutoff) {
			delete(rl.perIP, ip)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of client IPs with a live limiter.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.perIP)
}

// StartCleanup runs Cleanup every interval until ctx is done, dropping
// limiters idle for at least one interval.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(interval)
			}
		}
	}()
}
