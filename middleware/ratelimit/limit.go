// Package ratelimit implements a per-client token-bucket rate limiter as
// fletch middleware: a visitor map guarded by a mutex, one
// golang.org/x/time/rate limiter per client key, keyed on
// fletch.Request.RemoteAddr.
package ratelimit

import (
	"sync"
	"time"

	"github.com/fletch-http/fletch"
	"golang.org/x/time/rate"
)

// Config holds rate-limiting settings: how many Requests are allowed per
// Duration, the Burst size, and how long an idle visitor's entry is kept
// before ExpiresIn cleanup discards it.
type Config struct {
	Requests  int
	Burst     int
	Duration  time.Duration
	ExpiresIn time.Duration
}

// DefaultConfig allows 1 request per second with a burst of 5, expiring
// idle visitors after an hour.
func DefaultConfig() Config {
	return Config{
		Requests:  1,
		Burst:     5,
		Duration:  time.Second,
		ExpiresIn: time.Hour,
	}
}

// visitor tracks one client's limiter plus its last-seen time, for
// cleanup.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	mu          sync.Mutex
	visitors    = make(map[string]*visitor)
	cleanupOnce sync.Once
)

// newLimiter builds a limiter allowing cfg.Requests events per cfg.Duration,
// with the given burst.
func newLimiter(cfg Config) *rate.Limiter {
	return rate.NewLimiter(rate.Every(cfg.Duration/time.Duration(cfg.Requests)), cfg.Burst)
}

// getVisitor returns key's limiter, creating one under cfg if this is its
// first request.
func getVisitor(key string, cfg Config) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		v = &visitor{limiter: newLimiter(cfg)}
		visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors evicts visitors idle longer than expiresIn once a
// minute, for the lifetime of the process. Started at most once,
// regardless of how many times New is called.
func cleanupVisitors(expiresIn time.Duration) {
	for range time.Tick(time.Minute) {
		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > expiresIn {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

// New returns middleware limiting each distinct client IP (Request.RemoteAddr
// without its port) to cfg.Requests per cfg.Duration, rejecting overflow with 429. Config
// defaults if omitted; only the first Config is used if more than one is
// passed.
func New(config ...Config) fletch.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	cleanupOnce.Do(func() { go cleanupVisitors(cfg.ExpiresIn) })

	return func(req *fletch.Request) *fletch.Response {
		limiter := getVisitor(clientKey(req), cfg)
		if limiter.Allow() {
			return nil
		}

		resp := fletch.NewResponse()
		resp.SetStatus(fletch.StatusTooManyRequests)
		if err := resp.JSON(map[string]string{"message": "rate limit reached"}); err != nil {
			resp.Text("rate limit reached")
		}
		return resp
	}
}

// clientKey extracts the bare IP from Request.RemoteAddr ("ip:port"),
// falling back to the raw value if it does not contain a port.
func clientKey(req *fletch.Request) string {
	addr := req.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
