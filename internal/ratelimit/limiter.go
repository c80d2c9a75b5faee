// Package ratelimit implements token-paced gates for the external
// services the researcher talks to. Limits are global per service, not
// per worker: concurrent site pipelines block on the shared token.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Service names the external endpoints with independent rate contracts.
type Service string

// Known services.
const (
	ServicePrimary      Service = "primary"
	ServiceEncyclopedia Service = "encyclopedia"
	ServiceGeocoding    Service = "geocoding"
	ServiceTranslation  Service = "translation"
)

// Limiter manages one token bucket per external service.
type Limiter struct {
	mu       sync.Mutex
	limiters map[Service]*rate.Limiter
	defaults rate.Limit
}

// Config holds the minimum spacing between calls per service. A zero
// interval means the service is unpaced.
type Config struct {
	Intervals map[Service]time.Duration
}

// New creates a Limiter with one bucket per configured service.
// Unconfigured services are unpaced.
func New(cfg Config) *Limiter {
	l := &Limiter{
		limiters: make(map[Service]*rate.Limiter, len(cfg.Intervals)),
		defaults: rate.Inf,
	}
	for svc, interval := range cfg.Intervals {
		if interval <= 0 {
			l.limiters[svc] = rate.NewLimiter(rate.Inf, 1)
			continue
		}
		l.limiters[svc] = rate.NewLimiter(rate.Every(interval), 1)
	}
	return l
}

// Wait blocks until a token is available for the service, respecting the
// context.
func (l *Limiter) Wait(ctx context.Context, svc Service) error {
	l.mu.Lock()
	limiter, ok := l.limiters[svc]
	if !ok {
		limiter = rate.NewLimiter(l.defaults, 1)
		l.limiters[svc] = limiter
	}
	l.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", svc, err)
	}
	return nil
}
