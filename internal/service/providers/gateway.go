// Package providers implements the market-data provider gateway: one HTTP
// client per upstream source, wrapped with timeout, retry, local rate
// limiting, short-TTL response caching, and typed failure classification.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
	"SignalForge/internal/service/ratelimit"
	"SignalForge/pkg/cache"
)

// source is one raw upstream: a single fetch attempt with no retry policy.
// Concrete implementations return StatusError / MalformedError so the
// gateway can classify.
type source interface {
	Name() string
	fetchOnce(ctx context.Context, asset models.Asset) (*models.PriceSeries, error)
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("http status %d", e.Code) }

// MalformedError reports a payload that could not be decoded into a series.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string { return "malformed response: " + e.Reason }

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// Gateway wraps one source with the per-provider policy: bounded attempts
// with a fixed backoff, a local token bucket so retries cannot hammer a
// rate-limited upstream, and an optional series cache shared across cycles.
type Gateway struct {
	src      source
	attempts int
	backoff  time.Duration
	timeout  time.Duration

	limiter    *ratelimit.Limiter
	burst      float64
	refillRate float64

	cache    cache.Service
	cacheTTL time.Duration
}

// NewGateway builds a gateway around src with the default policy: 2
// attempts, 2s backoff, 30s per-attempt timeout.
func NewGateway(src source, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		src:        src,
		attempts:   2,
		backoff:    2 * time.Second,
		timeout:    30 * time.Second,
		limiter:    ratelimit.New(),
		burst:      10,
		refillRate: 0.5,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithRetry sets attempt count and fixed backoff.
func WithRetry(attempts int, backoff time.Duration) GatewayOption {
	return func(g *Gateway) {
		if attempts > 0 {
			g.attempts = attempts
		}
		g.backoff = backoff
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.timeout = timeout
	}
}

// WithCache enables series caching with the given TTL.
func WithCache(c cache.Service, ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// WithRateLimit tunes the local token bucket.
func WithRateLimit(burst, refillPerSec float64) GatewayOption {
	return func(g *Gateway) {
		g.burst = burst
		g.refillRate = refillPerSec
	}
}

func (g *Gateway) Name() string { return g.src.Name() }

// Fetch implements repository.Provider. It returns a classified failure
// instead of raising; retries never extend past ctx's deadline.
func (g *Gateway) Fetch(ctx context.Context, asset models.Asset) (*models.PriceSeries, *models.BotError) {
	if s := g.cached(ctx, asset.Symbol); s != nil {
		return s, nil
	}

	if !g.limiter.Allow(g.src.Name(), g.burst, g.refillRate) {
		return nil, models.NewBotError(models.ErrProviderRateLimited, asset.Symbol, g.src.Name(),
			"local rate limit exhausted")
	}

	var lastErr *models.BotError
	for attempt := 1; attempt <= g.attempts; attempt++ {
		series, err := g.fetchAttempt(ctx, asset)
		if err == nil {
			series.Normalize()
			g.store(ctx, asset.Symbol, series)
			return series, nil
		}

		lastErr = g.classify(err, asset.Symbol)
		if ctx.Err() != nil || attempt == g.attempts {
			break
		}
		select {
		case <-time.After(g.backoff):
		case <-ctx.Done():
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (g *Gateway) fetchAttempt(ctx context.Context, asset models.Asset) (*models.PriceSeries, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.src.fetchOnce(attemptCtx, asset)
}

// classify maps a raw fetch error onto the typed failure kinds.
func (g *Gateway) classify(err error, symbol string) *models.BotError {
	provider := g.src.Name()

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == 429 {
			return models.NewBotError(models.ErrProviderRateLimited, symbol, provider, err.Error())
		}
		return models.NewBotError(models.ErrProviderHTTP, symbol, provider, err.Error())
	}

	var malformedErr *MalformedError
	if errors.As(err, &malformedErr) {
		return models.NewBotError(models.ErrProviderMalformedResponse, symbol, provider, err.Error())
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return models.NewBotError(models.ErrProviderTimeout, symbol, provider, err.Error())
	}

	return models.NewBotError(models.ErrProviderHTTP, symbol, provider, err.Error())
}

func (g *Gateway) cacheKey(symbol string) string {
	return cache.GenerateKeyWithParams("series", g.src.Name(), symbol)
}

func (g *Gateway) cached(ctx context.Context, symbol string) *models.PriceSeries {
	if g.cache == nil {
		return nil
	}
	var raw string
	if err := g.cache.Get(ctx, g.cacheKey(symbol), &raw); err != nil {
		return nil
	}
	var s models.PriceSeries
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil
	}
	return &s
}

func (g *Gateway) store(ctx context.Context, symbol string, s *models.PriceSeries) {
	if g.cache == nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	_ = g.cache.Set(ctx, g.cacheKey(symbol), string(b), g.cacheTTL)
}

var _ repository.Provider = (*Gateway)(nil)
