package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalForge/internal/domain/models"
	"SignalForge/pkg/cache"
)

type fakeSource struct {
	name  string
	calls int
	// errs are returned per attempt; once exhausted, a series is returned.
	errs []error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) fetchOnce(ctx context.Context, asset models.Asset) (*models.PriceSeries, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &models.PriceSeries{
		Symbol: asset.Symbol,
		Source: f.name,
		Points: []models.PricePoint{
			{Timestamp: time.Date(2025, 6, 1, 0, 15, 0, 0, time.UTC), Close: 101},
			{Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Close: 100},
		},
	}, nil
}

func gwAsset() models.Asset {
	return models.Asset{Symbol: "BTC/USD", Providers: []string{"fake"}}
}

func TestGatewayFetchNormalizesSeries(t *testing.T) {
	src := &fakeSource{name: "fake"}
	g := NewGateway(src, WithRetry(2, time.Millisecond))

	series, err := g.Fetch(context.Background(), gwAsset())
	require.Nil(t, err)
	require.Equal(t, 2, series.Len())
	// Out-of-order points come back sorted ascending.
	assert.True(t, series.Points[0].Timestamp.Before(series.Points[1].Timestamp))
}

func TestGatewayRetriesThenSucceeds(t *testing.T) {
	src := &fakeSource{name: "fake", errs: []error{&StatusError{Code: 502}}}
	g := NewGateway(src, WithRetry(2, time.Millisecond))

	series, err := g.Fetch(context.Background(), gwAsset())
	require.Nil(t, err)
	assert.NotNil(t, series)
	assert.Equal(t, 2, src.calls)
}

func TestGatewayClassifiesStatusErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind models.ErrorKind
	}{
		{"http 500", &StatusError{Code: 500}, models.ErrProviderHTTP},
		{"http 429", &StatusError{Code: 429}, models.ErrProviderRateLimited},
		{"malformed", &MalformedError{Reason: "bad json"}, models.ErrProviderMalformedResponse},
		{"deadline", context.DeadlineExceeded, models.ErrProviderTimeout},
		{"other", errors.New("connection refused"), models.ErrProviderHTTP},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{name: "fake", errs: []error{tc.err, tc.err}}
			g := NewGateway(src, WithRetry(2, time.Millisecond))

			series, botErr := g.Fetch(context.Background(), gwAsset())
			assert.Nil(t, series)
			require.NotNil(t, botErr)
			assert.Equal(t, tc.kind, botErr.Kind)
			assert.Equal(t, "fake", botErr.Provider)
			assert.Equal(t, "BTC/USD", botErr.Symbol)
		})
	}
}

func TestGatewayLocalRateLimit(t *testing.T) {
	src := &fakeSource{name: "fake"}
	// Burst of 1 with no refill: the second fetch is rejected locally.
	g := NewGateway(src, WithRetry(1, 0), WithRateLimit(1, 0))

	_, err := g.Fetch(context.Background(), gwAsset())
	require.Nil(t, err)

	series, err := g.Fetch(context.Background(), gwAsset())
	assert.Nil(t, series)
	require.NotNil(t, err)
	assert.Equal(t, models.ErrProviderRateLimited, err.Kind)
	assert.Equal(t, 1, src.calls)
}

func TestGatewayServesFromCache(t *testing.T) {
	src := &fakeSource{name: "fake"}
	mem := cache.NewMemoryCache()
	g := NewGateway(src, WithRetry(1, 0), WithCache(mem, time.Minute))

	first, err := g.Fetch(context.Background(), gwAsset())
	require.Nil(t, err)

	second, err := g.Fetch(context.Background(), gwAsset())
	require.Nil(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first.Len(), second.Len())
	assert.Equal(t, first.LastClose(), second.LastClose())
}

func TestGatewayRespectsContextCancellation(t *testing.T) {
	src := &fakeSource{name: "fake", errs: []error{&StatusError{Code: 502}, &StatusError{Code: 502}}}
	g := NewGateway(src, WithRetry(2, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	series, err := g.Fetch(ctx, gwAsset())
	assert.Nil(t, series)
	require.NotNil(t, err)
	// Backoff of an hour must not be waited out once ctx dies.
	assert.Less(t, time.Since(start), time.Second)
}
