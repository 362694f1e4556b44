package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/pkg/logger"
)

type noopMetrics struct{}

func (noopMetrics) RecordCycle(float64, bool)          {}
func (noopMetrics) RecordProviderError(string)         {}
func (noopMetrics) RecordFetchLatency(string, float64) {}
func (noopMetrics) RecordLastPrice(string, float64)    {}
func (noopMetrics) RecordSignal(string)                {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

type fakeProvider struct {
	name   string
	series *models.PriceSeries
	err    *models.BotError
	delay  time.Duration
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, asset models.Asset) (*models.PriceSeries, *models.BotError) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, models.NewBotError(models.ErrProviderTimeout, asset.Symbol, f.name, "context done")
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func fakeSeries(source string, n int) *models.PriceSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := range points {
		c := 100 + float64(i)
		points[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c, High: c, Low: c, Close: c,
		}
	}
	return &models.PriceSeries{Symbol: "BTC/USD", Source: source, Points: points}
}

func fakeSeriesWithVolume(source string, n int) *models.PriceSeries {
	s := fakeSeries(source, n)
	for i := range s.Points {
		s.Points[i].Volume = 10 + float64(i)
	}
	return s
}

func testAsset(providers ...string) models.Asset {
	return models.Asset{Symbol: "BTC/USD", Providers: providers, Indicators: []string{"rsi"}}
}

func newTestAcquirer(t *testing.T, provs ...domrepo.Provider) *Acquirer {
	t.Helper()
	return NewAcquirer(provs, noopMetrics{}, testLogger(t))
}

func TestAcquireSelectsByPriorityNotCompletionOrder(t *testing.T) {
	primary := &fakeProvider{name: "primary", series: fakeSeries("primary", 50), delay: 20 * time.Millisecond}
	secondary := &fakeProvider{name: "secondary", series: fakeSeries("secondary", 50)}

	acq := newTestAcquirer(t, primary, secondary)
	outcomes, series, err := acq.Acquire(context.Background(), testAsset("primary", "secondary"), 20)

	require.Nil(t, err)
	require.NotNil(t, series)
	assert.Equal(t, "primary", series.Source)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].OK())
	assert.True(t, outcomes[1].OK())
}

func TestAcquireFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &fakeProvider{
		name: "primary",
		err:  models.NewBotError(models.ErrProviderTimeout, "BTC/USD", "primary", "deadline"),
	}
	secondary := &fakeProvider{name: "secondary", series: fakeSeries("secondary", 50)}

	acq := newTestAcquirer(t, primary, secondary)
	outcomes, series, err := acq.Acquire(context.Background(), testAsset("primary", "secondary"), 20)

	require.Nil(t, err)
	assert.Equal(t, "secondary", series.Source)
	assert.Equal(t, models.ErrProviderTimeout, outcomes[0].Err.Kind)
	assert.True(t, outcomes[1].OK())
}

func TestAcquireAllProvidersFailed(t *testing.T) {
	p1 := &fakeProvider{name: "a", err: models.NewBotError(models.ErrProviderHTTP, "BTC/USD", "a", "503")}
	p2 := &fakeProvider{name: "b", err: models.NewBotError(models.ErrProviderRateLimited, "BTC/USD", "b", "429")}

	acq := newTestAcquirer(t, p1, p2)
	outcomes, series, err := acq.Acquire(context.Background(), testAsset("a", "b"), 20)

	assert.Nil(t, series)
	require.NotNil(t, err)
	assert.Equal(t, models.ErrDataUnavailable, err.Kind)
	assert.Len(t, outcomes, 2)
}

func TestAcquireSuccessButTooShortIsInsufficientHistory(t *testing.T) {
	p := &fakeProvider{name: "a", series: fakeSeries("a", 10)}

	acq := newTestAcquirer(t, p)
	_, series, err := acq.Acquire(context.Background(), testAsset("a"), 20)

	assert.Nil(t, series)
	require.NotNil(t, err)
	assert.Equal(t, models.ErrInsufficientHistory, err.Kind)
}

func TestAcquireUnregisteredProvider(t *testing.T) {
	acq := newTestAcquirer(t)
	outcomes, series, err := acq.Acquire(context.Background(), testAsset("ghost"), 20)

	assert.Nil(t, series)
	require.NotNil(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "ghost", outcomes[0].Provider)
}

func TestAcquireBackfillsVolumeWithoutTouchingPrices(t *testing.T) {
	primary := &fakeProvider{name: "primary", series: fakeSeries("primary", 30)}
	donor := &fakeProvider{name: "donor", series: fakeSeriesWithVolume("donor", 30)}

	acq := newTestAcquirer(t, primary, donor)
	_, series, err := acq.Acquire(context.Background(), testAsset("primary", "donor"), 20)

	require.Nil(t, err)
	assert.Equal(t, "primary", series.Source)
	assert.True(t, series.HasVolume())
	assert.Equal(t, 100.0, series.Points[0].Close)
	assert.Equal(t, 10.0, series.Points[0].Volume)
}
