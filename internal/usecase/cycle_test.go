package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalForge/internal/domain/models"
	internalrepo "SignalForge/internal/repository"
	"SignalForge/internal/services/indicators"
)

type captureAlerter struct {
	mu   sync.Mutex
	sent []models.ConsensusSignal
	fail bool
}

func (a *captureAlerter) SendSignal(_ context.Context, sig models.ConsensusSignal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("telegram unreachable")
	}
	a.sent = append(a.sent, sig)
	return nil
}

func (a *captureAlerter) SendTest(context.Context) error { return nil }
func (a *captureAlerter) Configured() bool               { return true }

func (a *captureAlerter) signals() []models.ConsensusSignal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ConsensusSignal(nil), a.sent...)
}

func downtrendSeries(source string, n int) *models.PriceSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := range points {
		c := 200 - float64(i)
		points[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c, High: c, Low: c, Close: c,
		}
	}
	return &models.PriceSeries{Symbol: "BTC/USD", Source: source, Points: points}
}

func testIndicatorSet() []indicators.Indicator {
	return indicators.Build(indicators.Params{
		RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		BollingerPeriod: 20, BollingerStdDev: 2,
		MAShortPeriod: 50, MALongPeriod: 200,
		VolumeWindow: 20, VolumeSpikeRatio: 2.0,
	})
}

func TestRunCycleCommitsAndAlerts(t *testing.T) {
	// A steady downtrend drives RSI to 0: one BUY vote at confidence 100.
	provider := &fakeProvider{name: "primary", series: downtrendSeries("primary", 20)}
	store := internalrepo.NewStateStore(10, 10)
	alerter := &captureAlerter{}

	asset := models.Asset{Symbol: "BTC/USD", Providers: []string{"primary"}, Indicators: []string{"rsi"}}
	orch := NewOrchestrator(
		[]models.Asset{asset},
		testIndicatorSet(),
		newTestAcquirer(t, provider),
		NewConsensus(80, nil),
		store,
		alerter,
		internalrepo.NopSignalPublisher{},
		noopMetrics{},
		testLogger(t),
		time.Second,
	)

	rec := orch.RunCycle(context.Background())

	assert.True(t, rec.Success)
	require.Len(t, rec.Outcomes, 1)
	require.NotNil(t, rec.Outcomes[0].Signal)
	assert.Equal(t, models.Buy, rec.Outcomes[0].Signal.Direction)

	// Committed state matches the returned record.
	last, ok := store.LastCycle()
	require.True(t, ok)
	assert.Equal(t, rec.StartedAt, last.StartedAt)
	current := store.CurrentSignals()
	require.Contains(t, current, "BTC/USD")
	assert.Equal(t, models.Buy, current["BTC/USD"].Direction)

	counters := store.Counters()
	assert.Equal(t, uint64(1), counters.CyclesRun)
	assert.Equal(t, uint64(1), counters.CyclesSucceed)

	sent := alerter.signals()
	require.Len(t, sent, 1)
	assert.Equal(t, "BTC/USD", sent[0].Symbol)
}

func TestRunCycleIsolatesFailedAsset(t *testing.T) {
	good := &fakeProvider{name: "good", series: downtrendSeries("good", 20)}
	bad := &fakeProvider{
		name: "bad",
		err:  models.NewBotError(models.ErrProviderHTTP, "ETH/USD", "bad", "503"),
	}
	store := internalrepo.NewStateStore(10, 10)
	alerter := &captureAlerter{}

	assets := []models.Asset{
		{Symbol: "BTC/USD", Providers: []string{"good"}, Indicators: []string{"rsi"}},
		{Symbol: "ETH/USD", Providers: []string{"bad"}, Indicators: []string{"rsi"}},
	}
	orch := NewOrchestrator(
		assets,
		testIndicatorSet(),
		newTestAcquirer(t, good, bad),
		NewConsensus(80, nil),
		store,
		alerter,
		internalrepo.NopSignalPublisher{},
		noopMetrics{},
		testLogger(t),
		time.Second,
	)

	rec := orch.RunCycle(context.Background())

	// A handled per-asset failure is recorded but does not fail the cycle.
	assert.True(t, rec.Success)
	require.Len(t, rec.Outcomes, 2)
	assert.NotNil(t, rec.Outcomes[0].Signal)
	require.NotNil(t, rec.Outcomes[1].Err)
	assert.Equal(t, models.ErrDataUnavailable, rec.Outcomes[1].Err.Kind)

	// The healthy asset still produced and alerted.
	assert.Len(t, alerter.signals(), 1)
	errs := store.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "ETH/USD", errs[0].Symbol)

	counters := store.Counters()
	assert.Equal(t, uint64(1), counters.CyclesRun)
	assert.Equal(t, uint64(1), counters.CyclesSucceed)
}

type panicIndicator struct{}

func (panicIndicator) Name() string   { return "boom" }
func (panicIndicator) MinPoints() int { return 1 }
func (panicIndicator) Compute(*models.PriceSeries) (models.IndicatorSignal, bool) {
	panic("indicator exploded")
}

func TestRunCycleFailsOnInternalFault(t *testing.T) {
	provider := &fakeProvider{name: "primary", series: downtrendSeries("primary", 20)}
	store := internalrepo.NewStateStore(10, 10)

	asset := models.Asset{Symbol: "BTC/USD", Providers: []string{"primary"}, Indicators: []string{"boom"}}
	orch := NewOrchestrator(
		[]models.Asset{asset},
		[]indicators.Indicator{panicIndicator{}},
		newTestAcquirer(t, provider),
		NewConsensus(80, nil),
		store,
		&captureAlerter{},
		internalrepo.NopSignalPublisher{},
		noopMetrics{},
		testLogger(t),
		time.Second,
	)

	rec := orch.RunCycle(context.Background())

	// A fault escaping the per-asset boundary fails the whole cycle.
	assert.False(t, rec.Success)
	counters := store.Counters()
	assert.Equal(t, uint64(1), counters.CyclesRun)
	assert.Equal(t, uint64(0), counters.CyclesSucceed)
}

func TestRunCycleRecordsAlertDeliveryFailure(t *testing.T) {
	provider := &fakeProvider{name: "primary", series: downtrendSeries("primary", 20)}
	store := internalrepo.NewStateStore(10, 10)
	alerter := &captureAlerter{fail: true}

	asset := models.Asset{Symbol: "BTC/USD", Providers: []string{"primary"}, Indicators: []string{"rsi"}}
	orch := NewOrchestrator(
		[]models.Asset{asset},
		testIndicatorSet(),
		newTestAcquirer(t, provider),
		NewConsensus(80, nil),
		store,
		alerter,
		internalrepo.NopSignalPublisher{},
		noopMetrics{},
		testLogger(t),
		time.Second,
	)

	rec := orch.RunCycle(context.Background())

	// The cycle itself succeeds; only the delivery is recorded as failed.
	assert.True(t, rec.Success)
	errs := store.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, models.ErrAlertDeliveryFailure, errs[0].Kind)
}

func TestRunCycleHoldSignalIsNotAlerted(t *testing.T) {
	// Flat prices: RSI 50, a HOLD vote, so consensus is HOLD.
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, 20)
	for i := range points {
		points[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Open:      100, High: 100, Low: 100, Close: 100,
		}
	}
	provider := &fakeProvider{
		name:   "primary",
		series: &models.PriceSeries{Symbol: "BTC/USD", Source: "primary", Points: points},
	}
	store := internalrepo.NewStateStore(10, 10)
	alerter := &captureAlerter{}

	asset := models.Asset{Symbol: "BTC/USD", Providers: []string{"primary"}, Indicators: []string{"rsi"}}
	orch := NewOrchestrator(
		[]models.Asset{asset},
		testIndicatorSet(),
		newTestAcquirer(t, provider),
		NewConsensus(80, nil),
		store,
		alerter,
		internalrepo.NopSignalPublisher{},
		noopMetrics{},
		testLogger(t),
		time.Second,
	)

	rec := orch.RunCycle(context.Background())

	require.NotNil(t, rec.Outcomes[0].Signal)
	assert.Equal(t, models.Hold, rec.Outcomes[0].Signal.Direction)
	assert.Empty(t, alerter.signals())

	// HOLD still lands in current signals and history.
	assert.Contains(t, store.CurrentSignals(), "BTC/USD")
	assert.Len(t, store.History(0, time.Time{}), 1)
}
