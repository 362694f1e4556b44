package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalForge/internal/domain/models"
)

func seriesOf(closes ...float64) *models.PriceSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c, High: c, Low: c, Close: c,
		}
	}
	return &models.PriceSeries{Symbol: "BTC/USD", Source: "test", Points: points}
}

func withVolumes(s *models.PriceSeries, vols ...float64) *models.PriceSeries {
	for i := range vols {
		s.Points[i].Volume = vols[i]
	}
	return s
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestRSIInsufficientHistory(t *testing.T) {
	rsi := NewRSI(14)
	_, ok := rsi.Compute(seriesOf(ramp(14, 100, 1)...))
	assert.False(t, ok)
}

func TestRSIOverbought(t *testing.T) {
	rsi := NewRSI(14)
	sig, ok := rsi.Compute(seriesOf(ramp(15, 100, 1)...))
	require.True(t, ok)
	assert.Equal(t, models.Sell, sig.Direction)
	assert.InDelta(t, 100, sig.Confidence, 1e-9)
}

func TestRSIOversold(t *testing.T) {
	rsi := NewRSI(14)
	sig, ok := rsi.Compute(seriesOf(ramp(15, 100, -1)...))
	require.True(t, ok)
	assert.Equal(t, models.Buy, sig.Direction)
	assert.InDelta(t, 100, sig.Confidence, 1e-9)
}

func TestRSIFlatIsNeutralHold(t *testing.T) {
	rsi := NewRSI(14)
	sig, ok := rsi.Compute(seriesOf(ramp(15, 100, 0)...))
	require.True(t, ok)
	assert.Equal(t, models.Hold, sig.Direction)
	assert.InDelta(t, 100, sig.Confidence, 1e-9)
}

func TestBollingerCollapsedBand(t *testing.T) {
	b := NewBollinger(20, 2)
	sig, ok := b.Compute(seriesOf(ramp(20, 100, 0)...))
	require.True(t, ok)
	assert.Equal(t, models.Hold, sig.Direction)
	assert.Zero(t, sig.Confidence)
}

func TestBollingerBreakoutBelow(t *testing.T) {
	b := NewBollinger(20, 2)
	closes := ramp(19, 100, 0)
	closes = append(closes, 90)
	sig, ok := b.Compute(seriesOf(closes...))
	require.True(t, ok)
	assert.Equal(t, models.Buy, sig.Direction)
	assert.Greater(t, sig.Confidence, 0.0)
	assert.LessOrEqual(t, sig.Confidence, 100.0)
}

func TestBollingerInsideBands(t *testing.T) {
	b := NewBollinger(5, 2)
	sig, ok := b.Compute(seriesOf(100, 101, 99, 100, 100.2))
	require.True(t, ok)
	assert.Equal(t, models.Hold, sig.Direction)
	assert.GreaterOrEqual(t, sig.Confidence, 0.0)
	assert.LessOrEqual(t, sig.Confidence, 100.0)
}

func TestMACrossFreshBullishCross(t *testing.T) {
	m := NewMACross(2, 3)
	sig, ok := m.Compute(seriesOf(10, 10, 10, 12))
	require.True(t, ok)
	assert.Equal(t, models.Buy, sig.Direction)
	assert.Greater(t, sig.Confidence, 0.0)
}

func TestMACrossNoFreshCross(t *testing.T) {
	m := NewMACross(2, 3)
	// Short SMA already above: no new cross this step.
	sig, ok := m.Compute(seriesOf(10, 10, 12, 14))
	require.True(t, ok)
	assert.Equal(t, models.Hold, sig.Direction)
}

func TestMACrossInsufficientHistory(t *testing.T) {
	m := NewMACross(50, 200)
	_, ok := m.Compute(seriesOf(ramp(200, 100, 0.1)...))
	assert.False(t, ok)
}

func TestSeparationConfidence(t *testing.T) {
	assert.InDelta(t, 100, separationConfidence(101, 100, 100), 1e-9)
	assert.InDelta(t, 50, separationConfidence(100.5, 100, 100), 1e-9)
	assert.Zero(t, separationConfidence(10, 20, 0))
}

func TestMACDHoldWithoutFreshCross(t *testing.T) {
	m := NewMACD(3, 6, 3)
	sig, ok := m.Compute(seriesOf(ramp(40, 100, 1)...))
	require.True(t, ok)
	assert.Equal(t, models.Hold, sig.Direction)
	assert.InDelta(t, 50, sig.Confidence, 1e-9)
}

func TestMACDInsufficientHistory(t *testing.T) {
	m := NewMACD(12, 26, 9)
	_, ok := m.Compute(seriesOf(ramp(35, 100, 1)...))
	assert.False(t, ok)
}

func TestCrossoverConfidence(t *testing.T) {
	assert.InDelta(t, 100, crossoverConfidence(1, 1), 1e-9)
	assert.InDelta(t, 50, crossoverConfidence(0.5, 1), 1e-9)
	assert.InDelta(t, 100, crossoverConfidence(2, 1), 1e-9)
	assert.InDelta(t, 100, crossoverConfidence(0.1, 0), 1e-9)
	assert.Zero(t, crossoverConfidence(0, 0))
}

func TestVolumeSpikeOnRisingPrices(t *testing.T) {
	v := NewVolumeSpike(3, 2.0)
	s := withVolumes(seriesOf(100, 101, 102, 103), 10, 10, 10, 30)
	sig, ok := v.Compute(s)
	require.True(t, ok)
	assert.Equal(t, models.Buy, sig.Direction)
	assert.InDelta(t, 75, sig.Confidence, 1e-9)
}

func TestVolumeSpikeOnFallingPrices(t *testing.T) {
	v := NewVolumeSpike(3, 2.0)
	s := withVolumes(seriesOf(103, 102, 101, 100), 10, 10, 10, 30)
	sig, ok := v.Compute(s)
	require.True(t, ok)
	assert.Equal(t, models.Sell, sig.Direction)
}

func TestVolumeSpikeBelowThresholdIsHold(t *testing.T) {
	v := NewVolumeSpike(3, 2.0)
	s := withVolumes(seriesOf(100, 101, 102, 103), 10, 10, 10, 15)
	sig, ok := v.Compute(s)
	require.True(t, ok)
	assert.Equal(t, models.Hold, sig.Direction)
}

func TestVolumeSpikeWithoutVolumeDataIsExcluded(t *testing.T) {
	v := NewVolumeSpike(3, 2.0)
	_, ok := v.Compute(seriesOf(100, 101, 102, 103))
	assert.False(t, ok)
}

func TestBuildAndForAsset(t *testing.T) {
	all := Build(Params{
		RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		BollingerPeriod: 20, BollingerStdDev: 2,
		MAShortPeriod: 50, MALongPeriod: 200,
		VolumeWindow: 20, VolumeSpikeRatio: 2.0,
	})
	require.Len(t, all, 5)

	subset := ForAsset(all, []string{IDMACD, IDRSI})
	require.Len(t, subset, 2)
	// Registry order wins over config order.
	assert.Equal(t, IDRSI, subset[0].Name())
	assert.Equal(t, IDMACD, subset[1].Name())

	assert.Equal(t, 201, MaxMinPoints(all))
}

func TestConfidenceAlwaysBounded(t *testing.T) {
	all := Build(Params{
		RSIPeriod: 5, MACDFast: 3, MACDSlow: 6, MACDSignal: 3,
		BollingerPeriod: 5, BollingerStdDev: 2,
		MAShortPeriod: 3, MALongPeriod: 5,
		VolumeWindow: 3, VolumeSpikeRatio: 2.0,
	})
	series := []*models.PriceSeries{
		seriesOf(ramp(40, 100, 5)...),
		seriesOf(ramp(40, 500, -5)...),
		withVolumes(seriesOf(ramp(40, 100, 1)...), ramp(40, 10, 50)...),
		seriesOf(ramp(40, 100, 0)...),
	}
	for _, s := range series {
		for _, ind := range all {
			if sig, ok := ind.Compute(s); ok {
				assert.GreaterOrEqual(t, sig.Confidence, 0.0, ind.Name())
				assert.LessOrEqual(t, sig.Confidence, 100.0, ind.Name())
			}
		}
	}
}
