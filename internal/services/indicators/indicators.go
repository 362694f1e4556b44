// Package indicators holds the technical indicator computations. Every
// indicator is a pure function over a price series: same series in, same
// signal out, no shared state.
package indicators

import (
	"math"

	"SignalForge/internal/domain/models"
)

// Indicator computes one directional opinion over a price series. Compute
// returns ok=false when the series is shorter than MinPoints (or lacks a
// required field such as volume); such results are excluded from voting,
// they are not HOLD votes.
type Indicator interface {
	Name() string
	MinPoints() int
	Compute(series *models.PriceSeries) (models.IndicatorSignal, bool)
}

// Params carries the configured periods for all indicators.
type Params struct {
	RSIPeriod        int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	BollingerPeriod  int
	BollingerStdDev  float64
	MAShortPeriod    int
	MALongPeriod     int
	VolumeWindow     int
	VolumeSpikeRatio float64
}

// Indicator ids used in asset config.
const (
	IDRSI         = "rsi"
	IDMACD        = "macd"
	IDBollinger   = "bollinger"
	IDMACross     = "ma_cross"
	IDVolumeSpike = "volume_spike"
)

// Build returns all indicators in a fixed order so voting is independent of
// config ordering.
func Build(p Params) []Indicator {
	return []Indicator{
		NewRSI(p.RSIPeriod),
		NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal),
		NewBollinger(p.BollingerPeriod, p.BollingerStdDev),
		NewMACross(p.MAShortPeriod, p.MALongPeriod),
		NewVolumeSpike(p.VolumeWindow, p.VolumeSpikeRatio),
	}
}

// ForAsset filters the built set down to the ids enabled for one asset,
// preserving registry order.
func ForAsset(all []Indicator, enabled []string) []Indicator {
	want := make(map[string]bool, len(enabled))
	for _, id := range enabled {
		want[id] = true
	}
	out := make([]Indicator, 0, len(all))
	for _, ind := range all {
		if want[ind.Name()] {
			out = append(out, ind)
		}
	}
	return out
}

// MaxMinPoints returns the point requirement of the most demanding
// indicator in the set. The acquisition layer uses this to judge whether a
// provider series is usable.
func MaxMinPoints(set []Indicator) int {
	max := 0
	for _, ind := range set {
		if ind.MinPoints() > max {
			max = ind.MinPoints()
		}
	}
	return max
}

// --- shared numeric helpers ---

func sma(xs []float64, period int) float64 {
	if period <= 0 || len(xs) < period {
		return 0
	}
	var sum float64
	for _, v := range xs[len(xs)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// emaSeries computes a full EMA series seeded with the SMA of the first
// period values, smoothing 2/(period+1). Output is aligned with xs starting
// at index period-1.
func emaSeries(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	out := make([]float64, 0, len(xs)-period+1)
	var seed float64
	for _, v := range xs[:period] {
		seed += v
	}
	seed /= float64(period)
	out = append(out, seed)

	k := 2.0 / float64(period+1)
	prev := seed
	for _, v := range xs[period:] {
		prev = v*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

func stdDev(xs []float64, period int) float64 {
	if period <= 1 || len(xs) < period {
		return 0
	}
	window := xs[len(xs)-period:]
	mean := sma(window, period)
	var sum float64
	for _, v := range window {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(period))
}

// clip bounds a confidence into [0,100].
func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
