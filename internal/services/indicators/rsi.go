package indicators

import (
	"fmt"

	"SignalForge/internal/domain/models"
)

// RSI flags oversold (<30) and overbought (>70) conditions. Average gain
// and loss use a simple rolling mean over the period. Confidence grows
// linearly with the distance past the 30/70 boundary and reaches 100 at the
// 0/100 extremes.
type RSI struct {
	period int
}

func NewRSI(period int) *RSI { return &RSI{period: period} }

func (r *RSI) Name() string { return IDRSI }

// MinPoints requires period+1 closes: period deltas need one extra point.
func (r *RSI) MinPoints() int { return r.period + 1 }

func (r *RSI) Compute(series *models.PriceSeries) (models.IndicatorSignal, bool) {
	closes := series.Closes()
	if len(closes) < r.MinPoints() {
		return models.IndicatorSignal{}, false
	}

	value := r.value(closes)

	sig := models.IndicatorSignal{Source: IDRSI}
	switch {
	case value < 30:
		sig.Direction = models.Buy
		sig.Confidence = clip((30 - value) / 30 * 100)
		sig.Rationale = fmt.Sprintf("RSI %.1f oversold", value)
	case value > 70:
		sig.Direction = models.Sell
		sig.Confidence = clip((value - 70) / 30 * 100)
		sig.Rationale = fmt.Sprintf("RSI %.1f overbought", value)
	default:
		sig.Direction = models.Hold
		sig.Confidence = clip((20 - abs(value-50)) * 5)
		sig.Rationale = fmt.Sprintf("RSI %.1f neutral", value)
	}
	return sig, true
}

func (r *RSI) value(closes []float64) float64 {
	window := closes[len(closes)-r.period-1:]
	var gain, loss float64
	for i := 1; i < len(window); i++ {
		d := window[i] - window[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	gain /= float64(r.period)
	loss /= float64(r.period)

	if loss == 0 {
		if gain == 0 {
			return 50
		}
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
