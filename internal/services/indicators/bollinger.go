package indicators

import (
	"fmt"

	"SignalForge/internal/domain/models"
)

// Bollinger flags closes breaching the SMA +/- k*stddev bands. Confidence
// is the penetration depth in standard deviations: a close one full
// deviation past the band scores 100.
type Bollinger struct {
	period int
	k      float64
}

func NewBollinger(period int, k float64) *Bollinger {
	return &Bollinger{period: period, k: k}
}

func (b *Bollinger) Name() string { return IDBollinger }

func (b *Bollinger) MinPoints() int { return b.period }

func (b *Bollinger) Compute(series *models.PriceSeries) (models.IndicatorSignal, bool) {
	closes := series.Closes()
	if len(closes) < b.MinPoints() {
		return models.IndicatorSignal{}, false
	}

	mid := sma(closes, b.period)
	std := stdDev(closes, b.period)
	close := closes[len(closes)-1]

	sig := models.IndicatorSignal{Source: IDBollinger}
	if std == 0 {
		sig.Direction = models.Hold
		sig.Confidence = 0
		sig.Rationale = "Bollinger band collapsed (flat prices)"
		return sig, true
	}

	upper := mid + b.k*std
	lower := mid - b.k*std

	switch {
	case close < lower:
		sig.Direction = models.Buy
		sig.Confidence = clip((lower - close) / std * 100)
		sig.Rationale = fmt.Sprintf("close %.4f below lower band %.4f", close, lower)
	case close > upper:
		sig.Direction = models.Sell
		sig.Confidence = clip((close - upper) / std * 100)
		sig.Rationale = fmt.Sprintf("close %.4f above upper band %.4f", close, upper)
	default:
		// %B centered: 1 at the midline, 0 at either band.
		pb := (close - lower) / (upper - lower)
		sig.Direction = models.Hold
		sig.Confidence = clip((1 - abs(2*pb-1)) * 100)
		sig.Rationale = fmt.Sprintf("close %.4f within bands", close)
	}
	return sig, true
}
