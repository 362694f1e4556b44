package indicators

import (
	"fmt"

	"SignalForge/internal/domain/models"
)

// MACD votes only on a fresh crossover of the MACD line through its signal
// line. Confidence is the crossover magnitude relative to the recent
// volatility of the histogram, so a decisive cross in a quiet market scores
// higher than a wobble in a noisy one.
type MACD struct {
	fast, slow, signal int
}

func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: fast, slow: slow, signal: signal}
}

func (m *MACD) Name() string { return IDMACD }

// MinPoints: the signal line needs `signal` MACD values, the MACD line
// needs `slow` closes, and crossover detection needs one extra step.
func (m *MACD) MinPoints() int { return m.slow + m.signal + 1 }

func (m *MACD) Compute(series *models.PriceSeries) (models.IndicatorSignal, bool) {
	closes := series.Closes()
	if len(closes) < m.MinPoints() {
		return models.IndicatorSignal{}, false
	}

	fastEMA := emaSeries(closes, m.fast)
	slowEMA := emaSeries(closes, m.slow)

	// Align: slowEMA starts slow-fast steps later than fastEMA.
	offset := m.slow - m.fast
	macdLine := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := emaSeries(macdLine, m.signal)
	n := len(signalLine)
	if n < 2 {
		return models.IndicatorSignal{}, false
	}

	// Histogram = MACD - signal, on the signal line's alignment.
	tail := macdLine[len(macdLine)-n:]
	hist := make([]float64, n)
	for i := range signalLine {
		hist[i] = tail[i] - signalLine[i]
	}
	cur, prev := hist[n-1], hist[n-2]

	window := n
	if window > 2*m.signal {
		window = 2 * m.signal
	}
	vol := stdDev(hist, window)

	sig := models.IndicatorSignal{Source: IDMACD}
	switch {
	case prev <= 0 && cur > 0:
		sig.Direction = models.Buy
		sig.Confidence = crossoverConfidence(cur, vol)
		sig.Rationale = fmt.Sprintf("MACD bullish crossover (hist %+.4f)", cur)
	case prev >= 0 && cur < 0:
		sig.Direction = models.Sell
		sig.Confidence = crossoverConfidence(cur, vol)
		sig.Rationale = fmt.Sprintf("MACD bearish crossover (hist %+.4f)", cur)
	default:
		sig.Direction = models.Hold
		sig.Confidence = 50
		sig.Rationale = "MACD no fresh crossover"
	}
	return sig, true
}

// crossoverConfidence maps |magnitude| in units of recent volatility onto
// [0,100]: one standard deviation scores 100.
func crossoverConfidence(magnitude, vol float64) float64 {
	if vol == 0 {
		if magnitude == 0 {
			return 0
		}
		return 100
	}
	return clip(abs(magnitude) / vol * 100)
}
