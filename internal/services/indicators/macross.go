package indicators

import (
	"fmt"

	"SignalForge/internal/domain/models"
)

// MACross votes on a fresh crossover of the short SMA through the long SMA.
// Confidence is the separation between the two averages normalized by
// price: a 1% gap scores 100.
type MACross struct {
	short, long int
}

func NewMACross(short, long int) *MACross {
	return &MACross{short: short, long: long}
}

func (m *MACross) Name() string { return IDMACross }

func (m *MACross) MinPoints() int { return m.long + 1 }

func (m *MACross) Compute(series *models.PriceSeries) (models.IndicatorSignal, bool) {
	closes := series.Closes()
	if len(closes) < m.MinPoints() {
		return models.IndicatorSignal{}, false
	}

	shortCur := sma(closes, m.short)
	longCur := sma(closes, m.long)
	prev := closes[:len(closes)-1]
	shortPrev := sma(prev, m.short)
	longPrev := sma(prev, m.long)

	price := closes[len(closes)-1]
	conf := separationConfidence(shortCur, longCur, price)

	sig := models.IndicatorSignal{Source: IDMACross}
	switch {
	case shortPrev <= longPrev && shortCur > longCur:
		sig.Direction = models.Buy
		sig.Confidence = conf
		sig.Rationale = fmt.Sprintf("SMA%d crossed above SMA%d", m.short, m.long)
	case shortPrev >= longPrev && shortCur < longCur:
		sig.Direction = models.Sell
		sig.Confidence = conf
		sig.Rationale = fmt.Sprintf("SMA%d crossed below SMA%d", m.short, m.long)
	default:
		sig.Direction = models.Hold
		sig.Confidence = conf
		sig.Rationale = fmt.Sprintf("SMA%d/SMA%d no fresh cross", m.short, m.long)
	}
	return sig, true
}

// separationConfidence maps |short-long|/price onto [0,100], 1% -> 100.
func separationConfidence(short, long, price float64) float64 {
	if price == 0 {
		return 0
	}
	return clip(abs(short-long) / price * 10000)
}
