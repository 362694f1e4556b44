package models

import "time"

// Asset is one entry of the fixed trading universe. Immutable for the
// process lifetime; built from config at startup.
type Asset struct {
	Symbol     string   // canonical pair, e.g. "BTC/USD"
	Providers  []string // provider ids in priority order
	Indicators []string // enabled indicator ids
	// ProviderSymbols maps provider id to that provider's symbol format,
	// e.g. coingecko -> "bitcoin", binance -> "BTCUSDT".
	ProviderSymbols map[string]string
}

// SymbolFor returns the provider-specific symbol, falling back to the
// canonical one when no mapping is configured.
func (a Asset) SymbolFor(provider string) string {
	if s, ok := a.ProviderSymbols[provider]; ok && s != "" {
		return s
	}
	return a.Symbol
}

// PricePoint is one OHLCV candle. Volume may be zero when a provider does
// not report it.
type PricePoint struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PriceSeries is a time-ordered candle sequence for one asset, owned by a
// single acquisition pass and discarded after indicator computation.
type PriceSeries struct {
	Symbol string
	Source string // provider id the price values came from
	Points []PricePoint
}

// Len returns the number of points.
func (s *PriceSeries) Len() int { return len(s.Points) }

// Closes extracts the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

// LastClose returns the most recent close, or 0 on an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Close
}

// HasVolume reports whether any point carries a nonzero volume.
func (s *PriceSeries) HasVolume() bool {
	for _, p := range s.Points {
		if p.Volume > 0 {
			return true
		}
	}
	return false
}

// Normalize sorts points ascending by timestamp and drops duplicates so the
// series satisfies the strictly-increasing invariant regardless of provider
// response ordering.
func (s *PriceSeries) Normalize() {
	pts := s.Points
	for i := 1; i < len(pts); i++ {
		j := i
		for j > 0 && pts[j].Timestamp.Before(pts[j-1].Timestamp) {
			pts[j], pts[j-1] = pts[j-1], pts[j]
			j--
		}
	}
	dedup := pts[:0]
	for i, p := range pts {
		if i > 0 && !p.Timestamp.After(dedup[len(dedup)-1].Timestamp) {
			continue
		}
		dedup = append(dedup, p)
	}
	s.Points = dedup
}

// ProviderOutcome is the result of one provider fetch in one cycle: either a
// series or a classified failure, always with the observed latency.
type ProviderOutcome struct {
	Provider string
	Series   *PriceSeries // nil on failure
	Err      *BotError    // nil on success
	Latency  time.Duration
}

// OK reports whether the fetch produced a usable series.
func (o ProviderOutcome) OK() bool { return o.Series != nil && o.Err == nil }
