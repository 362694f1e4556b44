package models

import "time"

// Direction is a directional trading opinion.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// IndicatorSignal is one indicator's opinion on one series. An indicator
// that lacks enough history returns ErrInsufficientHistory instead and is
// excluded from voting entirely (it is not a HOLD vote).
type IndicatorSignal struct {
	Source     string    `json:"source"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"` // [0,100]
	Rationale  string    `json:"rationale"`
}

// ConsensusSignal is the fused decision for one asset in one cycle.
//
// Invariant: Direction is BUY or SELL only when Confidence >= the configured
// threshold and that direction strictly won the weighted vote. The internal
// winner is kept even when the threshold demotes the emitted direction to
// HOLD, so dashboards can show why.
type ConsensusSignal struct {
	Symbol     string            `json:"symbol"`
	Direction  Direction         `json:"direction"`
	Confidence float64           `json:"confidence"`
	Price      float64           `json:"price"`
	Timestamp  time.Time         `json:"timestamp"`
	Votes      []IndicatorSignal `json:"votes"`
	Rationale  string            `json:"rationale"`
	Risk       RiskMetrics       `json:"risk"`

	// Vote internals, recorded for observability.
	Winner     Direction `json:"winner"`
	BuyWeight  float64   `json:"buy_weight"`
	SellWeight float64   `json:"sell_weight"`
}

// RiskMetrics carries the suggested exit levels and position sizing derived
// from vote strength. Percentages are fractions of the reference price.
type RiskMetrics struct {
	StopLossPct   float64 `json:"stop_loss_pct"`
	TakeProfitPct float64 `json:"take_profit_pct"`
	RiskReward    float64 `json:"risk_reward_ratio"`
	PositionSize  string  `json:"position_size"`
}

// Actionable reports whether the signal should reach the alert dispatcher.
func (s ConsensusSignal) Actionable(threshold float64) bool {
	return s.Direction != Hold && s.Confidence >= threshold
}

// AssetOutcome is the per-asset result inside a CycleRecord: a signal, or a
// failure with ErrorKind DataUnavailable.
type AssetOutcome struct {
	Symbol string           `json:"symbol"`
	Signal *ConsensusSignal `json:"signal,omitempty"`
	Err    *BotError        `json:"error,omitempty"`
}

// CycleRecord summarizes one complete analysis pass.
type CycleRecord struct {
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Outcomes  []AssetOutcome `json:"outcomes"`
	Success   bool           `json:"success"`
}

// Counters accumulates over the process lifetime.
type Counters struct {
	CyclesRun      uint64               `json:"cycles_run"`
	CyclesSucceed  uint64               `json:"cycles_succeeded"`
	SignalsEmitted map[Direction]uint64 `json:"signals_emitted"`
	ConfidenceSum  float64              `json:"confidence_sum"`
}

// AvgConfidence returns the mean confidence over all emitted signals.
func (c Counters) AvgConfidence() float64 {
	var n uint64
	for _, v := range c.SignalsEmitted {
		n += v
	}
	if n == 0 {
		return 0
	}
	return c.ConfidenceSum / float64(n)
}
