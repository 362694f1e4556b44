package usecase

import (
	"fmt"
	"strings"
	"time"

	"SignalForge/internal/domain/models"
)

// Consensus fuses indicator votes into one decision per asset.
//
// BUY and SELL votes are tallied by confidence, scaled by the per-indicator
// weight; HOLD votes carry no tally weight. The stronger side wins, a tie
// is a HOLD. The reported confidence is the unweighted mean confidence of
// the winning side's votes, and the emitted direction is demoted to HOLD
// when that confidence falls below the threshold.
type Consensus struct {
	threshold float64
	weights   map[string]float64
}

func NewConsensus(threshold float64, weights map[string]float64) *Consensus {
	return &Consensus{threshold: threshold, weights: weights}
}

func (c *Consensus) Threshold() float64 { return c.threshold }

func (c *Consensus) weight(source string) float64 {
	if w, ok := c.weights[source]; ok && w > 0 {
		return w
	}
	return 1.0
}

// Aggregate computes the consensus for one asset. votes must hold only
// indicators that actually produced an opinion; indicators short on history
// are excluded upstream.
func (c *Consensus) Aggregate(symbol string, price float64, votes []models.IndicatorSignal, at time.Time) models.ConsensusSignal {
	sig := models.ConsensusSignal{
		Symbol:    symbol,
		Price:     price,
		Timestamp: at.UTC(),
		Votes:     votes,
	}

	var buyWeight, sellWeight float64
	var buyConfSum, sellConfSum float64
	var buyN, sellN int
	for _, v := range votes {
		switch v.Direction {
		case models.Buy:
			buyWeight += v.Confidence * c.weight(v.Source)
			buyConfSum += v.Confidence
			buyN++
		case models.Sell:
			sellWeight += v.Confidence * c.weight(v.Source)
			sellConfSum += v.Confidence
			sellN++
		}
	}
	sig.BuyWeight = buyWeight
	sig.SellWeight = sellWeight

	switch {
	case buyWeight > sellWeight:
		sig.Winner = models.Buy
		sig.Confidence = buyConfSum / float64(buyN)
	case sellWeight > buyWeight:
		sig.Winner = models.Sell
		sig.Confidence = sellConfSum / float64(sellN)
	default:
		// Tie, including the all-HOLD case.
		sig.Winner = models.Hold
		sig.Confidence = 0
	}

	if sig.Winner != models.Hold && sig.Confidence >= c.threshold {
		sig.Direction = sig.Winner
	} else {
		sig.Direction = models.Hold
	}

	sig.Risk = riskFor(votes)
	sig.Rationale = c.describe(sig, len(votes))
	return sig
}

const (
	baseStopLossPct   = 0.02
	baseTakeProfitPct = 0.04
)

// riskFor derives exit suggestions from vote strength: two or more strong
// votes allow a tighter stop with a wider target, a weak-vote majority gets
// the opposite.
func riskFor(votes []models.IndicatorSignal) models.RiskMetrics {
	var strong, weak int
	for _, v := range votes {
		switch {
		case v.Confidence >= 80:
			strong++
		case v.Confidence < 60:
			weak++
		}
	}

	stop, take := baseStopLossPct, baseTakeProfitPct
	switch {
	case strong >= 2:
		stop *= 0.8
		take *= 1.2
	case weak > strong:
		stop *= 1.5
		take *= 0.8
	}

	return models.RiskMetrics{
		StopLossPct:   stop,
		TakeProfitPct: take,
		RiskReward:    take / stop,
		PositionSize:  positionSizeFor(stop),
	}
}

func positionSizeFor(stopLossPct float64) string {
	switch {
	case stopLossPct <= 0.015:
		return "Large"
	case stopLossPct <= 0.025:
		return "Medium"
	default:
		return "Small"
	}
}

func (c *Consensus) describe(sig models.ConsensusSignal, voteCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d votes, buy %.1f vs sell %.1f", voteCount, sig.BuyWeight, sig.SellWeight)
	switch {
	case sig.Winner == models.Hold:
		b.WriteString(", no directional majority")
	case sig.Direction == models.Hold:
		fmt.Fprintf(&b, ", %s leads at %.1f%% below %.0f%% threshold",
			sig.Winner, sig.Confidence, c.threshold)
	default:
		fmt.Fprintf(&b, ", %s consensus at %.1f%%", sig.Direction, sig.Confidence)
	}
	return b.String()
}
