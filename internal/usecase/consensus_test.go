package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"SignalForge/internal/domain/models"
)

func vote(source string, dir models.Direction, conf float64) models.IndicatorSignal {
	return models.IndicatorSignal{Source: source, Direction: dir, Confidence: conf}
}

func TestConsensusStrongBuy(t *testing.T) {
	c := NewConsensus(80, nil)
	votes := []models.IndicatorSignal{
		vote("rsi", models.Buy, 82),
		vote("macd", models.Buy, 90),
		vote("bollinger", models.Buy, 85),
	}

	sig := c.Aggregate("BTC/USD", 50000, votes, time.Now())
	assert.Equal(t, models.Buy, sig.Direction)
	assert.Equal(t, models.Buy, sig.Winner)
	assert.InDelta(t, 85.666, sig.Confidence, 0.01)
	assert.True(t, sig.Actionable(80))
}

func TestConsensusBelowThresholdDemotesToHold(t *testing.T) {
	c := NewConsensus(80, nil)
	votes := []models.IndicatorSignal{
		vote("rsi", models.Buy, 80),
		vote("macd", models.Buy, 75),
		vote("bollinger", models.Buy, 60),
	}

	sig := c.Aggregate("BTC/USD", 50000, votes, time.Now())
	assert.Equal(t, models.Hold, sig.Direction)
	// Winner is preserved for observability even when demoted.
	assert.Equal(t, models.Buy, sig.Winner)
	assert.InDelta(t, 71.666, sig.Confidence, 0.01)
	assert.False(t, sig.Actionable(80))
}

func TestConsensusExactTieIsHold(t *testing.T) {
	c := NewConsensus(80, nil)
	votes := []models.IndicatorSignal{
		vote("rsi", models.Buy, 90),
		vote("macd", models.Buy, 90),
		vote("bollinger", models.Sell, 90),
		vote("ma_cross", models.Sell, 90),
	}

	sig := c.Aggregate("ETH/USD", 3000, votes, time.Now())
	assert.Equal(t, models.Hold, sig.Direction)
	assert.Equal(t, models.Hold, sig.Winner)
	assert.Zero(t, sig.Confidence)
	assert.InDelta(t, sig.BuyWeight, sig.SellWeight, 1e-9)
}

func TestConsensusAllHoldVotes(t *testing.T) {
	c := NewConsensus(80, nil)
	votes := []models.IndicatorSignal{
		vote("rsi", models.Hold, 60),
		vote("macd", models.Hold, 50),
	}

	sig := c.Aggregate("BTC/USD", 50000, votes, time.Now())
	assert.Equal(t, models.Hold, sig.Direction)
	assert.Zero(t, sig.Confidence)
	assert.Zero(t, sig.BuyWeight)
	assert.Zero(t, sig.SellWeight)
}

func TestConsensusHoldVotesCarryNoTallyWeight(t *testing.T) {
	c := NewConsensus(80, nil)
	votes := []models.IndicatorSignal{
		vote("rsi", models.Buy, 85),
		vote("macd", models.Hold, 100),
		vote("bollinger", models.Hold, 100),
	}

	sig := c.Aggregate("BTC/USD", 50000, votes, time.Now())
	assert.Equal(t, models.Buy, sig.Direction)
	assert.InDelta(t, 85, sig.Confidence, 1e-9)
}

func TestConsensusWeightsAffectTallyNotConfidence(t *testing.T) {
	// Sell would win unweighted (90 vs 85); a 2x rsi weight flips the
	// tally, but the reported confidence stays the winner's raw mean.
	c := NewConsensus(80, map[string]float64{"rsi": 2.0})
	votes := []models.IndicatorSignal{
		vote("rsi", models.Buy, 85),
		vote("macd", models.Sell, 90),
	}

	sig := c.Aggregate("BTC/USD", 50000, votes, time.Now())
	assert.Equal(t, models.Buy, sig.Winner)
	assert.InDelta(t, 170, sig.BuyWeight, 1e-9)
	assert.InDelta(t, 90, sig.SellWeight, 1e-9)
	assert.InDelta(t, 85, sig.Confidence, 1e-9)
}

func TestConsensusSingleSellVote(t *testing.T) {
	c := NewConsensus(80, nil)
	sig := c.Aggregate("XAU/USD", 2400, []models.IndicatorSignal{
		vote("bollinger", models.Sell, 95),
	}, time.Now())
	assert.Equal(t, models.Sell, sig.Direction)
	assert.InDelta(t, 95, sig.Confidence, 1e-9)
}

func TestRiskMetricsTightenOnStrongVotes(t *testing.T) {
	c := NewConsensus(80, nil)
	sig := c.Aggregate("BTC/USD", 50000, []models.IndicatorSignal{
		vote("rsi", models.Buy, 90),
		vote("macd", models.Buy, 85),
	}, time.Now())

	assert.InDelta(t, 0.016, sig.Risk.StopLossPct, 1e-9)
	assert.InDelta(t, 0.048, sig.Risk.TakeProfitPct, 1e-9)
	assert.InDelta(t, 3.0, sig.Risk.RiskReward, 1e-9)
	assert.Equal(t, "Medium", sig.Risk.PositionSize)
}

func TestRiskMetricsWidenOnWeakMajority(t *testing.T) {
	c := NewConsensus(80, nil)
	sig := c.Aggregate("BTC/USD", 50000, []models.IndicatorSignal{
		vote("rsi", models.Buy, 50),
		vote("macd", models.Buy, 55),
		vote("bollinger", models.Buy, 70),
	}, time.Now())

	assert.InDelta(t, 0.03, sig.Risk.StopLossPct, 1e-9)
	assert.InDelta(t, 0.032, sig.Risk.TakeProfitPct, 1e-9)
	assert.Equal(t, "Small", sig.Risk.PositionSize)
}

func TestRiskMetricsDefault(t *testing.T) {
	c := NewConsensus(80, nil)
	sig := c.Aggregate("BTC/USD", 50000, []models.IndicatorSignal{
		vote("rsi", models.Buy, 70),
		vote("macd", models.Buy, 65),
	}, time.Now())

	assert.InDelta(t, 0.02, sig.Risk.StopLossPct, 1e-9)
	assert.InDelta(t, 0.04, sig.Risk.TakeProfitPct, 1e-9)
	assert.InDelta(t, 2.0, sig.Risk.RiskReward, 1e-9)
	assert.Equal(t, "Medium", sig.Risk.PositionSize)
}
