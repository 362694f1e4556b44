package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalForge/internal/domain/models"
	"SignalForge/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func TestConfigured(t *testing.T) {
	l := testLogger(t)
	assert.False(t, NewTelegram("", "", l).Configured())
	assert.False(t, NewTelegram("token", "", l).Configured())
	assert.False(t, NewTelegram("", "chat", l).Configured())
	assert.True(t, NewTelegram("token", "chat", l).Configured())
}

func TestUnconfiguredSendSignalIsNoop(t *testing.T) {
	tg := NewTelegram("", "", testLogger(t))
	err := tg.SendSignal(context.Background(), models.ConsensusSignal{Symbol: "BTC/USD"})
	assert.NoError(t, err)
}

func TestUnconfiguredSendTestErrors(t *testing.T) {
	tg := NewTelegram("", "", testLogger(t))
	assert.Error(t, tg.SendTest(context.Background()))
}

func TestFormatSignal(t *testing.T) {
	sig := models.ConsensusSignal{
		Symbol:     "BTC/USD",
		Direction:  models.Buy,
		Confidence: 86.7,
		Price:      104250.5,
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Votes: []models.IndicatorSignal{
			{Source: "rsi", Direction: models.Buy, Confidence: 90},
			{Source: "macd", Direction: models.Buy, Confidence: 83},
		},
		Risk: models.RiskMetrics{
			StopLossPct:   0.016,
			TakeProfitPct: 0.048,
			RiskReward:    3.0,
			PositionSize:  "Medium",
		},
	}

	msg := formatSignal(sig)
	assert.Contains(t, msg, "BTC/USD BUY")
	assert.Contains(t, msg, "86.7%")
	assert.Contains(t, msg, "104250.5000")
	assert.Contains(t, msg, "rsi: BUY (90%)")
	assert.Contains(t, msg, "Stop loss: `1.6%`")
	assert.Contains(t, msg, "Take profit: `4.8%`")
	assert.Contains(t, msg, "Position: `Medium`")
	assert.Contains(t, msg, "2025-06-01 12:00:00 UTC")
}

func TestFormatSignalHoldOmitsRiskLines(t *testing.T) {
	msg := formatSignal(models.ConsensusSignal{Symbol: "X", Direction: models.Hold})
	assert.NotContains(t, msg, "Stop loss")
	assert.NotContains(t, msg, "Position")
}

func TestFormatSignalEmojiBySide(t *testing.T) {
	buy := formatSignal(models.ConsensusSignal{Symbol: "X", Direction: models.Buy})
	sell := formatSignal(models.ConsensusSignal{Symbol: "X", Direction: models.Sell})
	hold := formatSignal(models.ConsensusSignal{Symbol: "X", Direction: models.Hold})
	assert.Contains(t, buy, "🟢")
	assert.Contains(t, sell, "🔴")
	assert.Contains(t, hold, "🟡")
}
