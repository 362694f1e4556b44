// Package alert delivers consensus signals to notification channels.
package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
	xhttp "SignalForge/pkg/http"
	"SignalForge/pkg/logger"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends signal alerts through the Bot API. An unconfigured
// instance (empty token or chat ID) is valid and silently skips sends,
// so callers never need a nil check.
type Telegram struct {
	botToken string
	chatID   string
	client   *xhttp.Client
	logger   *logger.Logger

	attempts int
	backoff  time.Duration
}

func NewTelegram(botToken, chatID string, log *logger.Logger) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		client:   xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		logger:   log,
		attempts: 2,
		backoff:  time.Second,
	}
}

func (t *Telegram) Configured() bool {
	return t.botToken != "" && t.chatID != ""
}

func (t *Telegram) SendSignal(ctx context.Context, sig models.ConsensusSignal) error {
	if !t.Configured() {
		return nil
	}
	return t.send(ctx, formatSignal(sig))
}

func (t *Telegram) SendTest(ctx context.Context) error {
	if !t.Configured() {
		return fmt.Errorf("telegram alerter is not configured")
	}
	msg := fmt.Sprintf("✅ *Test alert*\nBot is reachable.\n_%s_",
		time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	return t.send(ctx, msg)
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, t.botToken)
	req := &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    url,
		Body: sendMessageRequest{
			ChatID:    t.chatID,
			Text:      text,
			ParseMode: "Markdown",
		},
	}

	var lastErr error
	for attempt := 1; attempt <= t.attempts; attempt++ {
		var resp sendMessageResponse
		err := t.client.SendAndParse(ctx, req, &resp)
		if err == nil && resp.OK {
			return nil
		}
		if err == nil {
			err = fmt.Errorf("telegram rejected message: %s", resp.Description)
		}
		lastErr = err
		t.logger.Warn("telegram send failed",
			logger.Int("attempt", attempt),
			logger.Error(err))

		if attempt == t.attempts {
			break
		}
		select {
		case <-time.After(t.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func formatSignal(sig models.ConsensusSignal) string {
	emoji := "🟡"
	switch sig.Direction {
	case models.Buy:
		emoji = "🟢"
	case models.Sell:
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s %s*\n", emoji, sig.Symbol, sig.Direction)
	fmt.Fprintf(&b, "Price: `%.4f`\n", sig.Price)
	fmt.Fprintf(&b, "Confidence: `%.1f%%`\n", sig.Confidence)
	if sig.Direction != models.Hold {
		fmt.Fprintf(&b, "Stop loss: `%.1f%%` | Take profit: `%.1f%%`\n",
			sig.Risk.StopLossPct*100, sig.Risk.TakeProfitPct*100)
		fmt.Fprintf(&b, "Position: `%s` (R/R %.1f)\n",
			sig.Risk.PositionSize, sig.Risk.RiskReward)
	}
	if len(sig.Votes) > 0 {
		b.WriteString("\n*Votes*\n")
		for _, v := range sig.Votes {
			fmt.Fprintf(&b, "• %s: %s (%.0f%%)\n", v.Source, v.Direction, v.Confidence)
		}
	}
	fmt.Fprintf(&b, "\n_%s_", sig.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}

var _ repository.Alerter = (*Telegram)(nil)
