package models

import (
	"fmt"
	"time"
)

// ErrorKind classifies every non-fatal failure the engine can record.
type ErrorKind string

const (
	ErrProviderTimeout           ErrorKind = "provider_timeout"
	ErrProviderHTTP              ErrorKind = "provider_http_error"
	ErrProviderRateLimited       ErrorKind = "provider_rate_limited"
	ErrProviderMalformedResponse ErrorKind = "provider_malformed_response"
	ErrDataUnavailable           ErrorKind = "data_unavailable"
	ErrInsufficientHistory       ErrorKind = "insufficient_history"
	ErrAlertDeliveryFailure      ErrorKind = "alert_delivery_failure"
)

// BotError is a classified, timestamped failure. Provider and asset errors
// carry their scope so the dashboard error log stays readable.
type BotError struct {
	Kind      ErrorKind `json:"kind"`
	Symbol    string    `json:"symbol,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *BotError) Error() string {
	switch {
	case e.Provider != "":
		return fmt.Sprintf("%s [%s/%s]: %s", e.Kind, e.Symbol, e.Provider, e.Message)
	case e.Symbol != "":
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Symbol, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// NewBotError builds a classified error stamped with the current time.
func NewBotError(kind ErrorKind, symbol, provider, message string) *BotError {
	return &BotError{
		Kind:      kind,
		Symbol:    symbol,
		Provider:  provider,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
