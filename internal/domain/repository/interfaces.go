package repository

import (
	"context"
	"time"

	"SignalForge/internal/domain/models"
)

// Provider fetches a recent price series for one asset from one external
// market-data source. Implementations classify their own failures; Fetch
// returns a *models.BotError for anything that should be recorded.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, asset models.Asset) (*models.PriceSeries, *models.BotError)
}

// Alerter delivers actionable consensus signals to a notification channel.
// Delivery failure is non-fatal and never aborts a cycle.
type Alerter interface {
	SendSignal(ctx context.Context, sig models.ConsensusSignal) error
	SendTest(ctx context.Context) error
	Configured() bool
}

// SignalPublisher streams every committed consensus signal to an external
// sink (e.g. a Kafka topic consumed by a standalone alert service).
type SignalPublisher interface {
	Publish(ctx context.Context, sig models.ConsensusSignal) error
	Close() error
}

// StateReader is the read-only snapshot surface consumed by the dashboard.
type StateReader interface {
	Running() bool
	LastCycle() (models.CycleRecord, bool)
	CurrentSignals() map[string]models.ConsensusSignal
	History(limit int, since time.Time) []models.ConsensusSignal
	Errors() []models.BotError
	Counters() models.Counters
	StartedAt() (time.Time, bool)
}

// StateWriter is the single-writer mutation surface. CommitCycle applies the
// whole cycle result as one atomic step.
type StateWriter interface {
	SetRunning(running bool)
	CommitCycle(rec models.CycleRecord, errs []models.BotError)
	RecordError(err *models.BotError)
}

// Metrics records operational measurements. Implemented by pkg/metrics with
// Prometheus; a no-op stand-in is used in tests.
type Metrics interface {
	RecordCycle(seconds float64, success bool)
	RecordProviderError(kind string)
	RecordFetchLatency(provider string, seconds float64)
	RecordLastPrice(symbol string, price float64)
	RecordSignal(direction string)
}
