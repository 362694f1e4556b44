package usecase

import (
	"context"
	"sync"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/pkg/logger"
)

// Acquirer fans one asset's fetch out to every configured provider and
// selects the best usable series. All providers are queried concurrently;
// selection follows the asset's priority order, not completion order.
type Acquirer struct {
	providers map[string]domrepo.Provider
	metrics   domrepo.Metrics
	logger    *logger.Logger
}

func NewAcquirer(providers []domrepo.Provider, metrics domrepo.Metrics, log *logger.Logger) *Acquirer {
	byName := make(map[string]domrepo.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Acquirer{providers: byName, metrics: metrics, logger: log}
}

// Acquire returns the selected series plus the outcome of every provider
// attempt. The outcomes slice always has one entry per configured provider,
// in priority order, so partial failure stays observable.
//
// Selection: the highest-priority successful series with at least minPoints
// candles wins. When the winner lacks volume data, volume is backfilled by
// timestamp from a lower-priority series without touching prices.
func (a *Acquirer) Acquire(ctx context.Context, asset models.Asset, minPoints int) ([]models.ProviderOutcome, *models.PriceSeries, *models.BotError) {
	outcomes := make([]models.ProviderOutcome, len(asset.Providers))

	var wg sync.WaitGroup
	for i, name := range asset.Providers {
		provider, ok := a.providers[name]
		if !ok {
			outcomes[i] = models.ProviderOutcome{
				Provider: name,
				Err: models.NewBotError(models.ErrDataUnavailable, asset.Symbol, name,
					"provider not registered"),
			}
			continue
		}

		wg.Add(1)
		go func(i int, provider domrepo.Provider) {
			defer wg.Done()
			start := time.Now()
			series, fetchErr := provider.Fetch(ctx, asset)
			latency := time.Since(start)

			outcomes[i] = models.ProviderOutcome{
				Provider: provider.Name(),
				Series:   series,
				Err:      fetchErr,
				Latency:  latency,
			}
			a.metrics.RecordFetchLatency(provider.Name(), latency.Seconds())
			if fetchErr != nil {
				a.metrics.RecordProviderError(string(fetchErr.Kind))
				a.logger.Warn("provider fetch failed",
					logger.String("symbol", asset.Symbol),
					logger.String("provider", provider.Name()),
					logger.String("kind", string(fetchErr.Kind)),
					logger.String("detail", fetchErr.Message))
			}
		}(i, provider)
	}
	wg.Wait()

	selected := selectSeries(outcomes, minPoints)
	if selected == nil {
		return outcomes, nil, acquisitionFailure(outcomes, asset.Symbol, minPoints)
	}

	if !selected.HasVolume() {
		backfillVolume(selected, outcomes)
	}
	return outcomes, selected, nil
}

func selectSeries(outcomes []models.ProviderOutcome, minPoints int) *models.PriceSeries {
	for _, out := range outcomes {
		if out.OK() && out.Series.Len() >= minPoints {
			return out.Series
		}
	}
	return nil
}

// acquisitionFailure distinguishes "nothing answered" from "answers were too
// short": the latter usually means a misconfigured interval, not an outage.
func acquisitionFailure(outcomes []models.ProviderOutcome, symbol string, minPoints int) *models.BotError {
	for _, out := range outcomes {
		if out.OK() {
			return models.NewBotError(models.ErrInsufficientHistory, symbol, out.Provider,
				"no provider returned enough history")
		}
	}
	return models.NewBotError(models.ErrDataUnavailable, symbol, "",
		"all providers failed")
}

func backfillVolume(dst *models.PriceSeries, outcomes []models.ProviderOutcome) {
	var donor *models.PriceSeries
	for _, out := range outcomes {
		if out.OK() && out.Series != dst && out.Series.HasVolume() {
			donor = out.Series
			break
		}
	}
	if donor == nil {
		return
	}

	byTime := make(map[int64]float64, donor.Len())
	for _, p := range donor.Points {
		byTime[p.Timestamp.Unix()] = p.Volume
	}
	for i := range dst.Points {
		if v, ok := byTime[dst.Points[i].Timestamp.Unix()]; ok {
			dst.Points[i].Volume = v
		}
	}
}
