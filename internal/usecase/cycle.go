package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/services/indicators"
	"SignalForge/pkg/logger"
)

// Orchestrator runs one full analysis cycle: acquire, compute, vote, commit,
// dispatch. Assets are processed concurrently but each asset is its own
// failure boundary; one asset's outage never blocks the rest.
type Orchestrator struct {
	assets     []models.Asset
	indicators []indicators.Indicator

	acquirer  *Acquirer
	consensus *Consensus

	store     domrepo.StateWriter
	alerter   domrepo.Alerter
	publisher domrepo.SignalPublisher
	metrics   domrepo.Metrics
	logger    *logger.Logger

	assetBudget time.Duration
}

func NewOrchestrator(
	assets []models.Asset,
	set []indicators.Indicator,
	acquirer *Acquirer,
	consensus *Consensus,
	store domrepo.StateWriter,
	alerter domrepo.Alerter,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	assetBudget time.Duration,
) *Orchestrator {
	if assetBudget <= 0 {
		assetBudget = 45 * time.Second
	}
	return &Orchestrator{
		assets:      assets,
		indicators:  set,
		acquirer:    acquirer,
		consensus:   consensus,
		store:       store,
		alerter:     alerter,
		publisher:   publisher,
		metrics:     metrics,
		logger:      log,
		assetBudget: assetBudget,
	}
}

// RunCycle executes one pass over the whole universe and commits the result
// as a single atomic state update before dispatching alerts.
func (o *Orchestrator) RunCycle(ctx context.Context) models.CycleRecord {
	start := time.Now()
	o.logger.Info("cycle started", logger.Int("assets", len(o.assets)))

	outcomes := make([]models.AssetOutcome, len(o.assets))
	var g errgroup.Group
	g.SetLimit(4)
	for i, asset := range o.assets {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("asset %s: panic: %v", asset.Symbol, r)
				}
			}()
			assetCtx, cancel := context.WithTimeout(ctx, o.assetBudget)
			defer cancel()
			outcomes[i] = o.analyzeAsset(assetCtx, asset)
			return nil
		})
	}
	faultErr := g.Wait()
	if faultErr != nil {
		o.logger.Error("cycle internal fault", logger.Error(faultErr))
	}

	rec := models.CycleRecord{
		StartedAt: start.UTC(),
		Duration:  time.Since(start),
		Outcomes:  outcomes,
		// Per-asset failures are handled inside their own boundary and are
		// recorded, not escalated; only a fault escaping a boundary fails
		// the cycle.
		Success: faultErr == nil,
	}
	var errs []models.BotError
	for _, out := range outcomes {
		if out.Err != nil {
			errs = append(errs, *out.Err)
		}
	}

	o.store.CommitCycle(rec, errs)
	o.metrics.RecordCycle(rec.Duration.Seconds(), rec.Success)
	for _, out := range outcomes {
		if out.Signal != nil {
			o.metrics.RecordLastPrice(out.Symbol, out.Signal.Price)
			o.metrics.RecordSignal(string(out.Signal.Direction))
		}
	}

	o.dispatch(ctx, outcomes)

	o.logger.Info("cycle finished",
		logger.Duration("duration", rec.Duration),
		logger.Bool("success", rec.Success))
	return rec
}

func (o *Orchestrator) analyzeAsset(ctx context.Context, asset models.Asset) models.AssetOutcome {
	set := indicators.ForAsset(o.indicators, asset.Indicators)
	minPoints := indicators.MaxMinPoints(set)

	_, series, acqErr := o.acquirer.Acquire(ctx, asset, minPoints)
	if acqErr != nil {
		return models.AssetOutcome{Symbol: asset.Symbol, Err: acqErr}
	}

	votes := make([]models.IndicatorSignal, 0, len(set))
	for _, ind := range set {
		if sig, ok := ind.Compute(series); ok {
			votes = append(votes, sig)
		}
	}
	if len(votes) == 0 {
		return models.AssetOutcome{
			Symbol: asset.Symbol,
			Err: models.NewBotError(models.ErrInsufficientHistory, asset.Symbol, series.Source,
				"no indicator had enough history"),
		}
	}

	sig := o.consensus.Aggregate(asset.Symbol, series.LastClose(), votes, time.Now())
	o.logger.Info("asset analyzed",
		logger.String("symbol", asset.Symbol),
		logger.String("direction", string(sig.Direction)),
		logger.Float64("confidence", sig.Confidence),
		logger.String("source", series.Source))
	return models.AssetOutcome{Symbol: asset.Symbol, Signal: &sig}
}

// dispatch runs after commit so a slow or failing alert channel can never
// hold state inconsistent. Alert failures are recorded, not propagated.
func (o *Orchestrator) dispatch(ctx context.Context, outcomes []models.AssetOutcome) {
	for _, out := range outcomes {
		if out.Signal == nil {
			continue
		}
		sig := *out.Signal

		if err := o.publisher.Publish(ctx, sig); err != nil {
			o.logger.Warn("signal publish failed",
				logger.String("symbol", sig.Symbol),
				logger.Error(err))
		}

		if !sig.Actionable(o.consensus.Threshold()) {
			continue
		}
		if err := o.alerter.SendSignal(ctx, sig); err != nil {
			botErr := models.NewBotError(models.ErrAlertDeliveryFailure, sig.Symbol, "telegram", err.Error())
			o.store.RecordError(botErr)
			o.logger.Error("alert delivery failed",
				logger.String("symbol", sig.Symbol),
				logger.Error(err))
		}
	}
}
