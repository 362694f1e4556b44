package di

import (
	"strings"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/handler/api"
	internalrepo "SignalForge/internal/repository"
	"SignalForge/internal/service/alert"
	"SignalForge/internal/service/providers"
	"SignalForge/internal/services/indicators"
	"SignalForge/internal/usecase"
	"SignalForge/pkg/cache"
	"SignalForge/pkg/config"
	xhttp "SignalForge/pkg/http"
	"SignalForge/pkg/logger"
	"SignalForge/pkg/metrics"
	"SignalForge/pkg/server"
	"SignalForge/pkg/util"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideTrail attaches the bounded warn/error trail served by /api/logs.
func ProvideTrail(l *logger.Logger, cfg *config.Config) *logger.Trail {
	return l.AddTrail(cfg.Log.TrailCapacity)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCache builds the provider-response cache: memory-only by default,
// layered over Redis when an address is configured.
func ProvideCache(cfg *config.Config, l *logger.Logger) cache.Service {
	if cfg.Cache.RedisAddr == "" {
		return cache.NewMemoryCache()
	}

	host := cfg.Cache.RedisAddr
	port := 6379
	if i := strings.LastIndex(host, ":"); i >= 0 {
		port = util.ParseIntDefault(host[i+1:], 6379)
		host = host[:i]
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Cache.RedisPassword),
		cache.WithRedisDB(cfg.Cache.RedisDB),
	)
	if err != nil {
		l.Warn("redis unavailable, using memory cache only", logger.Error(err))
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(redisCache)
}

// ProvideAssets converts the configured universe into domain assets.
func ProvideAssets(cfg *config.Config) []models.Asset {
	assets := make([]models.Asset, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		assets = append(assets, models.Asset{
			Symbol:          a.Symbol,
			Providers:       a.Providers,
			Indicators:      a.Indicators,
			ProviderSymbols: a.ProviderSymbols,
		})
	}
	return assets
}

// ProvideIndicators builds the indicator registry with configured periods.
func ProvideIndicators(cfg *config.Config) []indicators.Indicator {
	return indicators.Build(indicators.Params{
		RSIPeriod:        cfg.Indicators.RSIPeriod,
		MACDFast:         cfg.Indicators.MACDFast,
		MACDSlow:         cfg.Indicators.MACDSlow,
		MACDSignal:       cfg.Indicators.MACDSignal,
		BollingerPeriod:  cfg.Indicators.BollingerPeriod,
		BollingerStdDev:  cfg.Indicators.BollingerStdDev,
		MAShortPeriod:    cfg.Indicators.MAShortPeriod,
		MALongPeriod:     cfg.Indicators.MALongPeriod,
		VolumeWindow:     cfg.Indicators.VolumeWindow,
		VolumeSpikeRatio: cfg.Indicators.VolumeSpikeRatio,
	})
}

// ProvideProviders builds one gateway per upstream market-data source.
func ProvideProviders(cfg *config.Config, c cache.Service) []domrepo.Provider {
	gatewayOpts := func() []providers.GatewayOption {
		return []providers.GatewayOption{
			providers.WithRetry(cfg.Providers.RetryAttempts, cfg.Providers.RetryBackoff),
			providers.WithTimeout(cfg.Providers.Timeout),
			providers.WithCache(c, cfg.Cache.TTL),
		}
	}
	return []domrepo.Provider{
		providers.NewGateway(
			providers.NewBinance(cfg.Providers.Binance.BaseURL, cfg.Providers.Timeout),
			gatewayOpts()...,
		),
		providers.NewGateway(
			providers.NewCoinGecko(cfg.Providers.CoinGecko.BaseURL, cfg.Providers.CoinGecko.APIKey, cfg.Providers.Timeout),
			gatewayOpts()...,
		),
		providers.NewGateway(
			providers.NewTwelveData(cfg.Providers.TwelveData.BaseURL, cfg.Providers.TwelveData.APIKey, cfg.Providers.Timeout),
			gatewayOpts()...,
		),
	}
}

// ProvideStateStore creates the bounded in-memory state store.
func ProvideStateStore(cfg *config.Config) *internalrepo.StateStore {
	return internalrepo.NewStateStore(cfg.History.SignalCapacity, cfg.History.ErrorCapacity)
}

// ProvideStateReader exposes the store's read-only surface.
func ProvideStateReader(store *internalrepo.StateStore) domrepo.StateReader { return store }

// ProvideStateWriter exposes the store's mutation surface.
func ProvideStateWriter(store *internalrepo.StateStore) domrepo.StateWriter { return store }

// ProvideAlerter creates the Telegram alerter. When disabled it is built
// unconfigured and every send becomes a no-op.
func ProvideAlerter(cfg *config.Config, l *logger.Logger) domrepo.Alerter {
	if !cfg.Alerts.Telegram.Enabled {
		return alert.NewTelegram("", "", l)
	}
	return alert.NewTelegram(cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID, l)
}

// ProvidePublisher creates the Kafka signal firehose, or a no-op when
// disabled.
func ProvidePublisher(cfg *config.Config) (domrepo.SignalPublisher, error) {
	if !cfg.Alerts.Kafka.Enabled {
		return internalrepo.NopSignalPublisher{}, nil
	}
	return internalrepo.NewKafkaSignalPublisher(cfg.Alerts.Kafka.Brokers, cfg.Alerts.Kafka.Topic)
}

// ProvideAcquirer creates the multi-provider acquisition coordinator.
func ProvideAcquirer(provs []domrepo.Provider, m domrepo.Metrics, l *logger.Logger) *usecase.Acquirer {
	return usecase.NewAcquirer(provs, m, l)
}

// ProvideConsensus creates the consensus aggregator.
func ProvideConsensus(cfg *config.Config) *usecase.Consensus {
	return usecase.NewConsensus(cfg.Consensus.Threshold, cfg.Consensus.Weights)
}

// ProvideOrchestrator creates the cycle orchestrator.
func ProvideOrchestrator(
	cfg *config.Config,
	assets []models.Asset,
	set []indicators.Indicator,
	acquirer *usecase.Acquirer,
	consensus *usecase.Consensus,
	writer domrepo.StateWriter,
	alerter domrepo.Alerter,
	publisher domrepo.SignalPublisher,
	m domrepo.Metrics,
	l *logger.Logger,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(assets, set, acquirer, consensus, writer, alerter, publisher, m, l,
		cfg.Schedule.AssetBudget)
}

// ProvideScheduler creates the interval scheduler.
func ProvideScheduler(orch *usecase.Orchestrator, writer domrepo.StateWriter, cfg *config.Config, l *logger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(orch, writer, cfg.Schedule.Interval, l)
}

// ProvideHandler creates the dashboard/control HTTP handler.
func ProvideHandler(
	l *logger.Logger,
	reader domrepo.StateReader,
	scheduler *usecase.Scheduler,
	alerter domrepo.Alerter,
	trail *logger.Trail,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewBotEchoHandler(l, reader, scheduler, alerter, trail, cfg)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	scheduler *usecase.Scheduler,
	handler xhttp.Handler,
	publisher domrepo.SignalPublisher,
	l *logger.Logger,
) *server.App {
	return server.New(cfg, scheduler, handler, publisher, l)
}
