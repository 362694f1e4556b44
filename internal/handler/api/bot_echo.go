// Package api exposes the bot's dashboard and control endpoints over Echo.
package api

import (
	"time"

	models "SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/usecase"
	"SignalForge/pkg/config"
	xhttp "SignalForge/pkg/http"
	xlogger "SignalForge/pkg/logger"
	"SignalForge/pkg/util"

	"github.com/labstack/echo/v4"
)

// BotEchoHandler implements Echo-based HTTP handlers over the bot's state
// snapshot and lifecycle controls.
type BotEchoHandler struct {
	logger    *xlogger.Logger
	state     domrepo.StateReader
	scheduler *usecase.Scheduler
	alerter   domrepo.Alerter
	trail     *xlogger.Trail
	cfg       *config.Config
}

func NewBotEchoHandler(
	logger *xlogger.Logger,
	state domrepo.StateReader,
	scheduler *usecase.Scheduler,
	alerter domrepo.Alerter,
	trail *xlogger.Trail,
	cfg *config.Config,
) *BotEchoHandler {
	return &BotEchoHandler{
		logger:    logger,
		state:     state,
		scheduler: scheduler,
		alerter:   alerter,
		trail:     trail,
		cfg:       cfg,
	}
}

func (h *BotEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/signals/current", h.CurrentSignals)
	g.GET("/signals/history", h.SignalHistory)
	g.GET("/errors", h.Errors)
	g.GET("/config", h.ConfigView)
	g.GET("/logs", h.Logs)

	b := g.Group("/bot")
	b.POST("/start", h.Start)
	b.POST("/stop", h.Stop)
	b.POST("/run-once", h.RunOnce)
	b.POST("/test-alert", h.TestAlert)
}

type statusResponse struct {
	Running       bool                `json:"running"`
	UptimeSeconds float64             `json:"uptime_seconds"`
	StartedAt     *time.Time          `json:"started_at,omitempty"`
	LastCycle     *models.CycleRecord `json:"last_cycle,omitempty"`
	Counters      models.Counters     `json:"counters"`
	AvgConfidence float64             `json:"avg_confidence"`
}

func (h *BotEchoHandler) Status(c echo.Context) error {
	resp := statusResponse{
		Running:  h.state.Running(),
		Counters: h.state.Counters(),
	}
	resp.AvgConfidence = resp.Counters.AvgConfidence()
	if at, ok := h.state.StartedAt(); ok {
		resp.StartedAt = &at
		if resp.Running {
			resp.UptimeSeconds = time.Since(at).Seconds()
		}
	}
	if rec, ok := h.state.LastCycle(); ok {
		resp.LastCycle = &rec
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *BotEchoHandler) CurrentSignals(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.state.CurrentSignals())
}

func (h *BotEchoHandler) SignalHistory(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	since := util.ParseTimeDefault(req.Since, time.Time{})

	rows := h.state.History(req.Limit, since)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *BotEchoHandler) Errors(c echo.Context) error {
	rows := h.state.Errors()
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *BotEchoHandler) Logs(c echo.Context) error {
	req := &models.LogsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entries := h.trail.Entries()
	if len(entries) > req.Limit {
		entries = entries[len(entries)-req.Limit:]
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

// configView is the sanitized configuration snapshot: periods, thresholds
// and the asset universe, never tokens or keys.
type configView struct {
	Environment     string             `json:"environment"`
	IntervalSeconds float64            `json:"interval_seconds"`
	Threshold       float64            `json:"threshold"`
	Assets          []models.Asset     `json:"assets"`
	Indicators      interface{}        `json:"indicators"`
	Weights         map[string]float64 `json:"weights,omitempty"`
	TelegramEnabled bool               `json:"telegram_enabled"`
	KafkaEnabled    bool               `json:"kafka_enabled"`
}

func (h *BotEchoHandler) ConfigView(c echo.Context) error {
	assets := make([]models.Asset, 0, len(h.cfg.Assets))
	for _, a := range h.cfg.Assets {
		assets = append(assets, models.Asset{
			Symbol:          a.Symbol,
			Providers:       a.Providers,
			Indicators:      a.Indicators,
			ProviderSymbols: a.ProviderSymbols,
		})
	}
	return xhttp.SuccessResponse(c, configView{
		Environment:     h.cfg.Environment,
		IntervalSeconds: h.cfg.Schedule.Interval.Seconds(),
		Threshold:       h.cfg.Consensus.Threshold,
		Assets:          assets,
		Indicators:      h.cfg.Indicators,
		Weights:         h.cfg.Consensus.Weights,
		TelegramEnabled: h.cfg.Alerts.Telegram.Enabled,
		KafkaEnabled:    h.cfg.Alerts.Kafka.Enabled,
	})
}

type controlResponse struct {
	Running bool   `json:"running"`
	Detail  string `json:"detail,omitempty"`
}

func (h *BotEchoHandler) Start(c echo.Context) error {
	h.scheduler.Start()
	return xhttp.SuccessResponse(c, controlResponse{Running: true})
}

func (h *BotEchoHandler) Stop(c echo.Context) error {
	h.scheduler.Stop()
	return xhttp.SuccessResponse(c, controlResponse{Running: false})
}

func (h *BotEchoHandler) RunOnce(c echo.Context) error {
	switch err := h.scheduler.TriggerOnce(); err {
	case nil:
		return xhttp.SuccessResponse(c, controlResponse{
			Running: h.scheduler.Running(),
			Detail:  "cycle completed",
		})
	case usecase.ErrCycleInFlight:
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_CYCLE_IN_FLIGHT", "", err.Error(), 409))
	case usecase.ErrSchedulerStopped:
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_SCHEDULER_STOPPED", "", err.Error(), 409))
	default:
		h.logger.Error("run-once failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}

func (h *BotEchoHandler) TestAlert(c echo.Context) error {
	if !h.alerter.Configured() {
		return xhttp.BadRequestResponse(c, "alerter is not configured")
	}
	if err := h.alerter.SendTest(c.Request().Context()); err != nil {
		h.logger.Error("test alert failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("test alert delivery failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, "test alert sent")
}
