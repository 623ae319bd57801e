package api

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/metrics"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"
)

// Version is reported by /health; overridden at build time with -ldflags.
var Version = "dev"

// MarketEchoHandler serves the market, prediction and insight API under /api/v1.
type MarketEchoHandler struct {
	logger     *xlogger.Logger
	market     *usecase.MarketService
	indicators *usecase.IndicatorService
	prediction *usecase.PredictionService
	insight    *usecase.InsightService
	metrics    *metrics.Endpoint
	limiter    *ratelimit.Limiter
	extra      []xhttp.Handler
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	market *usecase.MarketService,
	indicators *usecase.IndicatorService,
	prediction *usecase.PredictionService,
	insight *usecase.InsightService,
	m *metrics.Endpoint,
	limiter *ratelimit.Limiter,
) *MarketEchoHandler {
	return &MarketEchoHandler{
		logger:     logger,
		market:     market,
		indicators: indicators,
		prediction: prediction,
		insight:    insight,
		metrics:    m,
		limiter:    limiter,
	}
}

// Mount registers additional handlers (e.g. stream feeds) alongside the REST routes.
func (h *MarketEchoHandler) Mount(hs ...xhttp.Handler) { h.extra = append(h.extra, hs...) }

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/v1")
	if h.limiter != nil {
		g.Use(RateLimit(h.limiter, h.logger))
	}
	g.GET("/health", h.Health)
	g.GET("/markets/spot/:symbol/summary", h.Summary)
	g.GET("/markets/spot/:symbol/orderbook", h.OrderBook)
	g.GET("/markets/spot/:symbol/candles", h.Candles)
	g.GET("/markets/spot/:symbol/indicators", h.Indicators)
	g.GET("/markets/latency/heartbeat", h.Heartbeat)
	g.GET("/prediction/:symbol", h.Prediction)
	g.POST("/ai/insight", h.Insight)

	for _, x := range h.extra {
		x.RegisterRoutes(e)
	}
}

func (h *MarketEchoHandler) Health(c echo.Context) error {
	host, _ := os.Hostname()
	return xhttp.SuccessResponse(c, models.Health{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Hostname:  host,
		Version:   Version,
	})
}

func (h *MarketEchoHandler) Summary(c echo.Context) error {
	start := time.Now()
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.GetSummary(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "summary", start, err)
	}
	h.metrics.Observe("summary", start, "")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) OrderBook(c echo.Context) error {
	start := time.Now()
	req := &models.OrderBookRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.GetOrderBook(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		return h.fail(c, "orderbook", start, err)
	}
	h.metrics.Observe("orderbook", start, "")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Candles(c echo.Context) error {
	start := time.Now()
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.market.GetCandles(c.Request().Context(), req.Symbol, req.Interval, req.Limit)
	if err != nil {
		return h.fail(c, "candles", start, err)
	}
	h.metrics.Observe("candles", start, "")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Indicators(c echo.Context) error {
	start := time.Now()
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.indicators.GetIndicators(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "indicators", start, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	h.metrics.Observe("indicators", start, "")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Heartbeat(c echo.Context) error {
	start := time.Now()
	res, err := h.market.Heartbeat(c.Request().Context())
	if err != nil {
		return h.fail(c, "heartbeat", start, err)
	}
	h.metrics.Observe("heartbeat", start, "")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Prediction(c echo.Context) error {
	start := time.Now()
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.prediction.GetPrediction(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "prediction", start, err)
	}
	h.metrics.Observe("prediction", start, "")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Insight(c echo.Context) error {
	start := time.Now()
	req := &models.InsightRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.insight.Generate(c.Request().Context(), req.Prompt, req.Context)
	if err != nil {
		return h.fail(c, "insight", start, err)
	}
	h.metrics.Observe("insight", start, "")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) fail(c echo.Context, endpoint string, start time.Time, err error) error {
	appErr := toAppError(err)
	h.metrics.Observe(endpoint, start, appErr.Code)
	if appErr.Status >= 500 {
		h.logger.Error(endpoint+" usecase error", xlogger.String("code", appErr.Code), xlogger.Error(err))
	} else {
		h.logger.Warn(endpoint+" usecase error", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

var _ xhttp.Handler = (*MarketEchoHandler)(nil)
