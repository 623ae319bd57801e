package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"MarketPulse/internal/usecase"
	xlogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// Frame is one message pushed to a stream subscriber.
type Frame struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
	TS    time.Time   `json:"ts"`
}

// Options tune the push cadence.
type Options struct {
	LatencyInterval   time.Duration
	IndicatorInterval time.Duration
	WriteTimeout      time.Duration
	AllowedOrigins    []string
}

// StreamHandler pushes heartbeat reports and indicator snapshots over websockets.
// Each connection polls the usecase layer on its own ticker; the indicator
// cache absorbs concurrent subscribers of the same symbol.
type StreamHandler struct {
	market     *usecase.MarketService
	indicators *usecase.IndicatorService
	opts       Options
	log        *xlogger.Logger
	upgrader   websocket.Upgrader
}

func NewStreamHandler(market *usecase.MarketService, indicators *usecase.IndicatorService, opts Options, log *xlogger.Logger) *StreamHandler {
	if opts.LatencyInterval <= 0 {
		opts.LatencyInterval = 5 * time.Second
	}
	if opts.IndicatorInterval <= 0 {
		opts.IndicatorInterval = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	h := &StreamHandler{market: market, indicators: indicators, opts: opts, log: log}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/stream")
	g.GET("/latency", h.Latency)
	g.GET("/indicators/:symbol", h.Indicators)
}

func (h *StreamHandler) Latency(c echo.Context) error {
	return h.serve(c, "latency", h.opts.LatencyInterval, func(ctx context.Context) (interface{}, error) {
		return h.market.Heartbeat(ctx)
	})
}

func (h *StreamHandler) Indicators(c echo.Context) error {
	symbol := util.NormalizeSymbol(c.Param("symbol"))
	return h.serve(c, "indicators", h.opts.IndicatorInterval, func(ctx context.Context) (interface{}, error) {
		snap, err := h.indicators.GetIndicators(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return snap, nil
	})
}

func (h *StreamHandler) serve(c echo.Context, kind string, every time.Duration, next func(context.Context) (interface{}, error)) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("stream.upgrade failed", xlogger.String("kind", kind), xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Reader exists only to observe close frames and dead peers.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.log.Debug("stream.open", xlogger.String("kind", kind), xlogger.String("remote", c.RealIP()))
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, conn, kind, every, next); err != nil {
			h.log.Debug("stream.closed", xlogger.String("kind", kind), xlogger.Error(err))
			return nil
		}
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.opts.WriteTimeout))
			return nil
		case <-ticker.C:
		}
	}
}

// push fetches one value and writes it; only write failures are returned.
func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn, kind string, every time.Duration, next func(context.Context) (interface{}, error)) error {
	fctx, cancel := context.WithTimeout(ctx, every)
	defer cancel()

	frame := Frame{Type: kind, TS: time.Now().UTC()}
	data, err := next(fctx)
	if err != nil {
		frame.Type = "error"
		frame.Error = err.Error()
	} else {
		frame.Data = data
	}

	_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
	return conn.WriteJSON(frame)
}

func (h *StreamHandler) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
