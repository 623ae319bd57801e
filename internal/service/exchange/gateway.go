package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"MarketPulse/internal/domain/errs"
	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://api.binance.com"
	DefaultDepthLimit = 50
	MinDepthLimit     = 5
	MaxDepthLimit     = 500

	DefaultCandleLimit = 100
	MaxCandleLimit     = 1000
)

// Option configures Gateway.
type Option func(*Gateway)

// WithBaseURL sets the REST endpoint (scheme + host).
func WithBaseURL(u string) Option {
	return func(g *Gateway) { g.baseURL = u }
}

// WithTimeout bounds every exchange call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithDepthLimit sets the order book depth used when callers pass limit <= 0.
func WithDepthLimit(n int) Option {
	return func(g *Gateway) { g.depthLimit = n }
}

// WithRateLimit paces outbound requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) {
		if rps <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMetrics(m drepo.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(g *Gateway) { g.l = l }
}

// Gateway implements MarketGateway against a Binance-compatible REST API.
// It never retries.
type Gateway struct {
	baseURL    string
	timeout    time.Duration
	depthLimit int
	client     *xhttp.Client
	limiter    *rate.Limiter
	metrics    drepo.Metrics
	l          *applogger.Logger
}

func New(opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:    DefaultBaseURL,
		timeout:    8 * time.Second,
		depthLimit: DefaultDepthLimit,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
	for _, opt := range opts {
		opt(g)
	}
	// the per-call context deadline is authoritative; the client timeout is a backstop
	g.client = xhttp.NewClient(xhttp.WithTimeout(2 * g.timeout))
	return g
}

type tickerPayload struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	CloseTime          int64  `json:"closeTime"`
}

func (g *Gateway) GetTickerSnapshot(ctx context.Context, symbol string) (models.TickerSnapshot, error) {
	symbol = util.NormalizeSymbol(symbol)
	var p tickerPayload
	if err := g.getJSON(ctx, "ticker", "/api/v3/ticker/24hr", map[string][]string{"symbol": {symbol}}, &p); err != nil {
		return models.TickerSnapshot{}, err
	}

	snap := models.TickerSnapshot{Symbol: symbol, CloseTime: util.FromUnixMilli(p.CloseTime)}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"lastPrice", p.LastPrice, &snap.LastPrice},
		{"priceChangePercent", p.PriceChangePercent, &snap.ChangePercent},
		{"highPrice", p.HighPrice, &snap.High},
		{"lowPrice", p.LowPrice, &snap.Low},
		{"volume", p.Volume, &snap.Volume},
		{"quoteVolume", p.QuoteVolume, &snap.QuoteVolume},
	}
	for _, f := range fields {
		v, err := parseNumber(f.name, f.raw)
		if err != nil {
			return models.TickerSnapshot{}, g.fail("ticker", err)
		}
		*f.dst = v
	}
	if g.metrics != nil {
		g.metrics.RecordLastPrice(symbol, snap.LastPrice)
	}
	return snap, nil
}

// Levels arrive as [price, qty]; either element may be a JSON string or number.
type depthPayload struct {
	Bids [][]json.RawMessage `json:"bids"`
	Asks [][]json.RawMessage `json:"asks"`
}

func (g *Gateway) GetOrderBook(ctx context.Context, symbol string, limit int) (models.OrderBook, error) {
	symbol = util.NormalizeSymbol(symbol)
	if limit <= 0 {
		limit = g.depthLimit
	}
	limit = util.Clamp(limit, MinDepthLimit, MaxDepthLimit)

	var p depthPayload
	q := map[string][]string{"symbol": {symbol}, "limit": {strconv.Itoa(limit)}}
	if err := g.getJSON(ctx, "depth", "/api/v3/depth", q, &p); err != nil {
		return models.OrderBook{}, err
	}

	bids, err := cumulativeLevels("bids", p.Bids)
	if err != nil {
		return models.OrderBook{}, g.fail("depth", err)
	}
	asks, err := cumulativeLevels("asks", p.Asks)
	if err != nil {
		return models.OrderBook{}, g.fail("depth", err)
	}
	return models.OrderBook{
		Symbol:      symbol,
		LastUpdated: time.Now().UTC(),
		Bids:        bids,
		Asks:        asks,
	}, nil
}

// cumulativeLevels keeps upstream order and accumulates quantity per side.
func cumulativeLevels(side string, raw [][]json.RawMessage) ([]models.OrderBookLevel, error) {
	out := make([]models.OrderBookLevel, 0, len(raw))
	running := 0.0
	for i, lvl := range raw {
		if len(lvl) < 2 {
			return nil, &errs.ParseError{Field: fmt.Sprintf("%s[%d]", side, i), Value: fmt.Sprintf("%d fields", len(lvl))}
		}
		price, err := parseRawNumber(fmt.Sprintf("%s[%d].price", side, i), lvl[0])
		if err != nil {
			return nil, err
		}
		qty, err := parseRawNumber(fmt.Sprintf("%s[%d].quantity", side, i), lvl[1])
		if err != nil {
			return nil, err
		}
		running += qty
		out = append(out, models.OrderBookLevel{Price: price, Quantity: qty, Cumulative: running})
	}
	return out, nil
}

func (g *Gateway) GetCandles(ctx context.Context, symbol string, interval drepo.Interval, limit int) (models.CandleSeries, error) {
	symbol = util.NormalizeSymbol(symbol)
	if limit <= 0 {
		limit = DefaultCandleLimit
	}
	limit = util.Clamp(limit, 1, MaxCandleLimit)
	q := map[string][]string{
		"symbol":   {symbol},
		"interval": {interval.String()},
		"limit":    {strconv.Itoa(limit)},
	}
	var rows [][]json.RawMessage
	if err := g.getJSON(ctx, "klines", "/api/v3/klines", q, &rows); err != nil {
		return nil, err
	}

	series := make(models.CandleSeries, 0, len(rows))
	for i, row := range rows {
		c, err := parseKline(i, row)
		if err != nil {
			return nil, g.fail("klines", err)
		}
		series = append(series, c)
	}
	return series, nil
}

// parseKline reads index 0 (open time, ms) and index 4 (close).
func parseKline(i int, row []json.RawMessage) (models.Candle, error) {
	if len(row) < 5 {
		return models.Candle{}, &errs.ParseError{Field: fmt.Sprintf("klines[%d]", i), Value: fmt.Sprintf("%d fields", len(row))}
	}
	openMs, err := strconv.ParseInt(string(row[0]), 10, 64)
	if err != nil {
		return models.Candle{}, &errs.ParseError{Field: fmt.Sprintf("klines[%d].openTime", i), Value: string(row[0]), Err: err}
	}
	closePrice, err := parseRawNumber(fmt.Sprintf("klines[%d].close", i), row[4])
	if err != nil {
		return models.Candle{}, err
	}
	return models.Candle{OpenTime: util.FromUnixMilli(openMs), Close: closePrice}, nil
}

func (g *Gateway) GetLatencyProbe(ctx context.Context) (models.LatencyProbe, error) {
	var p struct {
		ServerTime int64 `json:"serverTime"`
	}
	start := time.Now()
	if err := g.getJSON(ctx, "time", "/api/v3/time", nil, &p); err != nil {
		return models.LatencyProbe{}, err
	}
	observed := time.Now()
	latency := observed.Sub(start)
	return models.LatencyProbe{
		ServerTime: util.FromUnixMilli(p.ServerTime),
		ObservedAt: observed.UTC(),
		Latency:    latency,
		LatencyMs:  latency.Milliseconds(),
	}, nil
}

// getJSON performs one paced, time-bounded GET and decodes the body into dest.
func (g *Gateway) getJSON(ctx context.Context, op, path string, query map[string][]string, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return g.fail(op, fmt.Errorf("exchange %s: rate wait: %w", op, err))
		}
	}

	start := time.Now()
	var body []byte
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         g.baseURL + path,
		QueryParams: query,
	}, &body)
	if g.metrics != nil {
		g.metrics.RecordLatency("exchange_"+op, time.Since(start).Seconds())
	}
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return g.fail(op, &errs.UpstreamError{Op: op, Status: se.Status, Body: se.Body})
		}
		return g.fail(op, fmt.Errorf("exchange %s: %w", op, err))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return g.fail(op, &errs.ParseError{Field: op + ".body", Value: truncate(string(body), 256), Err: err})
	}
	return nil
}

func (g *Gateway) fail(op string, err error) error {
	if g.metrics != nil {
		g.metrics.RecordError("upstream_" + op)
	}
	if g.l != nil {
		g.l.Warn("exchange.call failed", applogger.String("op", op), applogger.Error(err))
	}
	return err
}

func parseNumber(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &errs.ParseError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

// parseRawNumber accepts a quoted decimal string or a bare JSON number.
func parseRawNumber(field string, raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(bytes.TrimSpace(raw))
	}
	return parseNumber(field, s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ drepo.MarketGateway = (*Gateway)(nil)
