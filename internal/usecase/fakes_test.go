package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
)

type fakeGateway struct {
	mu sync.Mutex

	ticker    models.TickerSnapshot
	tickerErr error
	failSym   string
	candles   models.CandleSeries
	candleErr error
	candleLag time.Duration
	book      models.OrderBook
	probe     models.LatencyProbe

	tickerCalls atomic.Int32
	candleCalls atomic.Int32
	lastLimit   int
	lastIv      drepo.Interval
}

func (f *fakeGateway) GetTickerSnapshot(ctx context.Context, symbol string) (models.TickerSnapshot, error) {
	f.tickerCalls.Add(1)
	if f.tickerErr != nil {
		return models.TickerSnapshot{}, f.tickerErr
	}
	if f.failSym != "" && symbol == f.failSym {
		return models.TickerSnapshot{}, errors.New("unknown symbol " + symbol)
	}
	t := f.ticker
	t.Symbol = symbol
	return t, nil
}

func (f *fakeGateway) GetOrderBook(ctx context.Context, symbol string, limit int) (models.OrderBook, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	b := f.book
	b.Symbol = symbol
	return b, nil
}

func (f *fakeGateway) GetCandles(ctx context.Context, symbol string, iv drepo.Interval, limit int) (models.CandleSeries, error) {
	f.candleCalls.Add(1)
	f.mu.Lock()
	f.lastLimit = limit
	f.lastIv = iv
	f.mu.Unlock()
	if f.candleLag > 0 {
		select {
		case <-time.After(f.candleLag):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.candleErr != nil {
		return nil, f.candleErr
	}
	return f.candles, nil
}

func (f *fakeGateway) GetLatencyProbe(ctx context.Context) (models.LatencyProbe, error) {
	return f.probe, nil
}

// staircase returns n hourly candles closing at 1..n.
func staircase(n int) models.CandleSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.CandleSeries, n)
	for i := range out {
		out[i] = models.Candle{OpenTime: start.Add(time.Duration(i) * time.Hour), Close: float64(i + 1)}
	}
	return out
}

type fakeMetrics struct {
	mu        sync.Mutex
	hits      map[string]int
	misses    map[string]int
	stages    map[string]int
	fallbacks map[string]int
	errors    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		hits:      map[string]int{},
		misses:    map[string]int{},
		stages:    map[string]int{},
		fallbacks: map[string]int{},
		errors:    map[string]int{},
	}
}

func (m *fakeMetrics) RecordMessageSent(string, string)   {}
func (m *fakeMetrics) RecordLastPrice(string, float64)    {}
func (m *fakeMetrics) RecordLatency(string, float64)      {}
func (m *fakeMetrics) RecordError(kind string)            { m.inc(m.errors, kind) }
func (m *fakeMetrics) RecordStage(stage string, _ float64) { m.inc(m.stages, stage) }
func (m *fakeMetrics) RecordSentimentFallback(r string)   { m.inc(m.fallbacks, r) }
func (m *fakeMetrics) RecordCacheLookup(ds string, hit bool) {
	if hit {
		m.inc(m.hits, ds)
		return
	}
	m.inc(m.misses, ds)
}

func (m *fakeMetrics) inc(set map[string]int, k string) {
	m.mu.Lock()
	set[k]++
	m.mu.Unlock()
}

func (m *fakeMetrics) count(set map[string]int, k string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return set[k]
}

type fakePublisher struct {
	mu          sync.Mutex
	predictions []models.PredictionResult
	indicators  []models.IndicatorSnapshot
	err         error
}

func (p *fakePublisher) PublishPrediction(ctx context.Context, r models.PredictionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.predictions = append(p.predictions, r)
	return p.err
}

func (p *fakePublisher) PublishIndicators(ctx context.Context, s models.IndicatorSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indicators = append(p.indicators, s)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeProvider struct {
	name     string
	text     string
	err      error
	delay    time.Duration
	started  atomic.Bool
	canceled atomic.Bool
	finished atomic.Bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) GenerateInsight(ctx context.Context, prompt string, _ map[string]any) (string, error) {
	p.started.Store(true)
	defer p.finished.Store(true)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			p.canceled.Store(true)
			return "", ctx.Err()
		}
	}
	return p.text, p.err
}
