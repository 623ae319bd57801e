package usecase

import (
	"context"
	"fmt"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/latency"
	"MarketPulse/pkg/util"
)

// MarketService exposes raw market data and the exchange heartbeat.
type MarketService struct {
	gw      drepo.MarketGateway
	tracker *latency.Tracker
}

func NewMarketService(gw drepo.MarketGateway, tracker *latency.Tracker) *MarketService {
	if tracker == nil {
		tracker = latency.NewTracker(0)
	}
	return &MarketService{gw: gw, tracker: tracker}
}

func (s *MarketService) GetSummary(ctx context.Context, symbol string) (models.TickerSnapshot, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.TickerSnapshot{}, fmt.Errorf("symbol required")
	}
	return s.gw.GetTickerSnapshot(ctx, symbol)
}

// GetOrderBook passes limit through; the gateway substitutes its default for limit <= 0.
func (s *MarketService) GetOrderBook(ctx context.Context, symbol string, limit int) (models.OrderBook, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.OrderBook{}, fmt.Errorf("symbol required")
	}
	return s.gw.GetOrderBook(ctx, symbol, limit)
}

func (s *MarketService) GetCandles(ctx context.Context, symbol, interval string, limit int) (models.CandleSeries, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if limit <= 0 {
		limit = 100
	}
	return s.gw.GetCandles(ctx, symbol, drepo.NormalizeInterval(interval), util.Clamp(limit, 1, 1000))
}

// Heartbeat probes the exchange and reports the probe with rolling percentiles.
func (s *MarketService) Heartbeat(ctx context.Context) (models.LatencyReport, error) {
	probe, err := s.gw.GetLatencyProbe(ctx)
	if err != nil {
		return models.LatencyReport{}, err
	}
	s.tracker.Record(float64(probe.Latency.Microseconds()) / 1000)
	p50, p95, p99 := s.tracker.Percentiles()
	return models.LatencyReport{
		LatencyProbe: probe,
		Samples:      s.tracker.Count(),
		P50Ms:        p50,
		P95Ms:        p95,
		P99Ms:        p99,
	}, nil
}
