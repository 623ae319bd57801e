package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// MarketGateway is the only path to the exchange REST API.
type MarketGateway interface {
	GetTickerSnapshot(ctx context.Context, symbol string) (models.TickerSnapshot, error)
	GetOrderBook(ctx context.Context, symbol string, limit int) (models.OrderBook, error)
	GetCandles(ctx context.Context, symbol string, interval Interval, limit int) (models.CandleSeries, error)
	GetLatencyProbe(ctx context.Context) (models.LatencyProbe, error)
}

// SnapshotPublisher hands finished results to downstream consumers.
type SnapshotPublisher interface {
	PublishPrediction(ctx context.Context, p models.PredictionResult) error
	PublishIndicators(ctx context.Context, s models.IndicatorSnapshot) error
	Close() error
}

type Metrics interface {
	RecordMessageSent(sink, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(dataset string, hit bool)
	RecordStage(stage string, seconds float64)
	RecordSentimentFallback(reason string)
}
