package repository

import (
	"context"
	"errors"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/cache"
	pkgkafka "MarketPulse/pkg/kafka"
)

const (
	KindPrediction = "prediction"
	KindIndicators = "indicators"
)

// SnapshotEvent is the envelope written to Kafka.
type SnapshotEvent struct {
	Kind    string      `json:"kind"`
	Symbol  string      `json:"symbol"`
	SentAt  time.Time   `json:"sentAt"`
	Payload interface{} `json:"payload"`
}

// KafkaSnapshotPublisher emits one event per result, keyed by symbol.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	metrics  drepo.Metrics
}

func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string, metrics drepo.Metrics) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic, metrics: metrics}
}

func (p *KafkaSnapshotPublisher) PublishPrediction(ctx context.Context, r models.PredictionResult) error {
	return p.publish(ctx, KindPrediction, r.Symbol, r)
}

func (p *KafkaSnapshotPublisher) PublishIndicators(ctx context.Context, s models.IndicatorSnapshot) error {
	return p.publish(ctx, KindIndicators, s.Symbol, s)
}

func (p *KafkaSnapshotPublisher) publish(ctx context.Context, kind, symbol string, payload interface{}) error {
	err := p.producer.Publish(ctx, p.topic, []byte(symbol), SnapshotEvent{
		Kind:    kind,
		Symbol:  symbol,
		SentAt:  time.Now().UTC(),
		Payload: payload,
	})
	if err != nil {
		p.metrics.RecordError("publish_kafka")
		return err
	}
	p.metrics.RecordMessageSent("kafka", symbol)
	return nil
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// RedisSnapshotPublisher keeps only the latest result per symbol, under
// "<kind>:<SYMBOL>" with a TTL.
type RedisSnapshotPublisher struct {
	store   cache.Service
	closer  func() error
	ttl     time.Duration
	metrics drepo.Metrics
}

// NewRedisSnapshotPublisher writes through store; closer may be nil.
func NewRedisSnapshotPublisher(store cache.Service, closer func() error, ttl time.Duration, metrics drepo.Metrics) *RedisSnapshotPublisher {
	return &RedisSnapshotPublisher{store: store, closer: closer, ttl: ttl, metrics: metrics}
}

func (p *RedisSnapshotPublisher) PublishPrediction(ctx context.Context, r models.PredictionResult) error {
	return p.put(ctx, KindPrediction, r.Symbol, r)
}

func (p *RedisSnapshotPublisher) PublishIndicators(ctx context.Context, s models.IndicatorSnapshot) error {
	return p.put(ctx, KindIndicators, s.Symbol, s)
}

func (p *RedisSnapshotPublisher) put(ctx context.Context, kind, symbol string, v interface{}) error {
	if err := p.store.Set(ctx, cache.GenerateKey(kind, symbol), v, p.ttl); err != nil {
		p.metrics.RecordError("publish_redis")
		return err
	}
	p.metrics.RecordMessageSent("redis", symbol)
	return nil
}

func (p *RedisSnapshotPublisher) Close() error {
	if p.closer != nil {
		return p.closer()
	}
	return nil
}

// MultiPublisher fans every result out to all sinks and joins their errors.
type MultiPublisher struct {
	sinks []drepo.SnapshotPublisher
}

func NewMultiPublisher(sinks ...drepo.SnapshotPublisher) *MultiPublisher {
	return &MultiPublisher{sinks: sinks}
}

func (m *MultiPublisher) Len() int { return len(m.sinks) }

func (m *MultiPublisher) PublishPrediction(ctx context.Context, r models.PredictionResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.PublishPrediction(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) PublishIndicators(ctx context.Context, snap models.IndicatorSnapshot) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.PublishIndicators(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ drepo.SnapshotPublisher = (*KafkaSnapshotPublisher)(nil)
	_ drepo.SnapshotPublisher = (*RedisSnapshotPublisher)(nil)
	_ drepo.SnapshotPublisher = (*MultiPublisher)(nil)
)
