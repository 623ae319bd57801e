package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/cache"
	"MarketPulse/internal/services/indicators"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// IndicatorParams are the tunables of IndicatorService.
type IndicatorParams struct {
	CacheTTL       time.Duration
	Interval       drepo.Interval
	Limit          int
	PublishTimeout time.Duration
}

// IndicatorService serves technical indicator snapshots through a short TTL cache.
type IndicatorService struct {
	gw      drepo.MarketGateway
	pub     drepo.SnapshotPublisher
	metrics drepo.Metrics
	log     *logger.Logger
	cache   *cache.TTLCache[models.IndicatorSnapshot]
	params  IndicatorParams
	now     func() time.Time
}

// NewIndicatorService creates an IndicatorService. pub may be nil.
func NewIndicatorService(
	gw drepo.MarketGateway,
	pub drepo.SnapshotPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	p IndicatorParams,
	opts ...cache.Option,
) *IndicatorService {
	if p.Limit <= 0 {
		p.Limit = 200
	}
	p.Interval = drepo.NormalizeInterval(string(p.Interval))
	return &IndicatorService{
		gw:      gw,
		pub:     pub,
		metrics: metrics,
		log:     log,
		cache:   cache.NewTTLCache[models.IndicatorSnapshot](p.CacheTTL, opts...),
		params:  p,
		now:     time.Now,
	}
}

// GetIndicators returns the cached snapshot for symbol or computes a fresh one.
func (s *IndicatorService) GetIndicators(ctx context.Context, symbol string) (models.IndicatorSnapshot, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.IndicatorSnapshot{}, fmt.Errorf("symbol required")
	}

	if snap, ok := s.cache.Get(symbol); ok {
		s.metrics.RecordCacheLookup("indicators", true)
		return snap, nil
	}
	s.metrics.RecordCacheLookup("indicators", false)
	return s.Refresh(ctx, symbol)
}

// Refresh bypasses the cache, recomputes the snapshot and stores it.
func (s *IndicatorService) Refresh(ctx context.Context, symbol string) (models.IndicatorSnapshot, error) {
	symbol = util.NormalizeSymbol(symbol)

	var (
		ticker models.TickerSnapshot
		series models.CandleSeries
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.gw.GetTickerSnapshot(gctx, symbol)
		ticker = t
		return err
	})
	g.Go(func() error {
		c, err := s.gw.GetCandles(gctx, symbol, s.params.Interval, s.params.Limit)
		series = c
		return err
	})
	if err := g.Wait(); err != nil {
		return models.IndicatorSnapshot{}, err
	}

	snap := indicators.Compute(ticker, series.Closes(), s.now())
	s.cache.Set(symbol, snap)
	s.log.Debug("indicators.refresh computed",
		logger.String("symbol", symbol),
		logger.Int("candles", len(series)),
	)

	publish(ctx, s.log, s.params.PublishTimeout, "indicators", symbol, func(pctx context.Context) error {
		if s.pub == nil {
			return nil
		}
		return s.pub.PublishIndicators(pctx, snap)
	})
	return snap, nil
}

// publish runs fn detached from caller cancellation but bounded by timeout.
// Failures are logged and swallowed.
func publish(ctx context.Context, log *logger.Logger, timeout time.Duration, kind, symbol string, fn func(context.Context) error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := fn(pctx); err != nil {
		log.Warn("publish.snapshot failed",
			logger.String("kind", kind),
			logger.String("symbol", symbol),
			logger.Error(err),
		)
	}
}
