package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// Warmer refreshes the indicator cache for a fixed symbol list on a cron schedule
// so the first request after expiry is served from cache.
type Warmer struct {
	cron    *cron.Cron
	ind     *IndicatorService
	symbols []string
	timeout time.Duration
	log     *logger.Logger
}

// NewWarmer parses spec (seconds field included) and registers the refresh job.
func NewWarmer(ind *IndicatorService, symbols []string, spec string, timeout time.Duration, log *logger.Logger) (*Warmer, error) {
	w := &Warmer{
		cron:    cron.New(cron.WithSeconds()),
		ind:     ind,
		timeout: timeout,
		log:     log,
	}
	for _, s := range symbols {
		if s = util.NormalizeSymbol(s); s != "" {
			w.symbols = append(w.symbols, s)
		}
	}
	if w.timeout <= 0 {
		w.timeout = 20 * time.Second
	}
	if _, err := w.cron.AddFunc(spec, func() { _ = w.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register warmup job: %w", err)
	}
	return w, nil
}

func (w *Warmer) Start() {
	w.cron.Start()
	w.log.Info("warmer.started", logger.Strings("symbols", w.symbols))
}

// Stop waits for a running job to finish or ctx to expire.
func (w *Warmer) Stop(ctx context.Context) {
	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
	w.log.Info("warmer.stopped")
}

// RunOnce refreshes every symbol concurrently and returns the number of failures as an error.
func (w *Warmer) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	// Plain Group: one symbol failing must not cancel the others.
	var (
		g      errgroup.Group
		failed atomic.Int32
	)
	for _, sym := range w.symbols {
		sym := sym
		g.Go(func() error {
			if _, err := w.ind.Refresh(ctx, sym); err != nil {
				failed.Add(1)
				w.log.Warn("warmer.refresh failed", logger.String("symbol", sym), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("warmup: %d of %d symbols failed", n, len(w.symbols))
	}
	return nil
}
