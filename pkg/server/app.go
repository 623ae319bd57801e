package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	warmer     *usecase.Warmer
	publisher  drepo.SnapshotPublisher
	limiter    *ratelimit.Limiter
}

// New creates a new App instance. warmer, publisher and limiter may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	warmer *usecase.Warmer,
	publisher drepo.SnapshotPublisher,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		warmer:     warmer,
		publisher:  publisher,
		limiter:    limiter,
	}
}

// HTTPServer exposes the server, mainly for tests.
func (a *App) HTTPServer() *xhttp.Server { return a.httpServer }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.warmer != nil {
		// Prime the cache before the first tick.
		go func() {
			if err := a.warmer.RunOnce(ctx); err != nil {
				a.log.Warn("initial warmup incomplete", applogger.Error(err))
			}
		}()
		a.warmer.Start()
	}

	if a.limiter != nil {
		go a.pruneLimiter(ctx)
	}

	a.log.Info("marketpulse started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("addr", a.httpServer.Addr()),
		applogger.String("provider", a.cfg.Sentiment.Provider),
		applogger.Bool("redis", a.cfg.Redis.Enabled),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// pruneLimiter drops idle client buckets so the limiter map stays bounded.
func (a *App) pruneLimiter(ctx context.Context) {
	idle := a.cfg.Server.RateLimit.IdleTTL
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	t := time.NewTicker(idle / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Prune(idle); n > 0 {
				a.log.Debug("ratelimit.pruned", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	if a.warmer != nil {
		a.warmer.Stop(ctx)
	}

	// Sinks close last so in-flight requests can still publish.
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("snapshot publisher close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return firstErr
}
