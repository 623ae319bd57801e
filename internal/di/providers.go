package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	drepo "MarketPulse/internal/domain/repository"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/internal/handler/api"
	"MarketPulse/internal/handler/ws"
	internalrepo "MarketPulse/internal/repository"
	"MarketPulse/internal/service/exchange"
	"MarketPulse/internal/service/latency"
	endpointmetrics "MarketPulse/internal/service/metrics"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/services/forecast"
	"MarketPulse/internal/services/sentiment"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/cache"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served on the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) drepo.Metrics {
	return metrics.New(reg)
}

// ProvideEndpointMetrics creates the per-endpoint latency and error vectors.
func ProvideEndpointMetrics(reg *prometheus.Registry) *endpointmetrics.Endpoint {
	return endpointmetrics.NewEndpoint(reg)
}

// ProvideMarketGateway creates the exchange REST gateway.
func ProvideMarketGateway(cfg *config.Config, m drepo.Metrics, l *applogger.Logger) drepo.MarketGateway {
	return exchange.New(
		exchange.WithBaseURL(cfg.Exchange.RestEndpoint),
		exchange.WithTimeout(cfg.Exchange.Timeout),
		exchange.WithDepthLimit(cfg.Exchange.DepthLimit),
		exchange.WithRateLimit(cfg.Exchange.RateLimit, cfg.Exchange.Burst),
		exchange.WithMetrics(m),
		exchange.WithLogger(l.With(applogger.String("component", "exchange"))),
	)
}

// ProvideHolt creates the forecast engine.
func ProvideHolt(cfg *config.Config) (*forecast.Holt, error) {
	h, err := forecast.NewHolt(
		forecast.WithAlpha(cfg.Prediction.Alpha),
		forecast.WithBeta(cfg.Prediction.Beta),
	)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return h, nil
}

// ProvideInsightProvider selects the configured LLM backend.
func ProvideInsightProvider(cfg *config.Config) domsvc.InsightProvider {
	return sentiment.NewProvider(cfg)
}

// ProvideAnalyzer creates the sentiment analyzer used by predictions.
func ProvideAnalyzer(provider domsvc.InsightProvider, cfg *config.Config) *sentiment.Analyzer {
	return sentiment.NewAnalyzer(provider, sentiment.WithTimeout(cfg.Sentiment.Timeout))
}

// ProvideSnapshotPublisher fans results out to every enabled sink. With no
// sink enabled the returned publisher is a no-op.
func ProvideSnapshotPublisher(cfg *config.Config, m drepo.Metrics, l *applogger.Logger) (drepo.SnapshotPublisher, error) {
	var sinks []drepo.SnapshotPublisher

	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
			cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
			cache.WithRedisPingTimeout(cfg.Redis.PingTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		sinks = append(sinks, internalrepo.NewRedisSnapshotPublisher(rc, rc.Close, cfg.Redis.SnapshotTTL, m))
		l.Info("snapshot sink enabled",
			applogger.String("sink", "redis"),
			applogger.String("addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)),
		)
	}

	if cfg.Kafka.Enabled {
		p := cfg.Kafka.Producer
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatching(p.BatchSize, p.BatchBytes, p.Linger),
			pkgkafka.WithTimeouts(p.WriteTimeout, p.ReadTimeout),
			pkgkafka.WithMaxAttempts(p.MaxAttempts),
			pkgkafka.WithAsync(p.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			closeSinks(sinks)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic, m))
		l.Info("snapshot sink enabled",
			applogger.String("sink", "kafka"),
			applogger.Strings("brokers", cfg.Kafka.Brokers),
			applogger.String("topic", cfg.Kafka.Topic),
		)
	}

	return internalrepo.NewMultiPublisher(sinks...), nil
}

func closeSinks(sinks []drepo.SnapshotPublisher) {
	for _, s := range sinks {
		_ = s.Close()
	}
}

// ProvideLatencyTracker keeps the rolling heartbeat window.
func ProvideLatencyTracker() *latency.Tracker {
	return latency.NewTracker(1000)
}

// ProvideIndicatorService creates the cached indicator use case.
func ProvideIndicatorService(
	gw drepo.MarketGateway,
	pub drepo.SnapshotPublisher,
	m drepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.IndicatorService {
	return usecase.NewIndicatorService(gw, pub, m, l.With(applogger.String("component", "indicators")), usecase.IndicatorParams{
		CacheTTL:       cfg.Indicators.CacheTTL,
		Interval:       drepo.Interval(cfg.Indicators.Interval),
		Limit:          cfg.Indicators.Limit,
		PublishTimeout: cfg.Prediction.PublishTimeout,
	})
}

// ProvidePredictionService creates the prediction orchestrator.
func ProvidePredictionService(
	gw drepo.MarketGateway,
	analyzer *sentiment.Analyzer,
	holt *forecast.Holt,
	pub drepo.SnapshotPublisher,
	m drepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PredictionService {
	p := cfg.Prediction
	return usecase.NewPredictionService(gw, analyzer, holt, pub, m, l.With(applogger.String("component", "prediction")), usecase.PredictionParams{
		Interval:       drepo.Interval(p.Interval),
		Limit:          p.Limit,
		MinCandles:     p.MinCandles,
		Horizon:        p.Horizon,
		Confidence:     p.Confidence,
		CacheTTL:       p.CacheTTL,
		PublishTimeout: p.PublishTimeout,
	})
}

// ProvideRateLimiter creates the per-client token bucket.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec)
}

// ProvideStreamHandler creates the websocket push handler.
func ProvideStreamHandler(
	cfg *config.Config,
	market *usecase.MarketService,
	ind *usecase.IndicatorService,
	l *applogger.Logger,
) *ws.StreamHandler {
	return ws.NewStreamHandler(market, ind, ws.Options{
		LatencyInterval:   cfg.Stream.LatencyInterval,
		IndicatorInterval: cfg.Stream.IndicatorInterval,
		WriteTimeout:      cfg.Stream.WriteTimeout,
		AllowedOrigins:    cfg.Server.CORSOrigins,
	}, l.With(applogger.String("component", "stream")))
}

// ProvideMarketHandler creates the REST handler with the stream routes mounted.
func ProvideMarketHandler(
	l *applogger.Logger,
	market *usecase.MarketService,
	ind *usecase.IndicatorService,
	prediction *usecase.PredictionService,
	insight *usecase.InsightService,
	em *endpointmetrics.Endpoint,
	limiter *ratelimit.Limiter,
	stream *ws.StreamHandler,
) *api.MarketEchoHandler {
	h := api.NewMarketEchoHandler(l, market, ind, prediction, insight, em, limiter)
	h.Mount(stream)
	return h
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.MarketEchoHandler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(cfg.Metrics.Path),
		xhttp.WithSlowThreshold(cfg.Metrics.SlowThreshold),
		xhttp.WithRegistry(reg),
		xhttp.WithLogger(l.With(applogger.String("component", "http"))),
	)
}

// ProvideWarmer creates the cron cache warmer, or nil when warmup is disabled.
func ProvideWarmer(cfg *config.Config, ind *usecase.IndicatorService, l *applogger.Logger) (*usecase.Warmer, error) {
	if !cfg.Warmup.Enabled {
		return nil, nil
	}
	w, err := usecase.NewWarmer(ind, cfg.Warmup.Symbols, cfg.Warmup.Cron, cfg.Warmup.Timeout, l.With(applogger.String("component", "warmer")))
	if err != nil {
		return nil, fmt.Errorf("warmer: %w", err)
	}
	return w, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	warmer *usecase.Warmer,
	pub drepo.SnapshotPublisher,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, srv, warmer, pub, limiter)
}
