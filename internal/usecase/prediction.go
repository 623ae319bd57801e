package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"MarketPulse/internal/domain/errs"
	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/cache"
	"MarketPulse/internal/services/forecast"
	"MarketPulse/internal/services/sentiment"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// Stage names a step of the prediction pipeline.
type Stage string

const (
	StageFetchHistory    Stage = "FETCH_HISTORY"
	StageComputeForecast Stage = "COMPUTE_FORECAST"
	StageFetchSentiment  Stage = "FETCH_SENTIMENT"
	StageFuse            Stage = "FUSE"
	StageDone            Stage = "DONE"
	StageFailed          Stage = "FAILED"
)

// PredictionParams are the tunables of PredictionService.
type PredictionParams struct {
	Interval       drepo.Interval
	Limit          int
	MinCandles     int
	Horizon        int
	Confidence     float64 // fixed placeholder, not derived from the forecast
	CacheTTL       time.Duration
	PublishTimeout time.Duration
}

// DefaultPredictionParams mirrors the config defaults.
func DefaultPredictionParams() PredictionParams {
	return PredictionParams{
		Interval:       drepo.Interval1h,
		Limit:          100,
		MinCandles:     50,
		Horizon:        24,
		Confidence:     0.85,
		PublishTimeout: 3 * time.Second,
	}
}

// PredictionService fuses a Holt forecast with LLM sentiment.
//
// Sentiment runs on its own goroutine from the start of the request while
// history is fetched and smoothed on the caller's goroutine. The two branches
// join before FUSE. A failed history branch cancels sentiment and waits for it.
type PredictionService struct {
	gw       drepo.MarketGateway
	analyzer *sentiment.Analyzer
	holt     *forecast.Holt
	pub      drepo.SnapshotPublisher
	metrics  drepo.Metrics
	log      *logger.Logger
	cache    *cache.TTLCache[models.PredictionResult]
	params   PredictionParams
	now      func() time.Time
}

func NewPredictionService(
	gw drepo.MarketGateway,
	analyzer *sentiment.Analyzer,
	holt *forecast.Holt,
	pub drepo.SnapshotPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	p PredictionParams,
) *PredictionService {
	p.Interval = drepo.NormalizeInterval(string(p.Interval))
	if p.MinCandles < 2 {
		p.MinCandles = 2
	}
	if p.Limit < p.MinCandles {
		p.Limit = p.MinCandles
	}
	return &PredictionService{
		gw:       gw,
		analyzer: analyzer,
		holt:     holt,
		pub:      pub,
		metrics:  metrics,
		log:      log,
		cache:    cache.NewTTLCache[models.PredictionResult](p.CacheTTL),
		params:   p,
		now:      time.Now,
	}
}

type sentimentOutcome struct {
	value models.Sentiment
	err   error
}

// GetPrediction runs the pipeline for symbol.
func (s *PredictionService) GetPrediction(ctx context.Context, symbol string) (models.PredictionResult, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.PredictionResult{}, fmt.Errorf("symbol required")
	}
	if s.params.CacheTTL > 0 {
		if res, ok := s.cache.Get(symbol); ok {
			s.metrics.RecordCacheLookup("prediction", true)
			return res, nil
		}
		s.metrics.RecordCacheLookup("prediction", false)
	}

	log := s.log.With(logger.String("symbol", symbol))

	sentCtx, cancelSent := context.WithCancel(ctx)
	defer cancelSent()
	sentCh := make(chan sentimentOutcome, 1)
	go func() {
		v, err := s.analyzer.Analyze(sentCtx, symbol)
		sentCh <- sentimentOutcome{value: v, err: err}
	}()
	fail := func(stage Stage, err error) (models.PredictionResult, error) {
		cancelSent()
		<-sentCh
		s.metrics.RecordError("prediction_" + strings.ToLower(string(stage)))
		log.Debug("prediction.stage "+string(StageFailed),
			logger.String("from", string(stage)),
			logger.Error(err),
		)
		return models.PredictionResult{}, err
	}

	done := s.enter(log, StageFetchHistory)
	series, err := s.gw.GetCandles(ctx, symbol, s.params.Interval, s.params.Limit)
	done()
	if err != nil {
		return fail(StageFetchHistory, err)
	}
	if len(series) < s.params.MinCandles {
		return fail(StageFetchHistory, &errs.InsufficientHistoryError{Have: len(series), Need: s.params.MinCandles})
	}

	done = s.enter(log, StageComputeForecast)
	values, err := s.holt.Forecast(series.Closes(), s.params.Horizon)
	done()
	if err != nil {
		return fail(StageComputeForecast, err)
	}

	done = s.enter(log, StageFetchSentiment)
	out := <-sentCh
	done()
	sent := out.value
	if out.err != nil {
		reason := sentiment.FallbackReason(out.err)
		s.metrics.RecordSentimentFallback(reason)
		log.Warn("prediction.sentiment fallback",
			logger.String("reason", reason),
			logger.Error(out.err),
		)
	}

	done = s.enter(log, StageFuse)
	res := s.fuse(symbol, series, values, sent)
	done()

	log.Debug("prediction.stage "+string(StageDone),
		logger.String("id", res.ID),
		logger.Float64("predicted", res.PredictedPrice),
	)

	if s.params.CacheTTL > 0 {
		s.cache.Set(symbol, res)
	}
	publish(ctx, s.log, s.params.PublishTimeout, "prediction", symbol, func(pctx context.Context) error {
		if s.pub == nil {
			return nil
		}
		return s.pub.PublishPrediction(pctx, res)
	})
	return res, nil
}

func (s *PredictionService) fuse(symbol string, series models.CandleSeries, values []float64, sent models.Sentiment) models.PredictionResult {
	last := series.Last()
	step := s.params.Interval.Duration()

	points := make([]models.ForecastPoint, len(values))
	for i, v := range values {
		points[i] = models.ForecastPoint{
			Time:  last.OpenTime.Add(time.Duration(i+1) * step),
			Price: v,
		}
	}
	predicted := last.Close
	if len(values) > 0 {
		predicted = values[len(values)-1]
	}

	return models.PredictionResult{
		ID:               uuid.NewString(),
		Symbol:           symbol,
		CurrentPrice:     last.Close,
		PredictedPrice:   predicted,
		SentimentScore:   sent.Score,
		SentimentSummary: sent.Summary,
		SentimentSource:  sent.Source,
		ConfidenceScore:  s.params.Confidence,
		Forecast:         points,
		GeneratedAt:      s.now(),
	}
}

// enter logs the transition into stage and returns a func observing its duration.
func (s *PredictionService) enter(log *logger.Logger, stage Stage) func() {
	log.Debug("prediction.stage " + string(stage))
	start := time.Now()
	return func() {
		s.metrics.RecordStage(strings.ToLower(string(stage)), time.Since(start).Seconds())
	}
}
