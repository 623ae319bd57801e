package indicators

import (
	"math"
	"time"

	"MarketPulse/internal/domain/models"
)

const (
	ShortSMAWindow = 20
	LongSMAWindow  = 50
	RSIPeriod      = 14
)

// SMA returns the mean of the trailing window values, or NaN when the series
// is shorter than the window.
func SMA(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// RSI computes Wilder's relative strength index in a single pass.
// Requires period+1 values; otherwise NaN.
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return math.NaN()
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	if avgLoss == 0 {
		return 100
	}

	p := float64(period)
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Compute builds the indicator snapshot for one symbol from its ticker and close history.
func Compute(ticker models.TickerSnapshot, closes []float64, now time.Time) models.IndicatorSnapshot {
	return models.IndicatorSnapshot{
		Symbol:        ticker.Symbol,
		Price:         ticker.LastPrice,
		ChangePercent: ticker.ChangePercent,
		SMA20:         SMA(closes, ShortSMAWindow),
		SMA50:         SMA(closes, LongSMAWindow),
		RSI14:         RSI(closes, RSIPeriod),
		UpdatedAt:     now,
	}
}
