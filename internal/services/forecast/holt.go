package forecast

import (
	"fmt"

	"MarketPulse/internal/domain/errs"
)

const (
	DefaultAlpha = 0.5
	DefaultBeta  = 0.3
)

// Option configures Holt.
type Option func(*Holt)

// WithAlpha sets the level smoothing factor.
func WithAlpha(alpha float64) Option {
	return func(h *Holt) { h.alpha = alpha }
}

// WithBeta sets the trend smoothing factor.
func WithBeta(beta float64) Option {
	return func(h *Holt) { h.beta = beta }
}

// Holt is double exponential smoothing (level + linear trend).
// It extrapolates the last trend forever, so it overshoots on mean-reverting series.
type Holt struct {
	alpha float64
	beta  float64
}

func NewHolt(opts ...Option) (*Holt, error) {
	h := &Holt{alpha: DefaultAlpha, beta: DefaultBeta}
	for _, opt := range opts {
		opt(h)
	}
	if h.alpha <= 0 || h.alpha > 1 {
		return nil, fmt.Errorf("holt: alpha must be in (0,1], got %v", h.alpha)
	}
	if h.beta <= 0 || h.beta > 1 {
		return nil, fmt.Errorf("holt: beta must be in (0,1], got %v", h.beta)
	}
	return h, nil
}

func (h *Holt) Alpha() float64 { return h.alpha }
func (h *Holt) Beta() float64  { return h.beta }

// Forecast returns steps values; the k-th (1-based) is level + k*trend after
// smoothing the whole series.
func (h *Holt) Forecast(series []float64, steps int) ([]float64, error) {
	if len(series) < 2 {
		return nil, &errs.InsufficientDataError{Have: len(series), Need: 2}
	}
	if steps <= 0 {
		return []float64{}, nil
	}

	level := series[0]
	trend := series[1] - series[0]
	for i := 1; i < len(series); i++ {
		lastLevel := level
		level = h.alpha*series[i] + (1-h.alpha)*(level+trend)
		trend = h.beta*(level-lastLevel) + (1-h.beta)*trend
	}

	out := make([]float64, steps)
	for k := 1; k <= steps; k++ {
		out[k-1] = level + float64(k)*trend
	}
	return out, nil
}
