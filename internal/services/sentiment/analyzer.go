package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/domain/errs"
	"MarketPulse/internal/domain/models"
	domsvc "MarketPulse/internal/domain/service"
)

// HeadlineSource supplies the headline-like strings a sentiment prompt is built from.
type HeadlineSource func(symbol string) []string

// TemplateHeadlines is the built-in source used until a news feed is wired in.
func TemplateHeadlines(symbol string) []string {
	return []string{
		symbol + " sees increased institutional inflow",
		"Regulatory concerns rise regarding " + symbol + " ETF",
		symbol + " network activity hits 3-month high",
	}
}

// BuildPrompt asks for a JSON object with a score in [-1, 1] and a one-sentence summary.
func BuildPrompt(symbol string, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the sentiment for crypto asset %s based on these headlines:\n", symbol)
	for _, h := range headlines {
		b.WriteString("- ")
		b.WriteString(h)
		b.WriteByte('\n')
	}
	b.WriteString("\nReturn only a JSON object with:\n")
	b.WriteString("- score: number between -1.0 (bearish) and 1.0 (bullish)\n")
	b.WriteString("- summary: a one-sentence summary of the market mood.\n")
	return b.String()
}

// Fallback reasons, used as metric labels.
const (
	ReasonNotConfigured = "not_configured"
	ReasonTimeout       = "timeout"
	ReasonProvider      = "provider_error"
	ReasonUnparsable    = "unparsable"
	ReasonCanceled      = "canceled"
)

// Analyzer runs the sentiment stage of a prediction.
type Analyzer struct {
	provider  domsvc.InsightProvider
	timeout   time.Duration
	headlines HeadlineSource
}

type AnalyzerOption func(*Analyzer)

func WithHeadlines(src HeadlineSource) AnalyzerOption {
	return func(a *Analyzer) { a.headlines = src }
}

func WithTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) { a.timeout = d }
}

// NewAnalyzer accepts a nil provider; every call then falls back.
func NewAnalyzer(provider domsvc.InsightProvider, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{provider: provider, timeout: 8 * time.Second, headlines: TemplateHeadlines}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze always yields a usable Sentiment. When the provider cannot be used
// it returns the neutral fallback together with an error wrapping
// errs.ErrSentimentUnavailable, so the caller can log the reason.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (models.Sentiment, error) {
	if a.provider == nil {
		return models.NeutralSentiment(), fmt.Errorf("%w: %w", errs.ErrSentimentUnavailable, errs.ErrProviderNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.provider.GenerateInsight(ctx, BuildPrompt(symbol, a.headlines(symbol)), nil)
	if err != nil {
		return models.NeutralSentiment(), fmt.Errorf("%w: %s: %w", errs.ErrSentimentUnavailable, a.provider.Name(), err)
	}
	score, summary, err := ParseSentiment(text)
	if err != nil {
		return models.NeutralSentiment(), fmt.Errorf("%w: %s: %w", errs.ErrSentimentUnavailable, a.provider.Name(), err)
	}
	return models.Sentiment{Score: score, Summary: summary, Source: a.provider.Name()}, nil
}

// FallbackReason classifies an Analyze error for metrics.
func FallbackReason(err error) string {
	var pe *errs.ParseError
	switch {
	case errors.Is(err, errs.ErrProviderNotConfigured):
		return ReasonNotConfigured
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.As(err, &pe):
		return ReasonUnparsable
	default:
		return ReasonProvider
	}
}
