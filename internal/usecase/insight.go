package usecase

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/errs"
	"MarketPulse/internal/domain/models"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/pkg/logger"
)

// InsightService forwards free-form prompts to the configured provider.
// Unlike the sentiment stage, provider errors are returned to the caller.
type InsightService struct {
	provider domsvc.InsightProvider
	log      *logger.Logger
	now      func() time.Time
}

func NewInsightService(provider domsvc.InsightProvider, log *logger.Logger) *InsightService {
	return &InsightService{provider: provider, log: log, now: time.Now}
}

func (s *InsightService) Generate(ctx context.Context, prompt string, data map[string]any) (models.Insight, error) {
	if s.provider == nil {
		return models.Insight{}, errs.ErrProviderNotConfigured
	}
	if prompt == "" {
		return models.Insight{}, fmt.Errorf("prompt required")
	}
	text, err := s.provider.GenerateInsight(ctx, prompt, data)
	if err != nil {
		s.log.Warn("insight.generate failed",
			logger.String("provider", s.provider.Name()),
			logger.Error(err),
		)
		return models.Insight{}, err
	}
	return models.Insight{Provider: s.provider.Name(), Text: text, GeneratedAt: s.now()}, nil
}
