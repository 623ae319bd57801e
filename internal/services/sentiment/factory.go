package sentiment

import (
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/pkg/config"
)

// NewProvider picks the LLM backend from config. Anything but "claude" means Gemini.
func NewProvider(cfg *config.Config) domsvc.InsightProvider {
	s := cfg.Sentiment
	if s.Provider == "claude" {
		return NewClaudeProvider(s.ClaudeEndpoint, s.ClaudeAPIKey, s.Model, s.MaxTokens, s.Timeout)
	}
	return NewGeminiProvider(s.GeminiEndpoint, s.GeminiAPIKey, s.Model, s.Timeout)
}
