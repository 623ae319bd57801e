package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MarketPulse/internal/domain/errs"
	domsvc "MarketPulse/internal/domain/service"
)

const (
	DefaultClaudeEndpoint = "https://api.anthropic.com"
	DefaultClaudeModel    = "claude-3-sonnet-20240229"
	claudeAPIVersion      = "2023-06-01"
)

type ClaudeProvider struct {
	base      *HTTPServiceBase
	apiKey    string
	model     string
	maxTokens int
}

func NewClaudeProvider(endpoint, apiKey, model string, maxTokens int, timeout time.Duration) *ClaudeProvider {
	if endpoint == "" {
		endpoint = DefaultClaudeEndpoint
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &ClaudeProvider{
		base:      NewHTTPServiceBase("claude", endpoint, timeout),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

func (p *ClaudeProvider) Name() string { return "claude" }

func (p *ClaudeProvider) GenerateInsight(ctx context.Context, prompt string, data map[string]any) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("claude: %w", errs.ErrProviderNotConfigured)
	}

	text := prompt
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("claude: marshal context: %w", err)
		}
		text = prompt + "\n\nContext JSON:\n" + string(b)
	}

	req := claudeRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []claudeMessage{{
			Role:    "user",
			Content: []claudeContent{{Type: "text", Text: text}},
		}},
	}
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": claudeAPIVersion,
	}

	var resp claudeResponse
	if err := p.base.PostJSON(ctx, "/v1/messages", nil, headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", &errs.ParseError{Field: "claude.content", Value: "empty"}
	}
	return resp.Content[0].Text, nil
}

var _ domsvc.InsightProvider = (*ClaudeProvider)(nil)
