package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"MarketPulse/internal/domain/errs"
	domsvc "MarketPulse/internal/domain/service"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel    = "gemini-1.5-flash-latest"
)

type GeminiProvider struct {
	base   *HTTPServiceBase
	apiKey string
	model  string
}

func NewGeminiProvider(endpoint, apiKey, model string, timeout time.Duration) *GeminiProvider {
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{
		base:   NewHTTPServiceBase("gemini", endpoint, timeout),
		apiKey: apiKey,
		model:  model,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) GenerateInsight(ctx context.Context, prompt string, data map[string]any) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("gemini: %w", errs.ErrProviderNotConfigured)
	}

	parts := []geminiPart{{Text: prompt}}
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("gemini: marshal context: %w", err)
		}
		parts = append(parts, geminiPart{Text: "Context JSON:\n" + string(b)})
	}

	var resp geminiResponse
	path := "/v1beta/models/" + url.PathEscape(p.model) + ":generateContent"
	err := p.base.PostJSON(ctx, path, map[string][]string{"key": {p.apiKey}}, nil,
		geminiRequest{Contents: []geminiContent{{Role: "user", Parts: parts}}}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == "" {
		return "", &errs.ParseError{Field: "gemini.candidates", Value: "empty"}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

var _ domsvc.InsightProvider = (*GeminiProvider)(nil)
