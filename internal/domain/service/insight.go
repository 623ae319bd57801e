package service

import "context"

// InsightProvider is an LLM backend that turns a prompt (plus optional
// structured context) into free text.
type InsightProvider interface {
	Name() string
	GenerateInsight(ctx context.Context, prompt string, data map[string]any) (string, error)
}
