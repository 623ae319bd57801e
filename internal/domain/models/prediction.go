package models

import "time"

// NeutralSentimentSummary is the text attached to the fallback sentiment.
const NeutralSentimentSummary = "Neutral sentiment due to lack of data."

// SentimentSourceFallback tags results produced without a usable provider answer.
const SentimentSourceFallback = "fallback"

type ForecastPoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Sentiment is the outcome of the sentiment stage. Fallback is a regular
// outcome here, not an error.
type Sentiment struct {
	Score    float64 `json:"score"`
	Summary  string  `json:"summary"`
	Source   string  `json:"source"`
	Fallback bool    `json:"fallback"`
}

// NeutralSentiment is the value used whenever the provider cannot be used.
func NeutralSentiment() Sentiment {
	return Sentiment{
		Score:    0,
		Summary:  NeutralSentimentSummary,
		Source:   SentimentSourceFallback,
		Fallback: true,
	}
}

type PredictionResult struct {
	ID               string          `json:"id"`
	Symbol           string          `json:"symbol"`
	CurrentPrice     float64         `json:"currentPrice"`
	PredictedPrice   float64         `json:"predictedPrice"`
	SentimentScore   float64         `json:"sentimentScore"`
	SentimentSummary string          `json:"sentimentSummary"`
	SentimentSource  string          `json:"sentimentSource"`
	ConfidenceScore  float64         `json:"confidenceScore"`
	Forecast         []ForecastPoint `json:"forecast"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// Insight is the raw text returned by an LLM provider.
type Insight struct {
	Provider    string    `json:"provider"`
	Text        string    `json:"insight"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// LatencyReport pairs a fresh probe with the rolling distribution of recent probes.
type LatencyReport struct {
	LatencyProbe
	Samples int     `json:"samples"`
	P50Ms   float64 `json:"p50Ms"`
	P95Ms   float64 `json:"p95Ms"`
	P99Ms   float64 `json:"p99Ms"`
}

// Health is the liveness payload.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Hostname  string    `json:"hostname"`
	Version   string    `json:"version"`
}
