package models

// Requests for the market HTTP endpoints. Defined in domain for consistency and reuse.

type SymbolRequest struct {
	Symbol string `param:"symbol" validate:"required,alphanum,min=2,max=20"`
}

type OrderBookRequest struct {
	Symbol string `param:"symbol" validate:"required,alphanum,min=2,max=20"`
	Limit  int    `query:"limit" json:"limit" validate:"omitempty,gte=5,lte=500"`
}

type CandlesRequest struct {
	Symbol   string `param:"symbol" validate:"required,alphanum,min=2,max=20"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 4h 1d"`
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type InsightRequest struct {
	Prompt  string         `json:"prompt" validate:"required,max=8000"`
	Context map[string]any `json:"context"`
}
