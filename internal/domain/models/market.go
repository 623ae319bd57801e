package models

import (
	"encoding/json"
	"math"
	"time"
)

// TickerSnapshot is a 24h rolling summary of one trading pair.
type TickerSnapshot struct {
	Symbol        string    `json:"symbol"`
	LastPrice     float64   `json:"lastPrice"`
	ChangePercent float64   `json:"priceChangePercent"`
	High          float64   `json:"highPrice"`
	Low           float64   `json:"lowPrice"`
	Volume        float64   `json:"volume"`
	QuoteVolume   float64   `json:"quoteVolume"`
	CloseTime     time.Time `json:"closeTime"`
}

// Candle keeps only what the engines consume: the open time and the close.
type Candle struct {
	OpenTime time.Time `json:"openTime"`
	Close    float64   `json:"close"`
}

// CandleSeries is ordered oldest first, exactly as the exchange returned it.
type CandleSeries []Candle

// Closes extracts close prices in series order.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Last returns the most recent candle; zero value for an empty series.
func (s CandleSeries) Last() Candle {
	if len(s) == 0 {
		return Candle{}
	}
	return s[len(s)-1]
}

// OrderBookLevel is one price level with the running quantity total of its side.
type OrderBookLevel struct {
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
	Cumulative float64 `json:"cumulative"`
}

// OrderBook keeps bids highest-first and asks lowest-first.
type OrderBook struct {
	Symbol      string           `json:"symbol"`
	LastUpdated time.Time        `json:"lastUpdated"`
	Bids        []OrderBookLevel `json:"bids"`
	Asks        []OrderBookLevel `json:"asks"`
}

// LatencyProbe is a round trip to the exchange time endpoint.
type LatencyProbe struct {
	ServerTime time.Time     `json:"serverTime"`
	ObservedAt time.Time     `json:"observedAt"`
	Latency    time.Duration `json:"-"`
	LatencyMs  int64         `json:"latencyMs"`
}

// IndicatorSnapshot carries NaN for indicators without enough history; JSON renders those as null.
type IndicatorSnapshot struct {
	Symbol        string
	Price         float64
	ChangePercent float64
	SMA20         float64
	SMA50         float64
	RSI14         float64
	UpdatedAt     time.Time
}

type indicatorSnapshotJSON struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"changePercent"`
	SMA20         *float64  `json:"sma20"`
	SMA50         *float64  `json:"sma50"`
	RSI14         *float64  `json:"rsi14"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s IndicatorSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(indicatorSnapshotJSON{
		Symbol:        s.Symbol,
		Price:         s.Price,
		ChangePercent: s.ChangePercent,
		SMA20:         finiteOrNil(s.SMA20),
		SMA50:         finiteOrNil(s.SMA50),
		RSI14:         finiteOrNil(s.RSI14),
		UpdatedAt:     s.UpdatedAt,
	})
}

func (s *IndicatorSnapshot) UnmarshalJSON(b []byte) error {
	var w indicatorSnapshotJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = IndicatorSnapshot{
		Symbol:        w.Symbol,
		Price:         w.Price,
		ChangePercent: w.ChangePercent,
		SMA20:         nilToNaN(w.SMA20),
		SMA50:         nilToNaN(w.SMA50),
		RSI14:         nilToNaN(w.RSI14),
		UpdatedAt:     w.UpdatedAt,
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nilToNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
