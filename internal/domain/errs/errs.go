// Package errs holds the failure taxonomy shared by the gateway, the engines
// and the orchestrators. Callers match with errors.As / errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrSentimentUnavailable marks any failure of the sentiment stage. It never
	// leaves the prediction orchestrator; it is converted to the neutral fallback.
	ErrSentimentUnavailable = errors.New("sentiment unavailable")

	// ErrProviderNotConfigured is returned by a sentiment provider without credentials.
	ErrProviderNotConfigured = errors.New("sentiment provider not configured")
)

// UpstreamError is a non-success response from the exchange or an LLM provider.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: status %d: %s", e.Op, e.Status, e.Body)
}

// ParseError is an upstream payload whose shape or numeric fields could not be read.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InsufficientHistoryError means the exchange returned fewer candles than a prediction needs.
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: have %d candles, need %d", e.Have, e.Need)
}

// InsufficientDataError means a numeric engine received too short a series.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d points, need %d", e.Have, e.Need)
}

// IsInsufficient reports whether err is either of the "not enough data" kinds.
func IsInsufficient(err error) bool {
	var h *InsufficientHistoryError
	var d *InsufficientDataError
	return errors.As(err, &h) || errors.As(err, &d)
}
