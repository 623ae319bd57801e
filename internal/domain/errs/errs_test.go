package errs

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
)

func TestUpstreamErrorAs(t *testing.T) {
	err := fmt.Errorf("ticker: %w", &UpstreamError{Op: "ticker", Status: 451, Body: "restricted"})
	var up *UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("expected UpstreamError in chain")
	}
	if up.Status != 451 || up.Body != "restricted" {
		t.Fatalf("unexpected fields %+v", up)
	}
}

func TestParseErrorUnwrap(t *testing.T) {
	_, cause := strconv.ParseFloat("abc", 64)
	err := &ParseError{Field: "lastPrice", Value: "abc", Err: cause}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Fatalf("expected strconv.ErrSyntax in chain, got %v", err)
	}
}

func TestIsInsufficient(t *testing.T) {
	if !IsInsufficient(&InsufficientHistoryError{Have: 10, Need: 50}) {
		t.Fatalf("history error not detected")
	}
	if !IsInsufficient(fmt.Errorf("forecast: %w", &InsufficientDataError{Have: 1, Need: 2})) {
		t.Fatalf("wrapped data error not detected")
	}
	if IsInsufficient(ErrSentimentUnavailable) {
		t.Fatalf("sentiment sentinel must not be insufficient")
	}
}
