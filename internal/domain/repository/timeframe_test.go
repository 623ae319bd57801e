package repository

import (
	"testing"
	"time"
)

func TestNormalizeInterval(t *testing.T) {
	cases := map[string]Interval{
		"":    Interval1h,
		"1h":  Interval1h,
		"15m": Interval15m,
		"2h":  Interval1h,
		"1d":  Interval1d,
	}
	for in, want := range cases {
		if got := NormalizeInterval(in); got != want {
			t.Fatalf("NormalizeInterval(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestIntervalDuration(t *testing.T) {
	if Interval1h.Duration() != time.Hour {
		t.Fatalf("1h duration %v", Interval1h.Duration())
	}
	if Interval("7m").Duration() != 0 {
		t.Fatalf("unknown interval should have zero duration")
	}
}
