package util

import "testing"

func TestNormalizeSymbol(t *testing.T) {
    if got := NormalizeSymbol("  btcusdt "); got != "BTCUSDT" {
        t.Fatalf("unexpected %q", got)
    }
}

func TestClamp(t *testing.T) {
    cases := []struct{ v, want int }{{1, 5}, {50, 50}, {900, 500}}
    for _, c := range cases {
        if got := Clamp(c.v, 5, 500); got != c.want {
            t.Fatalf("Clamp(%d) = %d, want %d", c.v, got, c.want)
        }
    }
    if got := ClampFloat(1.7, -1, 1); got != 1 {
        t.Fatalf("ClampFloat = %v", got)
    }
}
