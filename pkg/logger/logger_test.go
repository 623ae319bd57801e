package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	l.With(String("component", "gateway")).Info("gateway.ticker ok",
		String("symbol", "BTCUSDT"),
		Float64("price", 101.5),
		Duration("latency_ms", 1500*time.Millisecond),
	)
	l.Error("gateway.ticker failed", Error(errors.New("boom")))

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"symbol":"BTCUSDT"`, `"price":101.5`, `"latency_ms":1500`, `"component":"gateway"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestLoggerInvalidLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	l.Info("ignored", String("k", "v"))
	l.With(Bool("b", true)).Warn("ignored")
}
