package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/logger"
)

func TestWarmerRunOnceFillsCache(t *testing.T) {
	gw := &fakeGateway{ticker: models.TickerSnapshot{LastPrice: 1}, candles: staircase(60)}
	m := newFakeMetrics()
	ind := newIndicatorSvc(gw, nil, m)

	w, err := NewWarmer(ind, []string{"btcusdt", " ethusdt", ""}, "*/30 * * * * *", time.Second, logger.Nop())
	if err != nil {
		t.Fatalf("NewWarmer: %v", err)
	}
	if err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if gw.tickerCalls.Load() != 2 {
		t.Fatalf("ticker calls = %d, want 2", gw.tickerCalls.Load())
	}

	if _, err := ind.GetIndicators(context.Background(), "ETHUSDT"); err != nil {
		t.Fatalf("GetIndicators: %v", err)
	}
	if m.count(m.hits, "indicators") != 1 {
		t.Fatalf("warmed symbol was not served from cache")
	}
}

func TestWarmerReportsFailures(t *testing.T) {
	gw := &fakeGateway{tickerErr: errors.New("boom"), candles: staircase(60)}
	w, err := NewWarmer(newIndicatorSvc(gw, nil, newFakeMetrics()), []string{"BTCUSDT"}, "@every 1m", time.Second, logger.Nop())
	if err != nil {
		t.Fatalf("NewWarmer: %v", err)
	}
	if err := w.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWarmerPartialFailureKeepsOthers(t *testing.T) {
	gw := &fakeGateway{ticker: models.TickerSnapshot{LastPrice: 1}, candles: staircase(60), failSym: "XRPUSDT"}
	m := newFakeMetrics()
	ind := newIndicatorSvc(gw, nil, m)
	w, err := NewWarmer(ind, []string{"BTCUSDT", "XRPUSDT", "ETHUSDT"}, "@every 1m", time.Second, logger.Nop())
	if err != nil {
		t.Fatalf("NewWarmer: %v", err)
	}

	err = w.RunOnce(context.Background())
	if err == nil || !strings.Contains(err.Error(), "1 of 3") {
		t.Fatalf("RunOnce error = %v, want 1 of 3 failed", err)
	}
	if gw.tickerCalls.Load() != 3 {
		t.Fatalf("ticker calls = %d, want 3", gw.tickerCalls.Load())
	}
	for _, sym := range []string{"BTCUSDT", "ETHUSDT"} {
		if _, err := ind.GetIndicators(context.Background(), sym); err != nil {
			t.Fatalf("GetIndicators %s: %v", sym, err)
		}
	}
	if m.count(m.hits, "indicators") != 2 {
		t.Fatalf("healthy symbols were not warmed")
	}
}

func TestWarmerRejectsBadSpec(t *testing.T) {
	if _, err := NewWarmer(nil, nil, "not a cron", time.Second, logger.Nop()); err == nil {
		t.Fatalf("expected spec error")
	}
}

func TestWarmerStartStop(t *testing.T) {
	gw := &fakeGateway{ticker: models.TickerSnapshot{LastPrice: 1}, candles: staircase(60)}
	w, err := NewWarmer(newIndicatorSvc(gw, nil, newFakeMetrics()), []string{"BTCUSDT"}, "@every 1h", time.Second, logger.Nop())
	if err != nil {
		t.Fatalf("NewWarmer: %v", err)
	}
	w.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Stop(ctx)
}
