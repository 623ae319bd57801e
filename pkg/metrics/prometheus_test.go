package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounters(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordCacheLookup("indicators", true)
	r.RecordCacheLookup("indicators", false)
	r.RecordCacheLookup("indicators", false)
	r.RecordSentimentFallback("timeout")
	r.RecordError("upstream_ticker")
	r.RecordMessageSent("kafka", "BTCUSDT")
	r.RecordLastPrice("BTCUSDT", 64000.5)

	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("indicators", "miss")); got != 2 {
		t.Fatalf("cache misses = %v", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("indicators", "hit")); got != 1 {
		t.Fatalf("cache hits = %v", got)
	}
	if got := testutil.ToFloat64(r.sentimentFallbacks.WithLabelValues("timeout")); got != 1 {
		t.Fatalf("fallbacks = %v", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("upstream_ticker")); got != 1 {
		t.Fatalf("errors = %v", got)
	}
	if got := testutil.ToFloat64(r.messagesSent.WithLabelValues("kafka", "BTCUSDT")); got != 1 {
		t.Fatalf("sent = %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("BTCUSDT")); got != 64000.5 {
		t.Fatalf("last price = %v", got)
	}
}

func TestRecorderHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.RecordLatency("klines", 0.12)
	r.RecordStage("FETCH_HISTORY", 0.3)

	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("latency series = %d", n)
	}
	if n := testutil.CollectAndCount(r.stageDuration); n != 1 {
		t.Fatalf("stage series = %d", n)
	}
}

func TestRecorderIsolatedRegistries(t *testing.T) {
	// two recorders must not collide when each owns its registry
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
