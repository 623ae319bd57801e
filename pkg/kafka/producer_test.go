package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type memWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(WithRegisterer(prometheus.NewRegistry())); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestProducerPublishEncodesValues(t *testing.T) {
	w := &memWriter{}
	reg := prometheus.NewRegistry()
	p, err := NewProducer(WithWriter(w), WithRegisterer(reg), WithCompression("snappy"))
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}

	ctx := context.Background()
	if err := p.Publish(ctx, "snapshots", []byte("BTCUSDT"), map[string]any{"price": 1.5}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.PublishBatch(ctx, "snapshots", []Message{
		{Key: []byte("a"), Value: "raw"},
		{Key: []byte("b"), Value: []byte("bytes")},
	}); err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}

	if len(w.msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(w.msgs))
	}
	if string(w.msgs[0].Value) != `{"price":1.5}` || string(w.msgs[0].Key) != "BTCUSDT" || w.msgs[0].Topic != "snapshots" {
		t.Fatalf("first message = %+v", w.msgs[0])
	}
	if string(w.msgs[1].Value) != "raw" || string(w.msgs[2].Value) != "bytes" {
		t.Fatalf("raw values not passed through")
	}
	if got := testutil.ToFloat64(p.metrics.msgs.WithLabelValues("snapshots", "snappy", "ok")); got != 3 {
		t.Fatalf("ok messages metric = %v, want 3", got)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close: %v closed=%v", err, w.closed)
	}
}

func TestProducerWriteErrorCounted(t *testing.T) {
	w := &memWriter{err: errors.New("broker down")}
	p, _ := NewProducer(WithWriter(w), WithRegisterer(prometheus.NewRegistry()))

	if err := p.Publish(context.Background(), "t", nil, "x"); err == nil {
		t.Fatalf("expected error")
	}
	if got := testutil.ToFloat64(p.metrics.errs.WithLabelValues("t")); got != 1 {
		t.Fatalf("errors metric = %v", got)
	}
}

func TestProducerMarshalError(t *testing.T) {
	w := &memWriter{}
	p, _ := NewProducer(WithWriter(w), WithRegisterer(prometheus.NewRegistry()))
	if err := p.Publish(context.Background(), "t", nil, make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
	if len(w.msgs) != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestParseCompression(t *testing.T) {
	cases := map[string]kafka.Compression{
		"gzip": kafka.Gzip, "snappy": kafka.Snappy, "lz4": kafka.Lz4, "zstd": kafka.Zstd, "": kafka.Gzip,
	}
	for in, want := range cases {
		if got := parseCompression(in); got != want {
			t.Fatalf("parseCompression(%q) = %v, want %v", in, got, want)
		}
	}
}
