package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestWrapKey(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "marketpulse")
	defer c.Close()

	if got := c.wrapKey("prediction:BTCUSDT"); got != "marketpulse:prediction:BTCUSDT" {
		t.Fatalf("wrapKey = %q", got)
	}
	got := c.wrapKeys("a", "b")
	if len(got) != 2 || got[0] != "marketpulse:a" || got[1] != "marketpulse:b" {
		t.Fatalf("wrapKeys = %v", got)
	}

	bare := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "")
	defer bare.Close()
	if got := bare.wrapKey("k"); got != "k" {
		t.Fatalf("empty prefix should leave key alone, got %q", got)
	}
}

func TestNewRedisCacheFailsWithoutServer(t *testing.T) {
	_, err := NewRedisCache(
		WithRedisHost("127.0.0.1"),
		WithRedisPort(1),
		WithRedisPingTimeout(200*time.Millisecond),
	)
	if err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestSetReportsConnectionError(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}), "p")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute); err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
	if err := c.Set(ctx, "k", make(chan int), time.Minute); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestGenerateKey(t *testing.T) {
	if got := GenerateKey("indicators", "BTCUSDT"); got != "indicators:BTCUSDT" {
		t.Fatalf("got %q", got)
	}
}
