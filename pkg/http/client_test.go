package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendAndParseDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			t.Errorf("missing query param: %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("missing header")
		}
		_, _ = w.Write([]byte(`{"serverTime": 1700000000000}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(2 * time.Second))
	var dest struct {
		ServerTime int64 `json:"serverTime"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL + "/api/v3/time",
		Headers:     map[string]string{"X-Test": "1"},
		QueryParams: map[string][]string{"symbol": {"BTCUSDT"}},
	}, &dest)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if dest.ServerTime != 1700000000000 {
		t.Fatalf("unexpected decode %+v", dest)
	}
}

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":-1003,"msg":"Too many requests"}`))
	}))
	defer srv.Close()

	c := NewClient()
	err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusTooManyRequests || se.Body != `{"code":-1003,"msg":"Too many requests"}` {
		t.Fatalf("unexpected status error %+v", se)
	}
}

func TestSendAndParseRawBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	}))
	defer srv.Close()

	var raw []byte
	if err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &raw); err != nil {
		t.Fatalf("send: %v", err)
	}
	if string(raw) != "plain" {
		t.Fatalf("unexpected body %q", raw)
	}
}

func TestSendAndParseContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewClient().SendAndParse(ctx, &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
