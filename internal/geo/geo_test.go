package geo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mathmotion/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCurrencyFromLocale(t *testing.T) {
	tests := []struct {
		header string
		want   pricing.Currency
	}{
		{"en-IN,en;q=0.9", pricing.INR},
		{"hi", pricing.INR},
		{"hi-IN", pricing.INR},
		{"en-US,en;q=0.9", pricing.USD},
		{"fr-FR", pricing.USD},
		{"", pricing.USD},
		{"en;q=0.8, en-IN;q=0.7", pricing.INR},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrencyFromLocale(tt.header), "header %q", tt.header)
	}
}

func TestDetectOverrideWins(t *testing.T) {
	d := New("http://localhost:1", nil, testLogger())
	assert.Equal(t, pricing.INR, d.Detect(context.Background(), "203.0.113.9", "en-US", "inr"))
	assert.Equal(t, pricing.USD, d.Detect(context.Background(), "203.0.113.9", "en-IN", "USD"))
}

func TestDetectFromLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"country_code":"IN"}`))
	}))
	defer srv.Close()

	d := New(srv.URL, nil, testLogger())
	assert.Equal(t, pricing.INR, d.Detect(context.Background(), "203.0.113.9", "en-US", ""))
}

func TestDetectFallsBackToLocaleOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer srv.Close()

	d := New(srv.URL, nil, testLogger())
	d.client.Timeout = 50 * time.Millisecond

	assert.Equal(t, pricing.INR, d.Detect(context.Background(), "203.0.113.9", "en-IN", ""))
	assert.Equal(t, pricing.USD, d.Detect(context.Background(), "203.0.113.9", "en-US", ""))
}

func TestDetectFallsBackOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := New(srv.URL, nil, testLogger())
	assert.Equal(t, pricing.INR, d.Detect(context.Background(), "203.0.113.9", "hi-IN", ""))
}
