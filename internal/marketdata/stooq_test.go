package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"options-wheel-lab/internal/domain"
)

func TestParseDailyCSV(t *testing.T) {
	body := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-02,100.5,101.0,99.8,100.9,1200\n" +
		"2024-01-03,100.9,102.1,100.2,101.7,1500\n"

	series, err := parseDailyCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if !series[0].Date.Equal(domain.NewDate(2024, time.January, 2)) {
		t.Errorf("unexpected first date: %v", series[0].Date)
	}
	if series[1].Close != 101.7 {
		t.Errorf("expected close 101.7, got %f", series[1].Close)
	}
}

func TestParseDailyCSV_HeaderOnly(t *testing.T) {
	series, err := parseDailyCSV(strings.NewReader("Date,Open,High,Low,Close,Volume\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected empty series, got %d points", len(series))
	}
}

func TestSeries_UpstreamErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewStooqSource(StooqOptions{BaseURL: srv.URL})

	series, err := src.Series(context.Background(), "AAPL", domain.NewDate(2024, time.January, 1), domain.NewDate(2024, time.February, 1))
	if err != nil {
		t.Fatalf("upstream failure must not surface as error, got %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected empty series on upstream failure, got %d points", len(series))
	}
}

func TestSeries_CachedAcrossCalls(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n2024-01-02,1,1,1,99.5,10\n"))
	}))
	defer srv.Close()

	src := NewStooqSource(StooqOptions{BaseURL: srv.URL})
	start := domain.NewDate(2024, time.January, 1)
	end := domain.NewDate(2024, time.January, 31)

	for i := 0; i < 3; i++ {
		series, err := src.Series(context.Background(), "AAPL", start, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(series) != 1 || series[0].Close != 99.5 {
			t.Fatalf("unexpected series: %+v", series)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestSeries_RequestWindowIncludesLookback(t *testing.T) {
	var gotD1 string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotD1 = r.URL.Query().Get("d1")
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n"))
	}))
	defer srv.Close()

	src := NewStooqSource(StooqOptions{BaseURL: srv.URL})
	if _, err := src.Series(context.Background(), "SPY", domain.NewDate(2024, time.March, 10), domain.NewDate(2024, time.March, 20)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotD1 != "20240303" {
		t.Errorf("expected lookback start 20240303, got %s", gotD1)
	}
}

func TestRiskFreeRate_ParsesPageAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<html><dl><dd class="value">3.25</dd></dl></html>`))
	}))
	defer srv.Close()

	src := NewStooqSource(StooqOptions{RateURL: srv.URL})

	for i := 0; i < 2; i++ {
		if got := src.RiskFreeRate(context.Background()); got != 0.0325 {
			t.Errorf("expected 0.0325, got %f", got)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected rate fetched once, got %d hits", hits.Load())
	}
}

func TestRiskFreeRate_FallbackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewStooqSource(StooqOptions{RateURL: srv.URL})

	if got := src.RiskFreeRate(context.Background()); got != FallbackRiskFreeRate {
		t.Errorf("expected fallback %f, got %f", FallbackRiskFreeRate, got)
	}
}

func TestRiskFreeRate_ConfiguredFallbackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewStooqSource(StooqOptions{RateURL: srv.URL, FallbackRate: 0.042})

	if got := src.RiskFreeRate(context.Background()); got != 0.042 {
		t.Errorf("expected configured fallback 0.042, got %f", got)
	}
}

func TestNewStooqSource_TimeoutSetsClient(t *testing.T) {
	src := NewStooqSource(StooqOptions{Timeout: 3 * time.Second})
	if src.client.Timeout != 3*time.Second {
		t.Errorf("expected client timeout 3s, got %v", src.client.Timeout)
	}
}
