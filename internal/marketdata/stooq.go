package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"options-wheel-lab/internal/domain"
)

// Default endpoints and client settings.
const (
	DefaultStooqBaseURL = "https://stooq.com/q/d/l/"
	DefaultRateURL      = "https://www.ecb.europa.eu/stats/financial_markets_and_interest_rates/euro_short-term_rate/html/index.en.html"

	defaultCacheTTL    = 24 * time.Hour
	defaultHTTPTimeout = 20 * time.Second
)

// rateValuePattern extracts the published short-term rate from the ECB page.
var rateValuePattern = regexp.MustCompile(`<dd class="value">\s*(-?\d+(?:\.\d+)?)\s*</dd>`)

// StooqSource implements Source against the Stooq daily-close CSV endpoint,
// with the ECB euro short-term rate page as the risk-free-rate source.
// Series and rate responses are cached so repeated metric passes within the
// TTL see identical data.
type StooqSource struct {
	baseURL      string
	rateURL      string
	fallbackRate float64
	client       *http.Client
	cache        *gocache.Cache
}

// StooqOptions configures a StooqSource. Zero values select defaults.
type StooqOptions struct {
	BaseURL      string
	RateURL      string
	FallbackRate float64 // rate used when the upstream fetch fails
	CacheTTL     time.Duration
	Timeout      time.Duration // HTTP client timeout, ignored when Client is set
	Client       *http.Client
}

// NewStooqSource creates a Stooq-backed price source.
func NewStooqSource(opts StooqOptions) *StooqSource {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultStooqBaseURL
	}
	if opts.RateURL == "" {
		opts.RateURL = DefaultRateURL
	}
	if opts.FallbackRate == 0 {
		opts.FallbackRate = FallbackRiskFreeRate
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultHTTPTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	return &StooqSource{
		baseURL:      opts.BaseURL,
		rateURL:      opts.RateURL,
		fallbackRate: opts.FallbackRate,
		client:       opts.Client,
		cache:        gocache.New(opts.CacheTTL, opts.CacheTTL),
	}
}

var _ Source = (*StooqSource)(nil)

// Series fetches daily closes for [start-LookbackDays, end]. Upstream
// failures and unknown symbols both resolve to an empty series: missing
// market data must never abort a reconstruction.
func (s *StooqSource) Series(ctx context.Context, symbol string, start, end time.Time) ([]domain.ClosePrice, error) {
	from := domain.Day(start).AddDate(0, 0, -LookbackDays)
	to := domain.Day(end)

	cacheKey := fmt.Sprintf("series|%s|%s|%s", symbol, from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]domain.ClosePrice), nil
	}

	req, err := s.seriesRequest(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[marketdata] %s: fetch failed, degrading to empty series: %v", symbol, err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[marketdata] %s: upstream status %d, degrading to empty series", symbol, resp.StatusCode)
		return nil, nil
	}

	series, err := parseDailyCSV(resp.Body)
	if err != nil {
		log.Printf("[marketdata] %s: malformed response, degrading to empty series: %v", symbol, err)
		return nil, nil
	}

	s.cache.Set(cacheKey, series, gocache.DefaultExpiration)
	return series, nil
}

// RiskFreeRate fetches the euro short-term rate, cached for the TTL.
// Any failure degrades to the configured fallback rate.
func (s *StooqSource) RiskFreeRate(ctx context.Context) float64 {
	const cacheKey = "risk-free-rate"
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(float64)
	}

	rate := s.fetchRiskFreeRate(ctx)
	s.cache.Set(cacheKey, rate, gocache.DefaultExpiration)
	return rate
}

func (s *StooqSource) fetchRiskFreeRate(ctx context.Context) float64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.rateURL, nil)
	if err != nil {
		return s.fallbackRate
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; options-wheel-lab)")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[marketdata] risk-free rate fetch failed, using fallback %.2f: %v", s.fallbackRate, err)
		return s.fallbackRate
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[marketdata] risk-free rate status %d, using fallback %.2f", resp.StatusCode, s.fallbackRate)
		return s.fallbackRate
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return s.fallbackRate
	}

	m := rateValuePattern.FindSubmatch(body)
	if m == nil {
		log.Printf("[marketdata] rate value not found in page, using fallback %.2f", s.fallbackRate)
		return s.fallbackRate
	}

	pct, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return s.fallbackRate
	}
	return pct / 100
}

func (s *StooqSource) seriesRequest(ctx context.Context, symbol string, from, to time.Time) (*http.Request, error) {
	q := url.Values{}
	q.Set("s", strings.ToLower(symbol)+".us")
	q.Set("d1", from.Format("20060102"))
	q.Set("d2", to.Format("20060102"))
	q.Set("i", "d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build series request for %s: %w", symbol, err)
	}
	return req, nil
}

// parseDailyCSV reads Stooq's Date,Open,High,Low,Close,Volume layout.
func parseDailyCSV(r io.Reader) ([]domain.ClosePrice, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		// Header only or empty body: no data for the symbol.
		return nil, nil
	}

	header := records[0]
	dateIdx, closeIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Date":
			dateIdx = i
		case "Close":
			closeIdx = i
		}
	}
	if dateIdx < 0 || closeIdx < 0 {
		return nil, fmt.Errorf("csv missing Date/Close columns")
	}

	series := make([]domain.ClosePrice, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) <= dateIdx || len(rec) <= closeIdx {
			continue
		}
		date, err := domain.ParseDate(strings.TrimSpace(rec[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", rec[dateIdx], err)
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(rec[closeIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", rec[closeIdx], err)
		}
		series = append(series, domain.ClosePrice{Date: date, Close: close})
	}
	return series, nil
}
