// Package eastmoney fetches fund NAV history from the public Eastmoney
// endpoints, falling through a ranked list of data sources until one
// returns usable data.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/fund-sentry/internal/domain"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultRateLimit = 2 // requests per second, politeness toward upstream
	historyPageSize  = 10000
)

// Config holds client configuration
type Config struct {
	HistoryBaseURL  string // structured history endpoint (primary)
	EstimateBaseURL string // intraday estimate endpoint (secondary)
	MirrorBaseURL   string // history mirror, callback-wrapped (tertiary)
	FlowBaseURL     string // capital-flow quote endpoint (auxiliary)
	FundPageBaseURL string // fund detail pages (auxiliary, sector hints)
	Timeout         time.Duration
	RateLimit       int
	Log             zerolog.Logger
}

// Client is a rate-limited NAV data client with source fallback
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates a new Eastmoney client
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		log:     cfg.Log.With().Str("client", "eastmoney").Logger(),
	}
}

// historyStrategy is one ranked data source for NAV history
type historyStrategy struct {
	name string
	fn   func(ctx context.Context, fundCode string, startDate time.Time, lookbackDays int) ([]domain.HistoricalRecord, error)
}

// FetchSeries retrieves the NAV series for a fund, trying each data source
// in order. A strategy fails softly on network errors, non-200 responses or
// malformed payloads; the first non-empty date-ascending series wins. When
// every source is exhausted the call fails with domain.ErrDataUnavailable.
//
// startDate takes precedence over lookbackDays when non-zero.
func (c *Client) FetchSeries(ctx context.Context, fundCode string, startDate time.Time, lookbackDays int) ([]domain.HistoricalRecord, error) {
	strategies := []historyStrategy{
		{name: "history", fn: c.fetchHistory},
		{name: "estimate", fn: c.fetchEstimateAsSeries},
		{name: "mirror", fn: c.fetchHistoryMirror},
	}

	for _, strategy := range strategies {
		series, err := strategy.fn(ctx, fundCode, startDate, lookbackDays)
		if err != nil {
			c.log.Warn().
				Err(err).
				Str("fund", fundCode).
				Str("source", strategy.name).
				Msg("Data source failed, advancing fallback chain")
			continue
		}
		if len(series) == 0 {
			c.log.Debug().
				Str("fund", fundCode).
				Str("source", strategy.name).
				Msg("Data source returned no records")
			continue
		}

		c.log.Info().
			Str("fund", fundCode).
			Str("source", strategy.name).
			Int("records", len(series)).
			Msg("Fetched NAV history")
		return series, nil
	}

	return nil, fmt.Errorf("fund %s: %w", fundCode, domain.ErrDataUnavailable)
}

// LatestQuote returns the most recent valuation for a fund. The official
// history head is preferred; when unavailable the intraday estimate endpoint
// supplies a quote tagged ProvenanceEstimate, which is not a closing NAV.
func (c *Client) LatestQuote(ctx context.Context, fundCode string) (domain.Quote, error) {
	series, err := c.fetchHistory(ctx, fundCode, time.Time{}, 30)
	if err == nil && len(series) > 0 {
		head := series[len(series)-1]
		return domain.Quote{
			FundCode:   fundCode,
			Date:       head.Date,
			Nav:        head.Nav,
			ChangeRate: head.ChangeRate,
			Provenance: domain.ProvenanceOfficial,
		}, nil
	}

	payload, err := c.fetchEstimate(ctx, fundCode)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("fund %s: %w", fundCode, domain.ErrDataUnavailable)
	}

	date := time.Now()
	if len(payload.EstimateTime) >= len(domain.DateFormat) {
		if d, err := time.Parse(domain.DateFormat, payload.EstimateTime[:len(domain.DateFormat)]); err == nil {
			date = d
		}
	}

	return domain.Quote{
		FundCode:   fundCode,
		FundName:   payload.Name,
		Date:       date,
		Nav:        parseFloatField(payload.EstimateNav),
		ChangeRate: parseFloatField(payload.EstimateRate),
		Provenance: domain.ProvenanceEstimate,
	}, nil
}

// fetchHistory queries the primary structured history endpoint. The payload
// may be raw JSON or wrapped in a callback envelope; both are handled.
func (c *Client) fetchHistory(ctx context.Context, fundCode string, startDate time.Time, lookbackDays int) ([]domain.HistoricalRecord, error) {
	return c.fetchHistoryFrom(ctx, c.cfg.HistoryBaseURL, "", fundCode, startDate, lookbackDays)
}

// fetchHistoryMirror queries the tertiary mirror with an explicit callback
// parameter, so the payload always needs unwrapping.
func (c *Client) fetchHistoryMirror(ctx context.Context, fundCode string, startDate time.Time, lookbackDays int) ([]domain.HistoricalRecord, error) {
	return c.fetchHistoryFrom(ctx, c.cfg.MirrorBaseURL, "jQuery", fundCode, startDate, lookbackDays)
}

func (c *Client) fetchHistoryFrom(ctx context.Context, baseURL, callback, fundCode string, startDate time.Time, lookbackDays int) ([]domain.HistoricalRecord, error) {
	endDate := time.Now()
	if startDate.IsZero() {
		startDate = endDate.AddDate(0, 0, -lookbackDays)
	}

	params := url.Values{}
	if callback != "" {
		params.Set("callback", callback)
	}
	params.Set("fundCode", fundCode)
	params.Set("pageIndex", "1")
	params.Set("pageSize", strconv.Itoa(historyPageSize))
	params.Set("startDate", startDate.Format(domain.DateFormat))
	params.Set("endDate", endDate.Format(domain.DateFormat))
	params.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	body, err := c.get(ctx, baseURL+"/f10/lsjz?"+params.Encode(), c.refererFor(fundCode))
	if err != nil {
		return nil, err
	}

	raw, err := unwrapCallback(string(body))
	if err != nil {
		return nil, err
	}

	var resp historyResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	return parseHistoryItems(resp.Data.LSJZList), nil
}

// fetchEstimateAsSeries adapts the single-record estimate endpoint to the
// series contract. The record is an intraday estimate, kept only as a last
// resort before the mirror, and carries no accumulated NAV of its own.
func (c *Client) fetchEstimateAsSeries(ctx context.Context, fundCode string, _ time.Time, _ int) ([]domain.HistoricalRecord, error) {
	payload, err := c.fetchEstimate(ctx, fundCode)
	if err != nil {
		return nil, err
	}

	nav := parseFloatField(payload.OfficialNav)
	if nav <= 0 {
		return nil, nil
	}

	date := time.Now()
	if len(payload.EstimateTime) >= len(domain.DateFormat) {
		if d, err := time.Parse(domain.DateFormat, payload.EstimateTime[:len(domain.DateFormat)]); err == nil {
			date = d
		}
	}

	return []domain.HistoricalRecord{{
		Date:           date,
		Nav:            nav,
		AccumulatedNav: nav,
		ChangeRate:     parseFloatField(payload.EstimateRate),
	}}, nil
}

func (c *Client) fetchEstimate(ctx context.Context, fundCode string) (*estimatePayload, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/js/%s.js", c.cfg.EstimateBaseURL, fundCode), c.refererFor(fundCode))
	if err != nil {
		return nil, err
	}

	raw, err := unwrapCallback(string(body))
	if err != nil {
		return nil, err
	}

	var payload estimatePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	return &payload, nil
}

// get performs a rate-limited GET request with browser-like headers
func (c *Client) get(ctx context.Context, rawURL, referer string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (c *Client) refererFor(fundCode string) string {
	if c.cfg.FundPageBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.html", c.cfg.FundPageBaseURL, fundCode)
}
