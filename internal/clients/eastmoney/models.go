package eastmoney

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/fund-sentry/internal/domain"
)

// historyResponse is the structured history payload ("lsjz" endpoint).
// Numeric fields arrive as strings and may be empty.
type historyResponse struct {
	Data struct {
		LSJZList []historyItem `json:"LSJZList"`
	} `json:"Data"`
	ErrCode int `json:"ErrCode"`
}

type historyItem struct {
	Date           string `json:"FSRQ"`  // value date, YYYY-MM-DD
	Nav            string `json:"DWJZ"`  // unit NAV
	AccumulatedNav string `json:"LJJZ"`  // accumulated NAV, may be empty
	ChangeRate     string `json:"JZZZL"` // daily change %, may be empty
}

// estimatePayload is the intraday estimate payload ("fundgz" endpoint),
// always delivered inside a callback envelope.
type estimatePayload struct {
	FundCode     string `json:"fundcode"`
	Name         string `json:"name"`
	OfficialNav  string `json:"dwjz"`   // last published closing NAV
	EstimateNav  string `json:"gsz"`    // intraday estimated NAV
	EstimateRate string `json:"gszzl"`  // estimated change %
	EstimateTime string `json:"gztime"` // "2006-01-02 15:04"
}

// unwrapCallback strips a callback-style text envelope, returning the JSON
// between the first '(' and the last ')'. Raw JSON passes through untouched.
func unwrapCallback(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed, nil
	}

	start := strings.Index(trimmed, "(")
	end := strings.LastIndex(trimmed, ")")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("%w: no callback envelope found", domain.ErrMalformedPayload)
	}

	return trimmed[start+1 : end], nil
}

// parseHistoryItems converts wire items into a date-ascending series.
// Items with unparsable dates or NAVs are dropped; a missing accumulated
// NAV falls back to the unit NAV.
func parseHistoryItems(items []historyItem) []domain.HistoricalRecord {
	series := make([]domain.HistoricalRecord, 0, len(items))
	for _, item := range items {
		date, err := time.Parse(domain.DateFormat, item.Date)
		if err != nil {
			continue
		}

		nav, err := strconv.ParseFloat(item.Nav, 64)
		if err != nil || nav < 0 {
			continue
		}

		accNav := nav
		if v, err := strconv.ParseFloat(item.AccumulatedNav, 64); err == nil {
			accNav = v
		}

		changeRate := 0.0
		if v, err := strconv.ParseFloat(item.ChangeRate, 64); err == nil {
			changeRate = v
		}

		series = append(series, domain.HistoricalRecord{
			Date:           date,
			Nav:            nav,
			AccumulatedNav: accNav,
			ChangeRate:     changeRate,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}

// parseFloatField parses a numeric string field, returning 0 when absent
func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
