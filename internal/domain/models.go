package domain

import "time"

// DateFormat is the calendar-date layout used by the upstream NAV endpoints
const DateFormat = "2006-01-02"

// HistoricalRecord is a single dated net-asset-value observation for a fund.
// A series is always sorted ascending by date with unique dates.
type HistoricalRecord struct {
	Date           time.Time `json:"date"`
	Nav            float64   `json:"nav"`
	AccumulatedNav float64   `json:"accumulated_nav"`
	ChangeRate     float64   `json:"change_rate"` // signed daily percentage
}

// Provenance identifies the trust level of a quote's data source
type Provenance string

const (
	// ProvenanceOfficial marks a published closing NAV from the structured history feed
	ProvenanceOfficial Provenance = "official"
	// ProvenanceEstimate marks a same-day intraday estimate, not a closing NAV
	ProvenanceEstimate Provenance = "estimate"
)

// Quote is the latest available valuation for a fund, tagged with where it
// came from so consumers can distinguish an official close from a live
// estimate without scattered boolean flags.
type Quote struct {
	FundCode   string     `json:"fund_code"`
	FundName   string     `json:"fund_name,omitempty"`
	Date       time.Time  `json:"date"`
	Nav        float64    `json:"nav"`
	ChangeRate float64    `json:"change_rate"`
	Provenance Provenance `json:"provenance"`
}

// IsAuthoritative reports whether the quote is a published closing NAV
func (q Quote) IsAuthoritative() bool {
	return q.Provenance == ProvenanceOfficial
}

// IsToday reports whether the quote's date matches the given calendar day
func (q Quote) IsToday(now time.Time) bool {
	return q.Date.Format(DateFormat) == now.Format(DateFormat)
}

// FlowSignal is a best-effort capital-flow reading for a fund. Absence of
// data is an expected, non-exceptional outcome.
type FlowSignal struct {
	NetInflow   float64 `json:"net_inflow"` // main net inflow, CNY
	Trend       string  `json:"trend"`      // inflow / outflow / flat
	Description string  `json:"description"`
}

// HotSignal is a best-effort sector/hotness classification for a fund
type HotSignal struct {
	FundType   string   `json:"fund_type,omitempty"`
	HotSectors []string `json:"hot_sectors,omitempty"`
	Sentiment  string   `json:"sentiment"` // active / neutral
	Description string  `json:"description"`
}

// AuxiliarySignals groups the optional secondary-endpoint heuristics.
// Nil members mean "unavailable", never an error.
type AuxiliarySignals struct {
	Flow    *FlowSignal `json:"flow,omitempty"`
	Hotness *HotSignal  `json:"hotness,omitempty"`
}

// Navs extracts the NAV column from a series
func Navs(series []HistoricalRecord) []float64 {
	navs := make([]float64, len(series))
	for i, r := range series {
		navs[i] = r.Nav
	}
	return navs
}

// ChangeRates extracts the daily change-rate column from a series
func ChangeRates(series []HistoricalRecord) []float64 {
	rates := make([]float64, len(series))
	for i, r := range series {
		rates[i] = r.ChangeRate
	}
	return rates
}
