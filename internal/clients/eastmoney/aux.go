package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/fund-sentry/internal/domain"
)

// flowResponse is the capital-flow quote payload. f62 is the main net inflow.
type flowResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

// sectorKeywords maps page-content markers to sector labels. The upstream
// detail pages are Chinese; labels are what lands in reports.
var sectorKeywords = []struct {
	marker string
	label  string
}{
	{"白酒", "liquor"},
	{"医药", "healthcare"},
	{"医疗", "healthcare"},
	{"科技", "technology"},
	{"芯片", "technology"},
	{"新能源", "new energy"},
	{"电池", "new energy"},
}

// CapitalFlow retrieves a best-effort capital-flow signal for a fund.
// Failures degrade to an error the caller converts into "unavailable".
func (c *Client) CapitalFlow(ctx context.Context, fundCode string) (*domain.FlowSignal, error) {
	params := url.Values{}
	params.Set("secid", "0."+fundCode)
	params.Set("fields", "f62,f184,f66,f69,f72")
	params.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	body, err := c.get(ctx, c.cfg.FlowBaseURL+"/api/qt/stock/get?"+params.Encode(), c.refererFor(fundCode))
	if err != nil {
		return nil, err
	}

	var resp flowResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty flow data", domain.ErrMalformedPayload)
	}

	signal := &domain.FlowSignal{Trend: "flat", Description: "no significant capital movement"}
	if raw, ok := resp.Data["f62"]; ok {
		var inflow float64
		if err := json.Unmarshal(raw, &inflow); err == nil {
			signal.NetInflow = inflow
			switch {
			case inflow > 0:
				signal.Trend = "inflow"
				signal.Description = "net capital inflow over the latest session"
			case inflow < 0:
				signal.Trend = "outflow"
				signal.Description = "net capital outflow over the latest session"
			}
		}
	}

	return signal, nil
}

// SectorHotness classifies a fund's sector exposure by scanning its detail
// page for known sector markers. Best-effort only.
func (c *Client) SectorHotness(ctx context.Context, fundCode string) (*domain.HotSignal, error) {
	if c.cfg.FundPageBaseURL == "" {
		return nil, fmt.Errorf("fund page base URL not configured")
	}

	body, err := c.get(ctx, fmt.Sprintf("%s/%s.html", c.cfg.FundPageBaseURL, fundCode), "")
	if err != nil {
		return nil, err
	}
	content := string(body)

	signal := &domain.HotSignal{Sentiment: "neutral"}

	seen := map[string]bool{}
	for _, kw := range sectorKeywords {
		if seen[kw.label] {
			continue
		}
		if strings.Contains(content, kw.marker) {
			signal.HotSectors = append(signal.HotSectors, kw.label)
			seen[kw.label] = true
		}
	}

	if len(signal.HotSectors) > 0 {
		signal.Sentiment = "active"
		top := signal.HotSectors
		if len(top) > 2 {
			top = top[:2]
		}
		signal.Description = "currently exposed to " + strings.Join(top, ", ")
	} else {
		signal.Description = "broadly diversified fund"
	}

	return signal, nil
}
