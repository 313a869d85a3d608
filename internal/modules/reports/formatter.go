package reports

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/fund-sentry/internal/modules/analysis"
)

const riskFooter = "Data comes from public endpoints and may lag or contain errors. " +
	"Scores and predictions are statistical heuristics, not investment advice."

const firstRunDisclaimer = "This is the first generated report. All figures are derived " +
	"from publicly available NAV data; nothing here constitutes a recommendation to buy " +
	"or sell any fund. Decisions and their consequences remain entirely your own."

// Formatter renders a batch into a markdown document
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Title returns the report title for a batch
func (f *Formatter) Title(batch *Batch) string {
	return "Fund Analysis Report " + batch.GeneratedAt.Format("2006-01-02")
}

// Format renders the full markdown body
func (f *Formatter) Format(batch *Batch) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", f.Title(batch))
	fmt.Fprintf(&b, "Generated at %s\n\n", batch.GeneratedAt.Format("2006-01-02 15:04:05"))

	if batch.FirstRun {
		fmt.Fprintf(&b, "> %s\n\n", firstRunDisclaimer)
	}

	if len(batch.Holdings) > 0 {
		b.WriteString("## Holdings\n\n")
		for _, r := range batch.Holdings {
			f.writeFund(&b, r, true)
		}

		b.WriteString("## Portfolio Totals\n\n")
		fmt.Fprintf(&b, "- Invested: %.2f\n", batch.Totals.Invested)
		fmt.Fprintf(&b, "- Market value: %.2f\n", batch.Totals.MarketValue)
		fmt.Fprintf(&b, "- Total profit: %.2f (%.2f%%)\n", batch.Totals.TotalProfit, batch.Totals.ReturnRate)
		fmt.Fprintf(&b, "- Today's profit: %.2f\n\n", batch.Totals.TodayProfit)
	}

	if len(batch.Watchlist) > 0 {
		b.WriteString("## Watchlist\n\n")
		for _, r := range batch.Watchlist {
			f.writeFund(&b, r, false)
		}
	}

	if batch.Failures > 0 {
		fmt.Fprintf(&b, "**Note:** %d fund(s) could not be analyzed; totals cover the remainder.\n\n", batch.Failures)
	}

	fmt.Fprintf(&b, "---\n%s\n", riskFooter)

	return b.String()
}

func (f *Formatter) writeFund(b *strings.Builder, r FundResult, held bool) {
	name := r.FundName
	if name == "" {
		name = r.FundCode
	}
	fmt.Fprintf(b, "### %s (%s)\n\n", name, r.FundCode)

	if r.Error != "" {
		fmt.Fprintf(b, "Analysis unavailable: %s\n\n", r.Error)
		return
	}

	rec := r.Record

	if held && rec.Returns != nil {
		ret := rec.Returns
		fmt.Fprintf(b, "- NAV: %.4f (cost %.4f)\n", ret.CurrentNav, ret.CostBasis)
		fmt.Fprintf(b, "- %s: %+.2f%% (%+.2f)\n", f.changeLabel(rec), ret.TodayChange, ret.TodayProfit)
		fmt.Fprintf(b, "- Total return: %+.2f%% (%+.2f)\n", ret.ReturnRate, ret.TotalProfit)
		fmt.Fprintf(b, "- Market value: %.2f\n", ret.MarketValue)
	} else {
		fmt.Fprintf(b, "- NAV: %.4f (as of %s)\n", rec.MovingAverages.CurrentNav, rec.DataDate)
	}

	if rec.PeriodReturn != nil {
		fmt.Fprintf(b, "- Return since %s: %+.2f%%\n", rec.PeriodReturn.StartDate, rec.PeriodReturn.ReturnRate)
	}

	fmt.Fprintf(b, "- Signal: %s (score %+d) — %s\n", rec.Position.Signal, rec.Position.Score, rec.Position.Recommendation)

	if len(rec.MovingAverages.Averages) > 0 {
		labels := make([]string, 0, len(rec.MovingAverages.Averages))
		for label := range rec.MovingAverages.Averages {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool { return len(labels[i]) < len(labels[j]) || (len(labels[i]) == len(labels[j]) && labels[i] < labels[j]) })

		parts := make([]string, 0, len(labels))
		for _, label := range labels {
			parts = append(parts, fmt.Sprintf("%s %.4f (%+.2f%%)", label, rec.MovingAverages.Averages[label], rec.MovingAverages.Deviations[label]))
		}
		fmt.Fprintf(b, "- Moving averages: %s\n", strings.Join(parts, ", "))
	}

	if rec.Trend.Direction != "insufficient" {
		fmt.Fprintf(b, "- Trend: %s (strength %+.2f%%, volatility %.2f)\n", rec.Trend.Direction, rec.Trend.Strength, rec.Trend.Volatility)
	}

	if n := len(rec.Prediction); n > 0 {
		last := rec.Prediction[n-1]
		fmt.Fprintf(b, "- Outlook: %.4f in %d day(s) (%+.2f%%)\n", last.PredictedNav, last.Day, last.PredictedChange)
	}

	if rec.Auxiliary != nil {
		if rec.Auxiliary.Flow != nil {
			fmt.Fprintf(b, "- Capital flow: %s\n", rec.Auxiliary.Flow.Description)
		}
		if rec.Auxiliary.Hotness != nil {
			fmt.Fprintf(b, "- Sectors: %s\n", rec.Auxiliary.Hotness.Description)
		}
	}

	b.WriteString("\n")
}

// changeLabel distinguishes a genuine same-day close from stale data
func (f *Formatter) changeLabel(rec *analysis.AnalysisRecord) string {
	if rec.IsToday {
		return "Today's change"
	}
	return fmt.Sprintf("Latest change (as of %s)", rec.DataDate)
}
