package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/joelkehle/startup-valuation/internal/valuation"
)

const Disclaimer = "This is a heuristic planning estimate, not a fairness opinion or investment recommendation. " +
	"Figures follow stage benchmarks and the inputs provided; they are not audited."

// Reference URLs used in the report markdown.
const (
	berkusMethodURL = "https://en.wikipedia.org/wiki/Berkus_method"
	revenueMultiURL = "https://www.investopedia.com/terms/r/revenue-multiple.asp"
	burnMultipleURL = "https://www.investopedia.com/terms/b/burnrate.asp"
	netRetentionURL = "https://www.investopedia.com/terms/n/net-revenue-retention.asp"
	tamSamSomURL    = "https://www.investopedia.com/terms/t/tam.asp"
)

// Document is everything a report needs: the saved input, its snapshot and
// the generated insights.
type Document struct {
	ID          string
	Input       valuation.Input
	Snapshot    valuation.Snapshot
	Insights    []string
	Profile     valuation.StageProfile
	GeneratedAt time.Time
}

// NewDocument computes insights and resolves the stage profile for a snapshot.
func NewDocument(id string, in valuation.Input, snap valuation.Snapshot, profiles valuation.StageProfiles) Document {
	return Document{
		ID:          id,
		Input:       in,
		Snapshot:    snap,
		Insights:    valuation.ComputeInsights(in, snap),
		Profile:     profiles.Profile(in.Stage),
		GeneratedAt: time.Now().UTC(),
	}
}

func BuildMarkdown(doc Document) string {
	var b strings.Builder
	snap := doc.Snapshot
	in := doc.Input

	fmt.Fprintf(&b, "# Startup Valuation Report\n\n")
	fmt.Fprintf(&b, "- Company: %s\n", sanitize(companyName(in)))
	if doc.ID != "" {
		fmt.Fprintf(&b, "- Reference: %s\n", sanitize(doc.ID))
	}
	fmt.Fprintf(&b, "- Stage: %s (typical range %s)\n", snap.StageLabel, doc.Profile.TypicalRange)
	fmt.Fprintf(&b, "- Date: %s\n", doc.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Method: %s\n\n", methodName(snap.Method))
	fmt.Fprintf(&b, "%s\n\n", Disclaimer)

	// --- Scenarios ---
	fmt.Fprintf(&b, "## Valuation Scenarios\n\n")
	fmt.Fprintf(&b, "| Scenario | Valuation | vs. Base |\n")
	fmt.Fprintf(&b, "|----------|-----------|----------|\n")
	fmt.Fprintf(&b, "| Bear | %s | %s |\n", valuation.FormatUSD(snap.Bear), relative(snap.Bear, snap.Base))
	fmt.Fprintf(&b, "| Base | %s | — |\n", valuation.FormatUSD(snap.Base))
	fmt.Fprintf(&b, "| Bull | %s | %s |\n\n", valuation.FormatUSD(snap.Bull), relative(snap.Bull, snap.Base))
	fmt.Fprintf(&b, "- Confidence: %s\n", valuation.FormatPercent(snap.Confidence))
	if snap.Method == valuation.MethodRevenueMultiple {
		fmt.Fprintf(&b, "- Revenue multiple: %s\n", valuation.FormatMultiple(snap.RevenueMultiple))
		fmt.Fprintf(&b, "- Forward 12-month ARR: %s\n", valuation.FormatUSD(snap.ForwardARR))
	}
	fmt.Fprintf(&b, "- Market potential contribution: %s\n\n", valuation.FormatUSD(snap.MarketPotential))

	// --- Insights ---
	fmt.Fprintf(&b, "## Key Insights\n\n")
	for _, s := range doc.Insights {
		fmt.Fprintf(&b, "- %s\n", sanitize(s))
	}
	fmt.Fprintf(&b, "\n---\n\n")

	// --- Inputs ---
	fmt.Fprintf(&b, "## Inputs\n\n")
	fmt.Fprintf(&b, "Values are shown as entered. Out-of-range values are clamped before any calculation.\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Annual recurring revenue | %s |\n", valuation.FormatUSD(in.ARR*1_000_000))
	fmt.Fprintf(&b, "| Monthly growth | %.1f%% (%s annualized) |\n", in.MonthlyGrowth, valuation.FormatPercent(snap.AnnualGrowth))
	fmt.Fprintf(&b, "| Total addressable market | %s |\n", valuation.FormatUSD(in.TAM*1_000_000_000))
	fmt.Fprintf(&b, "| Gross margin | %.0f%% |\n", in.GrossMargin)
	fmt.Fprintf(&b, "| Net revenue retention | %.0f%% |\n", in.NetRetention)
	fmt.Fprintf(&b, "| Burn multiple | %.1fx |\n", in.BurnMultiple)
	fmt.Fprintf(&b, "| Team strength | %.0f / 5 |\n", in.TeamStrength)
	fmt.Fprintf(&b, "| Differentiation | %.0f / 5 |\n\n", in.Differentiation)

	// --- Lifts ---
	fmt.Fprintf(&b, "## Multiple Adjustments\n\n")
	if snap.Method == valuation.MethodBerkus {
		fmt.Fprintf(&b, "The Berkus Method does not apply revenue-multiple adjustments; all factors are neutral (1.00x).\n\n")
	} else {
		fmt.Fprintf(&b, "The stage multiple range (%.0fx–%.0fx) is interpolated by growth, then adjusted by four factors. "+
			"The final multiple is held within %.1fx–%.1fx.\n\n",
			doc.Profile.MultipleMin, doc.Profile.MultipleMax, 0.5*doc.Profile.MultipleMin, 1.2*doc.Profile.MultipleMax)
	}
	fmt.Fprintf(&b, "| Factor | Lift |\n|--------|------|\n")
	fmt.Fprintf(&b, "| Growth | %.2fx |\n", snap.Lifts.Growth)
	fmt.Fprintf(&b, "| Gross margin | %.2fx |\n", snap.Lifts.Margin)
	fmt.Fprintf(&b, "| Net retention | %.2fx |\n", snap.Lifts.Retention)
	fmt.Fprintf(&b, "| Burn efficiency | %.2fx |\n", snap.Lifts.Burn)
	fmt.Fprintf(&b, "| Team & differentiation | %.2fx |\n\n", snap.Lifts.Qualitative)

	// --- Methodology ---
	fmt.Fprintf(&b, "## How This Report Works\n\n")
	fmt.Fprintf(&b, "Concept-stage companies, and seed companies under $100K ARR, are valued with the "+
		"[Berkus Method](%s): five risk-reduction factors (idea, prototype, team, strategic relationships, "+
		"market timing) each earn a share of a fixed dollar cap. Everyone else is valued on a "+
		"[revenue multiple](%s) drawn from stage benchmarks.\n\n", berkusMethodURL, revenueMultiURL)
	fmt.Fprintf(&b, "Adjustments reward gross margin above 80%%, [net revenue retention](%s) above 120%% and a low "+
		"[burn multiple](%s), and penalize the opposite. [TAM](%s) adds a small market-potential premium capped at "+
		"5%% of the revenue valuation.\n\n", netRetentionURL, burnMultipleURL, tamSamSomURL)
	fmt.Fprintf(&b, "Bear and bull cases widen the base by a downside driven by burn and team risk and an upside driven by "+
		"growth and differentiation. Confidence rises with revenue, retention, team strength, efficiency and differentiation.\n")
	return b.String()
}

func companyName(in valuation.Input) string {
	if name := strings.TrimSpace(in.CompanyName); name != "" {
		return name
	}
	return "Unnamed company"
}

func methodName(m valuation.Method) string {
	switch m {
	case valuation.MethodBerkus:
		return "Berkus Method (pre-revenue)"
	case valuation.MethodRevenueMultiple:
		return "Revenue multiple"
	default:
		return string(m)
	}
}

func relative(v, base float64) string {
	if base == 0 {
		return "—"
	}
	return fmt.Sprintf("%+.0f%%", (v/base-1)*100)
}

// sanitize keeps user text from breaking table rows or injecting headings.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.TrimLeft(s, "#")
	return strings.TrimSpace(s)
}
