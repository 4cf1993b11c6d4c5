package leakage

import (
	"strings"

	"github.com/wonny/billflow/backend/pkg/money"
)

const (
	topLeakages   = 15
	topQuickWins  = 5
	typeSeparator = " - "
)

// TypeGroup aggregates leakages of one category
type TypeGroup struct {
	Count       int       `json:"count"`
	AnnualTotal float64   `json:"annual_total"`
	Items       []Leakage `json:"items"`
}

// Report is the detailed leakage view
type Report struct {
	TotalAnnualLeakage  float64               `json:"total_annual_leakage"`
	TotalMonthlyLeakage float64               `json:"total_monthly_leakage"`
	LeakageCount        int                   `json:"leakage_count"`
	ByType              map[string]*TypeGroup `json:"by_type"`
	TopLeakages         []Leakage             `json:"top_leakages"`
	QuickWins           []Leakage             `json:"quick_wins"`
}

// Category returns the label prefix before " - " ("Pricing - Below Market Rate" -> "Pricing")
func Category(leakType string) string {
	if i := strings.Index(leakType, typeSeparator); i >= 0 {
		return leakType[:i]
	}
	return leakType
}

// TotalAnnual sums annual amounts
func TotalAnnual(items []Leakage) float64 {
	values := make([]float64, len(items))
	for i, l := range items {
		values[i] = l.AmountAnnual
	}
	return money.Round2(money.Sum(values...))
}

// BuildReport groups an already sorted leakage list
func BuildReport(items []Leakage) Report {
	r := Report{
		TotalAnnualLeakage: TotalAnnual(items),
		LeakageCount:       len(items),
		ByType:             map[string]*TypeGroup{},
		TopLeakages:        head(items, topLeakages),
		QuickWins:          []Leakage{},
	}

	monthly := make([]float64, len(items))
	for i, l := range items {
		monthly[i] = l.AmountMonthly

		cat := Category(l.LeakType)
		g, ok := r.ByType[cat]
		if !ok {
			g = &TypeGroup{}
			r.ByType[cat] = g
		}
		g.Count++
		g.AnnualTotal = money.Sum(g.AnnualTotal, l.AmountAnnual)
		g.Items = append(g.Items, l)

		if l.FixEffort == EffortLow && len(r.QuickWins) < topQuickWins {
			r.QuickWins = append(r.QuickWins, l)
		}
	}
	r.TotalMonthlyLeakage = money.Round2(money.Sum(monthly...))
	return r
}

func head(items []Leakage, n int) []Leakage {
	if len(items) > n {
		return items[:n]
	}
	if items == nil {
		return []Leakage{}
	}
	return items
}
