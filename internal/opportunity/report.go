package opportunity

import (
	"github.com/wonny/billflow/backend/pkg/money"
)

const (
	topOpportunities    = 15
	topHighProbability  = 5
	highProbabilityMark = 0.5
)

// TypeGroup aggregates opportunities of one type
type TypeGroup struct {
	Count       int           `json:"count"`
	AnnualTotal float64       `json:"annual_total"`
	Items       []Opportunity `json:"items"`
}

// Report is the detailed opportunity view
type Report struct {
	TotalAnnualOpportunity float64               `json:"total_annual_opportunity"`
	OpportunityCount       int                   `json:"opportunity_count"`
	ByType                 map[string]*TypeGroup `json:"by_type"`
	TopOpportunities       []Opportunity         `json:"top_opportunities"`
	HighProbability        []Opportunity         `json:"high_probability"`
}

// TotalAnnual sums annual potential
func TotalAnnual(items []Opportunity) float64 {
	values := make([]float64, len(items))
	for i, o := range items {
		values[i] = o.PotentialAnnual
	}
	return money.Round2(money.Sum(values...))
}

// BuildReport groups an already sorted opportunity list
func BuildReport(items []Opportunity) Report {
	r := Report{
		TotalAnnualOpportunity: TotalAnnual(items),
		OpportunityCount:       len(items),
		ByType:                 map[string]*TypeGroup{},
		TopOpportunities:       head(items, topOpportunities),
		HighProbability:        []Opportunity{},
	}

	for _, o := range items {
		g, ok := r.ByType[o.OpportunityType]
		if !ok {
			g = &TypeGroup{}
			r.ByType[o.OpportunityType] = g
		}
		g.Count++
		g.AnnualTotal = money.Sum(g.AnnualTotal, o.PotentialAnnual)
		g.Items = append(g.Items, o)

		if o.SuccessProbability >= highProbabilityMark && len(r.HighProbability) < topHighProbability {
			r.HighProbability = append(r.HighProbability, o)
		}
	}
	return r
}

func head(items []Opportunity, n int) []Opportunity {
	if len(items) > n {
		return items[:n]
	}
	if items == nil {
		return []Opportunity{}
	}
	return items
}
