package action

import (
	"github.com/wonny/billflow/backend/pkg/money"
)

// Report is the queue grouped by urgency
type Report struct {
	TotalActions        int     `json:"total_actions"`
	Critical            []Item  `json:"critical"`
	High                []Item  `json:"high"`
	Medium              []Item  `json:"medium"`
	Opportunities       []Item  `json:"opportunities"`
	TotalRevenueAtStake float64 `json:"total_revenue_at_stake"`
}

// CountUrgent counts critical and high actions
func CountUrgent(items []Item) int {
	n := 0
	for _, a := range items {
		if a.Urgency == UrgencyCritical || a.Urgency == UrgencyHigh {
			n++
		}
	}
	return n
}

// BuildReport groups a built queue
func BuildReport(items []Item) Report {
	r := Report{
		TotalActions:  len(items),
		Critical:      []Item{},
		High:          []Item{},
		Medium:        []Item{},
		Opportunities: []Item{},
	}
	impacts := make([]float64, len(items))
	for i, a := range items {
		impacts[i] = a.RevenueImpact
		switch a.Urgency {
		case UrgencyCritical:
			r.Critical = append(r.Critical, a)
		case UrgencyHigh:
			r.High = append(r.High, a)
		case UrgencyMedium:
			r.Medium = append(r.Medium, a)
		case UrgencyOpportunity:
			r.Opportunities = append(r.Opportunities, a)
		}
	}
	r.TotalRevenueAtStake = money.Round2(money.Sum(impacts...))
	return r
}
