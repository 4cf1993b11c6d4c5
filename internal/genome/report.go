package genome

import (
	"github.com/wonny/billflow/backend/pkg/money"
)

const (
	topPerformers       = 5
	needsAttentionBelow = 50
)

// Report is the portfolio genome view
type Report struct {
	PortfolioAvgScore float64  `json:"portfolio_avg_score"`
	TopPerformers     []Genome `json:"top_performers"`
	NeedsAttention    []Genome `json:"needs_attention"`
	AllGenomes        []Genome `json:"all_genomes"`
}

// AverageScore returns the mean success score (1 dp), 0 for no genomes
func AverageScore(items []Genome) float64 {
	if len(items) == 0 {
		return 0
	}
	scores := make([]float64, len(items))
	for i, g := range items {
		scores[i] = g.SuccessScore
	}
	return money.Round(money.Sum(scores...)/float64(len(items)), 1)
}

// BuildReport summarizes an already sorted genome list
func BuildReport(items []Genome) Report {
	if items == nil {
		items = []Genome{}
	}
	r := Report{
		PortfolioAvgScore: AverageScore(items),
		TopPerformers:     items,
		NeedsAttention:    []Genome{},
		AllGenomes:        items,
	}
	if len(items) > topPerformers {
		r.TopPerformers = items[:topPerformers]
	}
	for _, g := range items {
		if g.SuccessScore < needsAttentionBelow {
			r.NeedsAttention = append(r.NeedsAttention, g)
		}
	}
	return r
}

// Find returns the genome of one contract
func Find(items []Genome, contractID int) (Genome, bool) {
	for _, g := range items {
		if g.ContractID == contractID {
			return g, true
		}
	}
	return Genome{}, false
}
