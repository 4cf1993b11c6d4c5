// Package genome scores the structural soundness of each deal from six
// weighted markers (pricing, term, SLA, compliance, payment, growth).
package genome

import (
	"math"
	"sort"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Marker weights (합계 1.0)
const (
	WeightPricing    = 0.25
	WeightTerm       = 0.20
	WeightSLA        = 0.15
	WeightCompliance = 0.15
	WeightPayment    = 0.10
	WeightGrowth     = 0.15
)

// Predicted outcomes
const (
	OutcomeStrong = "High likelihood of long-term retention and expansion"
	OutcomeStable = "Stable relationship with optimization opportunities"
	OutcomeAtRisk = "At-risk relationship requiring intervention"
)

const (
	maxSimilarDeals       = 3
	similarityPlaceholder = 0.85
	similarOutcome        = "Active - 24 months"
)

// expectedSLA: tier별 기대 billing accuracy
var expectedSLA = map[string]float64{
	contracts.TierEnterprise: 99.9,
	contracts.TierBusiness:   99.7,
	contracts.TierStandard:   99.5,
	contracts.TierStarter:    99.5,
}

// Markers are the six 0-100 sub-scores
type Markers struct {
	PricingHealth       float64 `json:"pricing_health"`
	TermStrength        float64 `json:"term_strength"`
	SLABalance          float64 `json:"sla_balance"`
	ComplianceReadiness float64 `json:"compliance_readiness"`
	PaymentHealth       float64 `json:"payment_health"`
	GrowthPotential     float64 `json:"growth_potential"`
}

// Score combines the markers with the fixed weights
func (m Markers) Score() float64 {
	return m.PricingHealth*WeightPricing +
		m.TermStrength*WeightTerm +
		m.SLABalance*WeightSLA +
		m.ComplianceReadiness*WeightCompliance +
		m.PaymentHealth*WeightPayment +
		m.GrowthPotential*WeightGrowth
}

// SimilarDeal is a lightweight same-tier reference.
// The similarity value is illustrative, not a real metric.
type SimilarDeal struct {
	ClientName string  `json:"client_name"`
	Similarity float64 `json:"similarity"`
	Outcome    string  `json:"outcome"`
}

// Genome is the composite health profile of one deal
type Genome struct {
	ContractID              int           `json:"contract_id"`
	ClientName              string        `json:"client_name"`
	SuccessScore            float64       `json:"success_score"`
	GenomeMarkers           Markers       `json:"genome_markers"`
	SimilarDeals            []SimilarDeal `json:"similar_deals"`
	PredictedOutcome        string        `json:"predicted_outcome"`
	OptimizationSuggestions []string      `json:"optimization_suggestions"`
}

// Analyzer 딜 게놈 분석기
type Analyzer struct {
	bench *benchmark.Benchmarks
}

// NewAnalyzer creates an analyzer over the snapshot benchmarks
func NewAnalyzer(bench *benchmark.Benchmarks) *Analyzer {
	if bench == nil {
		bench = benchmark.Default()
	}
	return &Analyzer{bench: bench}
}

// AnalyzeAll scores every contract, sorted by success score desc
func (a *Analyzer) AnalyzeAll(p contracts.Portfolio) []Genome {
	out := make([]Genome, 0, len(p))
	for _, c := range p {
		out = append(out, a.Analyze(c, p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SuccessScore > out[j].SuccessScore
	})
	return out
}

// Analyze scores one contract; p is only used for the similar-deal lookup
func (a *Analyzer) Analyze(c contracts.Contract, p contracts.Portfolio) Genome {
	m := a.Markers(c)
	score := money.Round(m.Score(), 1)

	return Genome{
		ContractID:              c.Index,
		ClientName:              c.ClientName,
		SuccessScore:            score,
		GenomeMarkers:           m,
		SimilarDeals:            similarDeals(c, p),
		PredictedOutcome:        outcome(score),
		OptimizationSuggestions: suggestions(m),
	}
}

// Markers computes the six sub-scores (each rounded to 1 dp)
func (a *Analyzer) Markers(c contracts.Contract) Markers {
	return Markers{
		PricingHealth:       money.Round(a.pricingHealth(c), 1),
		TermStrength:        money.Round(termStrength(c), 1),
		SLABalance:          money.Round(slaBalance(c), 1),
		ComplianceReadiness: money.Round(complianceReadiness(c), 1),
		PaymentHealth:       money.Round(paymentHealth(c), 1),
		GrowthPotential:     money.Round(growthPotential(c), 1),
	}
}

// =============================================================================
// Markers
// =============================================================================

func (a *Analyzer) pricingHealth(c contracts.Contract) float64 {
	tb, ok := a.bench.Tier(c.ClientTier)
	if !ok || tb.AvgMonthlyRevenue <= 0 {
		return 50
	}
	return math.Min(100, c.OurMonthlyRevenue/tb.AvgMonthlyRevenue*100)
}

func termStrength(c contracts.Contract) float64 {
	length := float64(c.ContractLengthMonths)
	notice := float64(c.EarlyTerminationMonths)
	return math.Min(100, length/60*50+notice/12*50)
}

// slaBalance: 기대치 대비 과/소 제공 모두 감점 (1pp당 20점)
func slaBalance(c contracts.Contract) float64 {
	expected, ok := expectedSLA[c.ClientTier]
	if !ok {
		expected = 99.5
	}
	gap := c.BillingAccuracySLA - expected
	return clamp(100 - math.Abs(gap)*20)
}

func complianceReadiness(c contracts.Contract) float64 {
	score := math.Min(20, float64(c.DataRetentionMonths)/84*20)
	if c.PCICompliant {
		score += 50
	}
	if c.SOC2Certified {
		score += 30
	}
	return score
}

func paymentHealth(c contracts.Contract) float64 {
	return clamp(100 - float64(c.PaymentTermsDays-15)*2 + (c.LatePaymentPct-1.5)*10)
}

// growthPotential: 최소 물량 대비 이용률이 낮을수록 성장 여력이 큼
func growthPotential(c contracts.Contract) float64 {
	if c.MonthlyMinimumTransactions <= 0 {
		return 50
	}
	util := float64(c.SubscriberCount) / float64(c.MonthlyMinimumTransactions)
	if util >= 2 {
		return 20
	}
	return math.Max(0, math.Min(100, (2-util)*50))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// =============================================================================
// Interpretation
// =============================================================================

func outcome(score float64) string {
	switch {
	case score >= 75:
		return OutcomeStrong
	case score >= 50:
		return OutcomeStable
	default:
		return OutcomeAtRisk
	}
}

func similarDeals(c contracts.Contract, p contracts.Portfolio) []SimilarDeal {
	out := []SimilarDeal{}
	for _, other := range p {
		if len(out) >= maxSimilarDeals {
			break
		}
		if other.Index == c.Index || other.ClientTier != c.ClientTier {
			continue
		}
		out = append(out, SimilarDeal{
			ClientName: other.ClientName,
			Similarity: similarityPlaceholder,
			Outcome:    similarOutcome,
		})
	}
	return out
}

func suggestions(m Markers) []string {
	var out []string
	if m.PricingHealth < 70 {
		out = append(out, "Pricing below tier average - prioritize rate adjustment on renewal")
	}
	if m.TermStrength < 50 {
		out = append(out, "Short contract term - offer extension incentive")
	}
	if m.SLABalance < 70 {
		out = append(out, "SLA misalignment - align service levels with tier")
	}
	if m.ComplianceReadiness < 60 {
		out = append(out, "Compliance gaps - upsell compliance package")
	}
	if m.PaymentHealth < 60 {
		out = append(out, "Payment terms unfavorable - negotiate improved terms")
	}
	if m.GrowthPotential > 70 {
		out = append(out, "High growth potential - proactive capacity planning")
	}
	if len(out) == 0 {
		out = append(out, "Well-optimized deal - maintain current relationship")
	}
	return out
}
