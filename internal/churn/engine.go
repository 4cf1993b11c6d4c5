// Package churn predicts renewal risk from contract terms, the contract's
// risk score and a seeded tenure stand-in.
package churn

import (
	"fmt"
	"sort"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/risk"
	"github.com/wonny/billflow/backend/internal/simrand"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Churn risk levels
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
	LevelVeryHigh = "very_high"
)

// Factor names referenced by recommendations
const (
	FactorExpiringSoon     = "Contract Expiring Soon"
	FactorApproaching      = "Approaching Renewal Window"
	FactorAboveMarketPrice = "Above-Market Pricing"
)

const maxRecommendations = 5

// Factor is one additive contribution to the churn probability
type Factor struct {
	Factor string  `json:"factor"`
	Detail string  `json:"detail"`
	Impact string  `json:"impact"` // low, medium, high
	Weight float64 `json:"weight"`
}

// Prediction is the churn outlook of one contract
type Prediction struct {
	ContractID           int      `json:"contract_id"`
	ClientName           string   `json:"client_name"`
	ChurnProbability     float64  `json:"churn_probability"` // 0.0-1.0, 2 dp
	RiskLevel            string   `json:"risk_level"`
	RiskFactors          []Factor `json:"risk_factors"`
	RecommendedActions   []string `json:"recommended_actions"` // 최대 5개
	OptimalRenewalTiming string   `json:"optimal_renewal_timing"`
	PriceSensitivity     string   `json:"price_sensitivity"`
}

// Analysis is the portfolio-wide churn view
type Analysis struct {
	AvgChurnProbability float64      `json:"avg_churn_probability"`
	HighRiskCount       int          `json:"high_risk_count"`
	AtRiskAnnualRevenue float64      `json:"at_risk_annual_revenue"`
	Contracts           []Prediction `json:"contracts"` // probability 내림차순
}

// LevelFor maps a probability to its churn level
func LevelFor(p float64) string {
	switch {
	case p >= 0.7:
		return LevelVeryHigh
	case p >= 0.5:
		return LevelHigh
	case p >= 0.3:
		return LevelModerate
	default:
		return LevelLow
	}
}

// =============================================================================
// Engine
// =============================================================================

// Engine 이탈 예측 엔진 (순수 계산기)
// ⭐ SSOT: tenure는 실제 데이터가 없어 simrand로 대체 (contract id 기반, 시계와 무관)
type Engine struct {
	bench *benchmark.Benchmarks
	rand  simrand.Source
}

// NewEngine creates the engine; a nil source means the seeded default
func NewEngine(bench *benchmark.Benchmarks, src simrand.Source) *Engine {
	if bench == nil {
		bench = benchmark.Default()
	}
	if src == nil {
		src = simrand.NewSeeded()
	}
	return &Engine{bench: bench, rand: src}
}

// Predict combines five additive factors.
// score must come from the same contract snapshot.
func (e *Engine) Predict(c contracts.Contract, score risk.Score) Prediction {
	var factors []Factor
	probability := 0.0

	for _, f := range []*Factor{
		e.timeline(c),
		riskCorrelation(score),
		slaSatisfaction(c),
		e.priceCompetitiveness(c),
		tierEngagement(c),
	} {
		if f == nil {
			continue
		}
		probability += f.Weight
		factors = append(factors, *f)
	}

	probability = clamp01(probability)
	if factors == nil {
		factors = []Factor{}
	}

	return Prediction{
		ContractID:           c.Index,
		ClientName:           c.ClientName,
		ChurnProbability:     money.Round2(probability),
		RiskLevel:            LevelFor(probability),
		RiskFactors:          factors,
		RecommendedActions:   recommendations(c, factors, probability),
		OptimalRenewalTiming: renewalTiming(probability),
		PriceSensitivity:     priceSensitivity(c, probability),
	}
}

// Analyze predicts churn for the whole portfolio.
// At-risk revenue is matched by contract id, not list position.
func (e *Engine) Analyze(p contracts.Portfolio, riskEngine *risk.Engine) Analysis {
	total := make([]Prediction, 0, len(p))
	for _, c := range p {
		total = append(total, e.Predict(c, riskEngine.Score(c, p)))
	}
	sort.SliceStable(total, func(i, j int) bool {
		return total[i].ChurnProbability > total[j].ChurnProbability
	})

	a := Analysis{Contracts: total}
	if len(total) == 0 {
		return a
	}

	var probSum float64
	var atRisk []float64
	for _, pred := range total {
		probSum += pred.ChurnProbability
		if pred.RiskLevel == LevelHigh || pred.RiskLevel == LevelVeryHigh {
			a.HighRiskCount++
		}
		if pred.ChurnProbability >= 0.3 {
			if c, ok := p.Find(pred.ContractID); ok {
				atRisk = append(atRisk, c.OurMonthlyRevenue*12)
			}
		}
	}
	a.AvgChurnProbability = money.Round2(probSum / float64(len(total)))
	a.AtRiskAnnualRevenue = money.Round2(money.Sum(atRisk...))
	return a
}

// =============================================================================
// Factors
// =============================================================================

// timeline: 경과 개월 수는 [1, length] 범위의 시드 난수
func (e *Engine) timeline(c contracts.Contract) *Factor {
	length := c.ContractLengthMonths
	elapsed := e.rand.Stream(simrand.Seed(c.Index, simrand.OffsetTimeline)).IntRange(1, length)
	remaining := length - elapsed
	if remaining < 0 {
		remaining = 0
	}

	switch {
	case remaining <= 3:
		return &Factor{
			Factor: FactorExpiringSoon,
			Detail: fmt.Sprintf("Only %d months until renewal", remaining),
			Impact: "high",
			Weight: 0.25,
		}
	case remaining <= 6:
		return &Factor{
			Factor: FactorApproaching,
			Detail: fmt.Sprintf("%d months until contract end", remaining),
			Impact: "medium",
			Weight: 0.15,
		}
	}
	return nil
}

func riskCorrelation(score risk.Score) *Factor {
	s := score.OverallScore
	switch {
	case s >= 70:
		return &Factor{
			Factor: "Critical Risk Score",
			Detail: fmt.Sprintf("Risk score of %d/100 indicates contract issues", s),
			Impact: "high",
			Weight: 0.20,
		}
	case s >= 50:
		return &Factor{
			Factor: "Elevated Risk Score",
			Detail: fmt.Sprintf("Risk score of %d/100 suggests improvement needed", s),
			Impact: "medium",
			Weight: 0.12,
		}
	case s >= 30:
		return &Factor{
			Factor: "Moderate Risk Score",
			Detail: fmt.Sprintf("Risk score of %d/100", s),
			Impact: "low",
			Weight: 0.05,
		}
	}
	return nil
}

func slaSatisfaction(c contracts.Contract) *Factor {
	if c.BillingAccuracySLA < 99.5 || c.PlatformUptimeSLA < 99.9 {
		return &Factor{
			Factor: "Below-Standard SLAs",
			Detail: "Lower SLAs may indicate cost pressure or dissatisfaction",
			Impact: "medium",
			Weight: 0.10,
		}
	}
	return nil
}

func (e *Engine) priceCompetitiveness(c contracts.Contract) *Factor {
	tb, ok := e.bench.Tier(c.ClientTier)
	if !ok {
		return nil
	}
	if c.RevenueSharePct > tb.AvgRevenueShare*1.3 {
		return &Factor{
			Factor: FactorAboveMarketPrice,
			Detail: fmt.Sprintf("Revenue share %s%% exceeds tier average by 30%%+", money.Num(c.RevenueSharePct)),
			Impact: "high",
			Weight: 0.15,
		}
	}
	return nil
}

func tierEngagement(c contracts.Contract) *Factor {
	switch c.ClientTier {
	case contracts.TierStarter:
		return &Factor{
			Factor: "Starter Tier Profile",
			Detail: "Starter clients have historically higher churn rates",
			Impact: "medium",
			Weight: 0.10,
		}
	case contracts.TierStandard:
		return &Factor{
			Factor: "Standard Tier Profile",
			Detail: "Standard tier has moderate retention challenges",
			Impact: "low",
			Weight: 0.05,
		}
	}
	return nil
}

// =============================================================================
// Lookup tables
// =============================================================================

func recommendations(c contracts.Contract, factors []Factor, p float64) []string {
	var recs []string
	add := func(items ...string) {
		for _, item := range items {
			if !contains(recs, item) {
				recs = append(recs, item)
			}
		}
	}

	if p >= 0.5 {
		add("Schedule executive check-in meeting within 2 weeks",
			"Prepare competitive pricing analysis for renewal discussion")
	}
	if p >= 0.3 {
		add("Review recent support tickets and billing disputes",
			"Consider offering loyalty incentives or tier upgrade")
	}
	if hasFactor(factors, FactorExpiringSoon) {
		add("Initiate renewal discussion 90 days before expiration")
	}
	if hasFactor(factors, FactorAboveMarketPrice) {
		add("Prepare value proposition documentation",
			"Consider volume discount or extended term discount")
	}
	if c.IsTier(contracts.TierStarter, contracts.TierStandard) {
		add("Present tier upgrade benefits and ROI analysis")
	}
	if len(recs) == 0 {
		add("Maintain regular quarterly business reviews",
			"Continue monitoring engagement metrics")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func renewalTiming(p float64) string {
	switch {
	case p >= 0.5:
		return "Immediately - high churn risk requires urgent engagement"
	case p >= 0.3:
		return "Within 30 days - proactive engagement recommended"
	default:
		return "90 days before expiration - standard renewal timeline"
	}
}

func priceSensitivity(c contracts.Contract, p float64) string {
	switch {
	case c.IsTier(contracts.TierStarter, contracts.TierStandard) && p >= 0.3:
		return "High - likely comparing alternatives, lead with value"
	case c.ClientTier == contracts.TierBusiness:
		return "Moderate - balance value and pricing in discussions"
	default:
		return "Low - focus on service quality and relationship"
	}
}

func hasFactor(factors []Factor, name string) bool {
	for _, f := range factors {
		if f.Factor == name {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
