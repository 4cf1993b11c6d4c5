package churn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/risk"
	"github.com/wonny/billflow/backend/internal/simrand"
)

// expiring: elapsed = length, remaining 0
var expiring = simrand.Fixed{Default: 0.999}

// fresh: elapsed = 1, remaining length-1
var fresh = simrand.Fixed{Default: 0}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelLow, LevelFor(0.29))
	assert.Equal(t, LevelModerate, LevelFor(0.3))
	assert.Equal(t, LevelHigh, LevelFor(0.5))
	assert.Equal(t, LevelVeryHigh, LevelFor(0.7))
	assert.Equal(t, LevelVeryHigh, LevelFor(1))
}

func TestPredict_NoFactors(t *testing.T) {
	c := contracts.Defaults()
	c.Index, c.ClientName, c.ClientTier = 1, "Globex", contracts.TierEnterprise

	p := NewEngine(nil, fresh).Predict(c, risk.Score{OverallScore: 0})

	assert.Equal(t, 0.0, p.ChurnProbability)
	assert.Equal(t, LevelLow, p.RiskLevel)
	assert.Empty(t, p.RiskFactors)
	assert.Equal(t, []string{
		"Maintain regular quarterly business reviews",
		"Continue monitoring engagement metrics",
	}, p.RecommendedActions)
	assert.Equal(t, "90 days before expiration - standard renewal timeline", p.OptimalRenewalTiming)
	assert.Equal(t, "Low - focus on service quality and relationship", p.PriceSensitivity)
}

func TestPredict_AllFactors(t *testing.T) {
	c := contracts.Defaults()
	c.Index, c.ClientTier, c.RevenueSharePct, c.BillingAccuracySLA = 1, contracts.TierStarter, 5, 99
	other := contracts.Defaults()
	other.Index, other.ClientTier, other.RevenueSharePct = 2, contracts.TierStarter, 1
	bench := benchmark.Compute(contracts.Portfolio{c, other}) // Starter avg share 3.0

	p := NewEngine(bench, expiring).Predict(c, risk.Score{OverallScore: 75})

	assert.Equal(t, 0.8, p.ChurnProbability)
	assert.Equal(t, LevelVeryHigh, p.RiskLevel)
	require.Len(t, p.RiskFactors, 5)
	assert.Equal(t, FactorExpiringSoon, p.RiskFactors[0].Factor)
	assert.Equal(t, "Only 0 months until renewal", p.RiskFactors[0].Detail)
	assert.Equal(t, "Risk score of 75/100 indicates contract issues", p.RiskFactors[1].Detail)
	assert.Equal(t, "Revenue share 5% exceeds tier average by 30%+", p.RiskFactors[3].Detail)

	assert.Len(t, p.RecommendedActions, 5)
	assert.Equal(t, "Schedule executive check-in meeting within 2 weeks", p.RecommendedActions[0])
	assert.Equal(t, "Initiate renewal discussion 90 days before expiration", p.RecommendedActions[4])
	assert.Equal(t, "Immediately - high churn risk requires urgent engagement", p.OptimalRenewalTiming)
	assert.Equal(t, "High - likely comparing alternatives, lead with value", p.PriceSensitivity)
}

func TestPredict_ApproachingWindow(t *testing.T) {
	c := contracts.Defaults()
	c.Index, c.ClientTier, c.ContractLengthMonths = 9, contracts.TierBusiness, 12

	// elapsed = 1 + int(0.5*12) = 7, remaining 5
	src := simrand.Fixed{Sequences: map[int64][]float64{simrand.Seed(9, simrand.OffsetTimeline): {0.5}}}
	p := NewEngine(nil, src).Predict(c, risk.Score{})

	require.Len(t, p.RiskFactors, 1)
	assert.Equal(t, FactorApproaching, p.RiskFactors[0].Factor)
	assert.Equal(t, "5 months until contract end", p.RiskFactors[0].Detail)
	assert.Equal(t, 0.15, p.ChurnProbability)
	assert.Equal(t, "Moderate - balance value and pricing in discussions", p.PriceSensitivity)
}

func TestPredict_MonotonicInRiskScore(t *testing.T) {
	c := contracts.Defaults()
	c.Index = 3
	e := NewEngine(nil, simrand.NewSeeded())

	prev := -1.0
	for score := 0; score <= 100; score++ {
		p := e.Predict(c, risk.Score{OverallScore: score})
		assert.GreaterOrEqual(t, p.ChurnProbability, prev, "score %d", score)
		assert.GreaterOrEqual(t, p.ChurnProbability, 0.0)
		assert.LessOrEqual(t, p.ChurnProbability, 1.0)
		prev = p.ChurnProbability
	}
}

func TestPredict_Deterministic(t *testing.T) {
	c := contracts.Defaults()
	c.Index = 17
	e := NewEngine(nil, nil)
	assert.Equal(t, e.Predict(c, risk.Score{}), e.Predict(c, risk.Score{}))
}

func TestAnalyze_AtRiskRevenueMatchedByID(t *testing.T) {
	ent := contracts.Defaults()
	ent.Index, ent.ClientTier, ent.SOC2Certified, ent.OurMonthlyRevenue = 1, contracts.TierEnterprise, true, 5000
	starter := contracts.Defaults()
	starter.Index, starter.ClientTier, starter.OurMonthlyRevenue = 2, contracts.TierStarter, 1000
	p := contracts.Portfolio{ent, starter}

	bench := benchmark.Compute(p)
	a := NewEngine(bench, expiring).Analyze(p, risk.NewEngine(bench))

	require.Len(t, a.Contracts, 2)
	assert.Equal(t, 2, a.Contracts[0].ContractID, "starter sorts first")
	assert.Equal(t, 0.35, a.Contracts[0].ChurnProbability)
	assert.Equal(t, 0.25, a.Contracts[1].ChurnProbability)
	assert.Equal(t, 12000.0, a.AtRiskAnnualRevenue)
	assert.Equal(t, 0.3, a.AvgChurnProbability)
	assert.Equal(t, 0, a.HighRiskCount)
}

func TestAnalyze_Empty(t *testing.T) {
	a := NewEngine(nil, nil).Analyze(nil, risk.NewEngine(nil))
	assert.Empty(t, a.Contracts)
	assert.Equal(t, 0.0, a.AtRiskAnnualRevenue)
}
