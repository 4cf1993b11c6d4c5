package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
)

// evenPortfolio: n개의 동일 매출 계약 (집중도 = 100/n %)
func evenPortfolio(n int, revenue float64) contracts.Portfolio {
	p := make(contracts.Portfolio, n)
	for i := range p {
		c := contracts.Defaults()
		c.Index = i + 1
		c.ClientName = "Client"
		c.OurMonthlyRevenue = revenue
		p[i] = c.Normalized()
	}
	return p
}

func flagsOf(s Score, category string) []Flag {
	var out []Flag
	for _, f := range s.Flags {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, LevelLow},
		{29, LevelLow},
		{30, LevelMedium},
		{49, LevelMedium},
		{50, LevelHigh},
		{69, LevelHigh},
		{70, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %d", tt.score)
	}
}

func TestScore_CleanDefaultContract(t *testing.T) {
	p := evenPortfolio(10, 1000)
	p[0].ClientName = "Acme"
	e := NewEngine(benchmark.Compute(p))

	s := e.Score(p[0], p)

	assert.Equal(t, 1, s.ContractID)
	assert.Equal(t, 5, s.OverallScore) // No SOC 2 Requirement only
	assert.Equal(t, LevelLow, s.RiskLevel)
	require.Len(t, s.Flags, 1)
	assert.Equal(t, "No SOC 2 Requirement", s.Flags[0].Title)
	assert.Equal(t, []string{"PCI-DSS compliance required"}, s.Strengths)
	assert.Equal(t, "The Standard contract with Acme healthy. Key strengths include: PCI-DSS compliance required.", s.Summary)
}

func TestScore_MissingPCIAlwaysOneCriticalComplianceFlag(t *testing.T) {
	variants := []func(c *contracts.Contract){
		func(c *contracts.Contract) {},
		func(c *contracts.Contract) { c.ClientTier = contracts.TierEnterprise; c.SOC2Certified = true },
		func(c *contracts.Contract) { c.BillingAccuracySLA = 98; c.PlatformUptimeSLA = 99 },
		func(c *contracts.Contract) { c.ContractLengthMonths = 6; c.EarlyTerminationMonths = 1 },
		func(c *contracts.Contract) { c.DataRetentionMonths = 120; c.PaymentTermsDays = 10 },
	}

	for i, mutate := range variants {
		p := evenPortfolio(10, 1000)
		p[0].PCICompliant = false
		mutate(&p[0])

		s := NewEngine(benchmark.Compute(p)).Score(p[0], p)

		critical := 0
		for _, f := range s.Flags {
			if f.Severity == SeverityCritical {
				critical++
				assert.Equal(t, 20, f.ImpactScore)
				assert.Equal(t, CategoryCompliance, f.Category)
			}
		}
		assert.Equal(t, 1, critical, "variant %d", i)
	}
}

func TestScore_ClampedAt100(t *testing.T) {
	p := evenPortfolio(2, 1000)
	c := &p[0]
	c.ClientTier = contracts.TierEnterprise
	c.BillingAccuracySLA = 99.0   // +15
	c.PlatformUptimeSLA = 99.5    // +10
	c.SLACreditPct = 30           // +8
	c.PCICompliant = false        // +20
	c.DataRetentionMonths = 12    // +8 (+12 SOC2 Enterprise)
	c.PaymentTermsDays = 60       // +5
	c.LatePaymentPct = 1.0        // +3
	c.ContractLengthMonths = 12   // +8
	c.EarlyTerminationMonths = 2  // +7
	c.DisputeResolutionDays = 15  // +4, concentration 50% +20

	s := NewEngine(benchmark.Compute(p)).Score(*c, p)

	assert.Equal(t, 100, s.OverallScore)
	assert.Equal(t, LevelCritical, s.RiskLevel)
	assert.Contains(t, s.Summary, "needs immediate review")
	assert.Contains(t, s.Summary, "Found 2 critical issue(s) requiring immediate action.")
	assert.Contains(t, s.Summary, "Identified 2 high-priority concern(s).")
}

func TestScore_BelowPortfolioBillingSLA(t *testing.T) {
	a := contracts.Defaults()
	a.Index, a.BillingAccuracySLA = 1, 99.6
	b := contracts.Defaults()
	b.Index, b.BillingAccuracySLA = 2, 99.9
	p := contracts.Portfolio{a, b}

	s := NewEngine(benchmark.Compute(p)).Score(a, p)

	sla := flagsOf(s, CategorySLA)
	require.Len(t, sla, 1)
	assert.Equal(t, SeverityMedium, sla[0].Severity)
	assert.Equal(t, 8, sla[0].ImpactScore)
	assert.Equal(t, "Billing SLA 99.6% is below portfolio average of 99.75%", sla[0].Description)

	// 99.9 이상은 강점
	sb := NewEngine(benchmark.Compute(p)).Score(b, p)
	assert.Contains(t, sb.Strengths, "Excellent billing accuracy SLA of 99.9%")
}

func TestScore_Concentration(t *testing.T) {
	tests := []struct {
		name     string
		revenue  float64
		severity string
		impact   int
	}{
		{"critical", 25, SeverityCritical, 20},
		{"high", 16, SeverityHigh, 12},
		{"medium", 11, SeverityMedium, 6},
		{"none at exactly 10%", 10, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := contracts.Defaults()
			c.Index, c.OurMonthlyRevenue = 1, tt.revenue
			filler := contracts.Defaults()
			filler.Index, filler.OurMonthlyRevenue = 2, 100-tt.revenue
			p := contracts.Portfolio{c, filler}

			flags := flagsOf(NewEngine(nil).Score(c, p), CategoryConcentration)
			if tt.severity == "" {
				assert.Empty(t, flags)
				return
			}
			require.Len(t, flags, 1)
			assert.Equal(t, tt.severity, flags[0].Severity)
			assert.Equal(t, tt.impact, flags[0].ImpactScore)
		})
	}
}

func TestScore_ZeroPortfolioRevenue(t *testing.T) {
	p := evenPortfolio(3, 0)
	s := NewEngine(benchmark.Compute(p)).Score(p[0], p)
	assert.Empty(t, flagsOf(s, CategoryConcentration))
}

func TestScore_FinancialAgainstTier(t *testing.T) {
	low := contracts.Defaults()
	low.Index, low.ClientTier, low.OurMonthlyRevenue, low.RevenueSharePct = 1, contracts.TierBusiness, 1000, 2.0
	high := contracts.Defaults()
	high.Index, high.ClientTier, high.OurMonthlyRevenue, high.RevenueSharePct = 2, contracts.TierBusiness, 9000, 4.0
	p := contracts.Portfolio{low, high}
	e := NewEngine(benchmark.Compute(p)) // avg revenue 5000, avg share 3.0

	s := e.Score(low, p)
	fin := flagsOf(s, CategoryFinancial)
	require.Len(t, fin, 2)
	assert.Equal(t, "Monthly revenue $1,000 is well below Business average of $5,000", fin[0].Description)
	assert.Equal(t, "Revenue share of 2% is below Business tier average", fin[1].Description)

	sh := e.Score(high, p)
	assert.Contains(t, sh.Strengths, "Above-average revenue share of 4%")
}

func TestAnalyze(t *testing.T) {
	p := evenPortfolio(10, 1000)
	p[3].PCICompliant = false

	a := NewEngine(benchmark.Compute(p)).Analyze(p)

	require.Len(t, a.Contracts, 10)
	assert.Equal(t, 4, a.Contracts[0].ContractID, "highest score first")
	assert.Equal(t, 25, a.Contracts[0].OverallScore)
	assert.Equal(t, 1, a.CriticalFlags)
	assert.Equal(t, 11, a.TotalFlags)
	assert.Equal(t, 7.0, a.PortfolioAvgScore) // (9*5 + 25) / 10
	assert.Equal(t, Distribution{Low: 10}, a.RiskDistribution)
}

func TestAnalyze_Empty(t *testing.T) {
	a := NewEngine(benchmark.Compute(nil)).Analyze(nil)
	assert.Empty(t, a.Contracts)
	assert.Equal(t, 0.0, a.PortfolioAvgScore)
}
