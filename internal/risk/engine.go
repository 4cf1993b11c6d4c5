package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/money"
)

// =============================================================================
// Engine - 순수 계산기
// =============================================================================

// Engine 계약 리스크 엔진 (순수 계산기)
// ⭐ SSOT: 벤치마크는 상위 레이어(snapshot)에서 계산해서 주입
type Engine struct {
	bench *benchmark.Benchmarks
}

// NewEngine 새 리스크 엔진 생성
func NewEngine(bench *benchmark.Benchmarks) *Engine {
	if bench == nil {
		bench = benchmark.Default()
	}
	return &Engine{bench: bench}
}

// Score runs the five analyzers for one contract.
// p is the full portfolio, used for the concentration check.
func (e *Engine) Score(c contracts.Contract, p contracts.Portfolio) Score {
	return e.score(c, p.TotalMonthlyRevenue())
}

// Analyze scores every contract and summarizes the portfolio
func (e *Engine) Analyze(p contracts.Portfolio) Analysis {
	total := p.TotalMonthlyRevenue()

	scores := make([]Score, 0, len(p))
	for _, c := range p {
		scores = append(scores, e.score(c, total))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].OverallScore > scores[j].OverallScore
	})

	a := Analysis{Contracts: scores}
	var sum int
	for _, s := range scores {
		sum += s.OverallScore
		a.TotalFlags += len(s.Flags)
		a.CriticalFlags += s.CountSeverity(SeverityCritical)

		switch s.RiskLevel {
		case LevelCritical:
			a.RiskDistribution.Critical++
		case LevelHigh:
			a.RiskDistribution.High++
		case LevelMedium:
			a.RiskDistribution.Medium++
		default:
			a.RiskDistribution.Low++
		}
	}
	if len(scores) > 0 {
		a.PortfolioAvgScore = money.Round(float64(sum)/float64(len(scores)), 1)
	}
	return a
}

func (e *Engine) score(c contracts.Contract, totalRevenue float64) Score {
	var flags []Flag
	var strengths []string

	// 1. SLA
	e.analyzeSLA(c, &flags, &strengths)
	// 2. Compliance
	e.analyzeCompliance(c, &flags, &strengths)
	// 3. Financial
	e.analyzeFinancial(c, &flags, &strengths)
	// 4. Terms
	e.analyzeTerms(c, &flags, &strengths)
	// 5. Concentration
	e.analyzeConcentration(c, totalRevenue, &flags)

	total := 0
	for _, f := range flags {
		total += f.ImpactScore
	}
	overall := clamp(total, 0, 100)

	if flags == nil {
		flags = []Flag{}
	}
	if strengths == nil {
		strengths = []string{}
	}

	s := Score{
		ContractID:   c.Index,
		ClientName:   c.ClientName,
		OverallScore: overall,
		RiskLevel:    LevelFor(overall),
		Flags:        flags,
		Strengths:    strengths,
	}
	s.Summary = summarize(c, s)
	return s
}

// =============================================================================
// Analyzers
// =============================================================================

func (e *Engine) analyzeSLA(c contracts.Contract, flags *[]Flag, strengths *[]string) {
	billing := c.BillingAccuracySLA
	uptime := c.PlatformUptimeSLA

	switch {
	case billing < 99.5:
		*flags = append(*flags, Flag{
			Category:       CategorySLA,
			Severity:       SeverityHigh,
			Title:          "Below-Standard Billing SLA",
			Description:    fmt.Sprintf("Billing accuracy SLA of %s%% is below industry standard of 99.5%%", money.Num(billing)),
			Recommendation: "Renegotiate to at least 99.5% billing accuracy commitment",
			ImpactScore:    15,
		})
	case billing < e.bench.AvgBillingSLA:
		*flags = append(*flags, Flag{
			Category:       CategorySLA,
			Severity:       SeverityMedium,
			Title:          "Below-Portfolio Billing SLA",
			Description:    fmt.Sprintf("Billing SLA %s%% is below portfolio average of %.2f%%", money.Num(billing), e.bench.AvgBillingSLA),
			Recommendation: "Consider aligning with portfolio standard on renewal",
			ImpactScore:    8,
		})
	case billing >= 99.9:
		*strengths = append(*strengths, fmt.Sprintf("Excellent billing accuracy SLA of %s%%", money.Num(billing)))
	}

	if uptime < 99.9 {
		*flags = append(*flags, Flag{
			Category:       CategorySLA,
			Severity:       SeverityMedium,
			Title:          "Low Platform Uptime SLA",
			Description:    fmt.Sprintf("Platform uptime SLA of %s%% may not meet client expectations", money.Num(uptime)),
			Recommendation: "Consider upgrading to 99.95%+ for enterprise clients",
			ImpactScore:    10,
		})
	} else if uptime >= 99.99 {
		*strengths = append(*strengths, fmt.Sprintf("Premium uptime SLA of %s%%", money.Num(uptime)))
	}

	if c.SLACreditPct >= 25 {
		*flags = append(*flags, Flag{
			Category:       CategorySLA,
			Severity:       SeverityMedium,
			Title:          "High SLA Credit Exposure",
			Description:    fmt.Sprintf("SLA credit of %s%% creates significant financial exposure on breach", money.Num(c.SLACreditPct)),
			Recommendation: "Consider capping SLA credits or adding breach procedures",
			ImpactScore:    8,
		})
	}
}

func (e *Engine) analyzeCompliance(c contracts.Contract, flags *[]Flag, strengths *[]string) {
	if !c.PCICompliant {
		*flags = append(*flags, Flag{
			Category:       CategoryCompliance,
			Severity:       SeverityCritical,
			Title:          "Missing PCI-DSS Compliance",
			Description:    "Contract does not require PCI-DSS compliance for billing data",
			Recommendation: "Add PCI-DSS compliance requirement immediately",
			ImpactScore:    20,
		})
	} else {
		*strengths = append(*strengths, "PCI-DSS compliance required")
	}

	if !c.SOC2Certified {
		if c.IsTier(contracts.TierEnterprise, contracts.TierBusiness) {
			*flags = append(*flags, Flag{
				Category:       CategoryCompliance,
				Severity:       SeverityHigh,
				Title:          "Missing SOC 2 Certification",
				Description:    fmt.Sprintf("SOC 2 certification not required for %s tier client", c.ClientTier),
				Recommendation: "Add SOC 2 Type II requirement for data security assurance",
				ImpactScore:    12,
			})
		} else {
			*flags = append(*flags, Flag{
				Category:       CategoryCompliance,
				Severity:       SeverityLow,
				Title:          "No SOC 2 Requirement",
				Description:    "Contract does not include SOC 2 certification requirement",
				Recommendation: "Consider adding for enhanced security posture",
				ImpactScore:    5,
			})
		}
	} else {
		*strengths = append(*strengths, "SOC 2 certification required")
	}

	retention := c.DataRetentionMonths
	if retention < 24 {
		*flags = append(*flags, Flag{
			Category:       CategoryCompliance,
			Severity:       SeverityMedium,
			Title:          "Short Data Retention Period",
			Description:    fmt.Sprintf("Data retention of %d months may not meet regulatory requirements", retention),
			Recommendation: "Extend to minimum 24 months for audit compliance",
			ImpactScore:    8,
		})
	} else if retention >= 84 {
		*strengths = append(*strengths, fmt.Sprintf("Comprehensive %d-month data retention", retention))
	}
}

func (e *Engine) analyzeFinancial(c contracts.Contract, flags *[]Flag, strengths *[]string) {
	share := c.RevenueSharePct

	// 벤치마크가 있는 tier만 비교
	if tb, ok := e.bench.Tier(c.ClientTier); ok {
		if c.OurMonthlyRevenue < tb.AvgMonthlyRevenue*0.5 {
			*flags = append(*flags, Flag{
				Category:    CategoryFinancial,
				Severity:    SeverityMedium,
				Title:       "Below-Average Revenue for Tier",
				Description: fmt.Sprintf("Monthly revenue %s is well below %s average of %s",
					money.Dollars(c.OurMonthlyRevenue, 0), c.ClientTier, money.Dollars(tb.AvgMonthlyRevenue, 0)),
				Recommendation: "Review pricing structure or consider tier adjustment",
				ImpactScore:    10,
			})
		}

		if share > 0 && share > tb.AvgRevenueShare*1.2 {
			*strengths = append(*strengths, fmt.Sprintf("Above-average revenue share of %s%%", money.Num(share)))
		} else if share > 0 && share < tb.AvgRevenueShare*0.8 {
			*flags = append(*flags, Flag{
				Category:       CategoryFinancial,
				Severity:       SeverityLow,
				Title:          "Below-Average Revenue Share",
				Description:    fmt.Sprintf("Revenue share of %s%% is below %s tier average", money.Num(share), c.ClientTier),
				Recommendation: "Negotiate higher rate on renewal",
				ImpactScore:    5,
			})
		}
	}

	terms := c.PaymentTermsDays
	if terms > 30 {
		*flags = append(*flags, Flag{
			Category:       CategoryFinancial,
			Severity:       SeverityLow,
			Title:          "Extended Payment Terms",
			Description:    fmt.Sprintf("Payment terms of Net %d create cash flow delay", terms),
			Recommendation: "Negotiate to Net 30 or offer early payment discount",
			ImpactScore:    5,
		})
	} else if terms <= 15 {
		*strengths = append(*strengths, fmt.Sprintf("Favorable Net %d payment terms", terms))
	}

	if c.LatePaymentPct < 1.5 {
		*flags = append(*flags, Flag{
			Category:       CategoryFinancial,
			Severity:       SeverityLow,
			Title:          "Low Late Payment Penalty",
			Description:    fmt.Sprintf("Late payment fee of %s%% may not deter delayed payments", money.Num(c.LatePaymentPct)),
			Recommendation: "Increase to 2%+ to encourage timely payment",
			ImpactScore:    3,
		})
	}
}

func (e *Engine) analyzeTerms(c contracts.Contract, flags *[]Flag, strengths *[]string) {
	length := c.ContractLengthMonths
	if length <= 12 {
		*flags = append(*flags, Flag{
			Category:       CategoryTerms,
			Severity:       SeverityMedium,
			Title:          "Short Contract Term",
			Description:    fmt.Sprintf("Contract length of %d months provides limited revenue visibility", length),
			Recommendation: "Negotiate 24+ month terms with renewal incentives",
			ImpactScore:    8,
		})
	} else if length >= 48 {
		*strengths = append(*strengths, fmt.Sprintf("Long-term %d-month commitment", length))
	}

	notice := c.EarlyTerminationMonths
	if notice <= 3 {
		*flags = append(*flags, Flag{
			Category:       CategoryTerms,
			Severity:       SeverityMedium,
			Title:          "Short Early Termination Notice",
			Description:    fmt.Sprintf("Only %d-month notice required for early termination", notice),
			Recommendation: "Extend notice period to 6+ months",
			ImpactScore:    7,
		})
	} else if notice >= 12 {
		*strengths = append(*strengths, fmt.Sprintf("Strong %d-month early termination protection", notice))
	}

	dispute := c.DisputeResolutionDays
	if dispute > 10 {
		*flags = append(*flags, Flag{
			Category:       CategoryTerms,
			Severity:       SeverityLow,
			Title:          "Extended Dispute Resolution Period",
			Description:    fmt.Sprintf("%d-day dispute resolution may prolong conflicts", dispute),
			Recommendation: "Tighten to 5-7 days for faster resolution",
			ImpactScore:    4,
		})
	} else if dispute <= 5 {
		*strengths = append(*strengths, "Fast 5-day dispute resolution")
	}
}

// analyzeConcentration: 포트폴리오 매출이 0이면 집중도 0%로 간주
func (e *Engine) analyzeConcentration(c contracts.Contract, totalRevenue float64, flags *[]Flag) {
	if totalRevenue <= 0 {
		return
	}
	concentration := c.OurMonthlyRevenue / totalRevenue * 100

	switch {
	case concentration > 20:
		*flags = append(*flags, Flag{
			Category:       CategoryConcentration,
			Severity:       SeverityCritical,
			Title:          "High Revenue Concentration",
			Description:    fmt.Sprintf("This client represents %.1f%% of total revenue", concentration),
			Recommendation: "Diversify portfolio to reduce single-client dependency",
			ImpactScore:    20,
		})
	case concentration > 15:
		*flags = append(*flags, Flag{
			Category:       CategoryConcentration,
			Severity:       SeverityHigh,
			Title:          "Elevated Revenue Concentration",
			Description:    fmt.Sprintf("Client represents %.1f%% of portfolio revenue", concentration),
			Recommendation: "Monitor closely and develop contingency plans",
			ImpactScore:    12,
		})
	case concentration > 10:
		*flags = append(*flags, Flag{
			Category:       CategoryConcentration,
			Severity:       SeverityMedium,
			Title:          "Notable Revenue Concentration",
			Description:    fmt.Sprintf("Client represents %.1f%% of portfolio", concentration),
			Recommendation: "Continue diversification efforts",
			ImpactScore:    6,
		})
	}
}

// =============================================================================
// Summary
// =============================================================================

func summarize(c contracts.Contract, s Score) string {
	var status string
	switch {
	case s.OverallScore < 30:
		status = "healthy"
	case s.OverallScore < 50:
		status = "has some areas for improvement"
	case s.OverallScore < 70:
		status = "requires attention"
	default:
		status = "needs immediate review"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %s contract with %s %s. ", c.ClientTier, c.ClientName, status)

	if n := s.CountSeverity(SeverityCritical); n > 0 {
		fmt.Fprintf(&b, "Found %d critical issue(s) requiring immediate action. ", n)
	}
	if n := s.CountSeverity(SeverityHigh); n > 0 {
		fmt.Fprintf(&b, "Identified %d high-priority concern(s). ", n)
	}
	if len(s.Strengths) > 0 {
		top := s.Strengths
		if len(top) > 2 {
			top = top[:2]
		}
		fmt.Fprintf(&b, "Key strengths include: %s.", strings.Join(top, ", "))
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
