// Package benchmark computes the portfolio-wide statistics every scorer
// compares a single contract against.
package benchmark

import (
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Fallbacks for an empty portfolio
const (
	DefaultAvgBillingSLA      = 99.7
	DefaultMinBillingSLA      = 99.5
	DefaultMaxBillingSLA      = 99.95
	DefaultAvgUptimeSLA       = 99.95
	DefaultAvgPaymentTerms    = 30
	DefaultAvgContractLength  = 24
	DefaultPCIComplianceRate  = 100
	DefaultSOC2ComplianceRate = 70
)

// TierBenchmark is the per-tier average row
type TierBenchmark struct {
	AvgMonthlyRevenue float64 `json:"avg_monthly_revenue"`
	AvgRevenueShare   float64 `json:"avg_revenue_share"` // 0% 값은 "해당 없음"이므로 평균에서 제외
	Count             int     `json:"count"`
}

// Benchmarks is immutable after Compute.
// ⭐ SSOT: 포트폴리오 변경 시 부분 갱신 없이 전체 재계산
type Benchmarks struct {
	AvgBillingSLA      float64
	MinBillingSLA      float64
	MaxBillingSLA      float64
	AvgUptimeSLA       float64
	Tiers              map[string]TierBenchmark // 구성원이 없는 tier는 키 자체가 없음
	AvgPaymentTerms    float64
	AvgContractLength  float64
	PCIComplianceRate  float64
	SOC2ComplianceRate float64
}

// Default returns the fixed benchmark set used for an empty portfolio
func Default() *Benchmarks {
	return &Benchmarks{
		AvgBillingSLA:      DefaultAvgBillingSLA,
		MinBillingSLA:      DefaultMinBillingSLA,
		MaxBillingSLA:      DefaultMaxBillingSLA,
		AvgUptimeSLA:       DefaultAvgUptimeSLA,
		Tiers:              map[string]TierBenchmark{},
		AvgPaymentTerms:    DefaultAvgPaymentTerms,
		AvgContractLength:  DefaultAvgContractLength,
		PCIComplianceRate:  DefaultPCIComplianceRate,
		SOC2ComplianceRate: DefaultSOC2ComplianceRate,
	}
}

// Compute builds benchmarks from the full portfolio
func Compute(p contracts.Portfolio) *Benchmarks {
	if len(p) == 0 {
		return Default()
	}

	n := float64(len(p))
	b := &Benchmarks{
		MinBillingSLA: p[0].BillingAccuracySLA,
		MaxBillingSLA: p[0].BillingAccuracySLA,
		Tiers:         make(map[string]TierBenchmark, len(contracts.Tiers)),
	}

	var slaSum, uptimeSum, termsSum, lengthSum float64
	var pci, soc2 int
	for _, c := range p {
		slaSum += c.BillingAccuracySLA
		uptimeSum += c.PlatformUptimeSLA
		termsSum += float64(c.PaymentTermsDays)
		lengthSum += float64(c.ContractLengthMonths)

		if c.BillingAccuracySLA < b.MinBillingSLA {
			b.MinBillingSLA = c.BillingAccuracySLA
		}
		if c.BillingAccuracySLA > b.MaxBillingSLA {
			b.MaxBillingSLA = c.BillingAccuracySLA
		}
		if c.PCICompliant {
			pci++
		}
		if c.SOC2Certified {
			soc2++
		}
	}

	b.AvgBillingSLA = slaSum / n
	b.AvgUptimeSLA = uptimeSum / n
	b.AvgPaymentTerms = termsSum / n
	b.AvgContractLength = lengthSum / n
	b.PCIComplianceRate = float64(pci) / n * 100
	b.SOC2ComplianceRate = float64(soc2) / n * 100

	for _, tier := range contracts.Tiers {
		members := p.ByTier(tier)
		if len(members) == 0 {
			continue
		}

		var revSum, shareSum float64
		var shareCount int
		for _, c := range members {
			revSum += c.OurMonthlyRevenue
			if c.RevenueSharePct > 0 {
				shareSum += c.RevenueSharePct
				shareCount++
			}
		}

		tb := TierBenchmark{
			AvgMonthlyRevenue: revSum / float64(len(members)),
			Count:             len(members),
		}
		if shareCount > 0 {
			tb.AvgRevenueShare = shareSum / float64(shareCount)
		}
		b.Tiers[tier] = tb
	}

	return b
}

// Tier returns the benchmark row of a tier; ok=false when the tier has no members
func (b *Benchmarks) Tier(tier string) (TierBenchmark, bool) {
	tb, ok := b.Tiers[tier]
	return tb, ok
}

// View is the rounded transport shape of the benchmarks
type View struct {
	AvgBillingSLA      float64                  `json:"avg_billing_sla"`
	AvgUptimeSLA       float64                  `json:"avg_uptime_sla"`
	AvgPaymentTerms    float64                  `json:"avg_payment_terms"`
	AvgContractLength  float64                  `json:"avg_contract_length"`
	PCIComplianceRate  float64                  `json:"pci_compliance_rate"`
	SOC2ComplianceRate float64                  `json:"soc2_compliance_rate"`
	TierBenchmarks     map[string]TierBenchmark `json:"tier_benchmarks"`
}

// View rounds SLA averages to 2 dp and the rest to 1 dp
func (b *Benchmarks) View() View {
	tiers := make(map[string]TierBenchmark, len(b.Tiers))
	for k, v := range b.Tiers {
		tiers[k] = v
	}
	return View{
		AvgBillingSLA:      money.Round(b.AvgBillingSLA, 2),
		AvgUptimeSLA:       money.Round(b.AvgUptimeSLA, 2),
		AvgPaymentTerms:    money.Round(b.AvgPaymentTerms, 1),
		AvgContractLength:  money.Round(b.AvgContractLength, 1),
		PCIComplianceRate:  money.Round(b.PCIComplianceRate, 1),
		SOC2ComplianceRate: money.Round(b.SOC2ComplianceRate, 1),
		TierBenchmarks:     tiers,
	}
}
