// Package leakage finds revenue the portfolio is losing today, measured
// against tier benchmarks and fixed market references.
package leakage

import (
	"fmt"
	"sort"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Fix efforts
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

// Detector sub-types (part of the item id)
const (
	SubtypeRevShare    = "pricing_revshare"
	SubtypeTxnFee      = "pricing_txnfee"
	SubtypeVolume      = "volume_growth"
	SubtypeBillingLate = "billing_late"
	SubtypeSLA         = "sla_overdelivery"
	SubtypeSLACredit   = "term_slacredit"
	SubtypeShortTerm   = "term_short"
)

// Market references
const (
	MarketTransactionFee  = 0.25 // $/transaction
	lowTransactionFee     = 0.15
	materialTxnFeeMonthly = 1000.0
	slaBreachProbability  = 0.02
	materialSLACreditCost = 1000.0
	shortTermChurnRisk    = 0.25
)

// Leakage is one instance of revenue being lost
type Leakage struct {
	ID            string  `json:"id"`
	ClientName    string  `json:"client_name"`
	ContractID    int     `json:"contract_id"`
	LeakType      string  `json:"leak_type"` // "Category - Detail"
	AmountMonthly float64 `json:"amount_monthly"`
	AmountAnnual  float64 `json:"amount_annual"`
	Description   string  `json:"description"`
	RootCause     string  `json:"root_cause"`
	FixAction     string  `json:"fix_action"`
	FixEffort     string  `json:"fix_effort"`
	FixTimeline   string  `json:"fix_timeline"`
	Confidence    float64 `json:"confidence"`
}

// Detector 누수 탐지기 (순수 계산기, 공유 상태 변경 없음)
type Detector struct {
	bench *benchmark.Benchmarks
}

// NewDetector creates a detector over the snapshot benchmarks
func NewDetector(bench *benchmark.Benchmarks) *Detector {
	if bench == nil {
		bench = benchmark.Default()
	}
	return &Detector{bench: bench}
}

// DetectAll runs the five detectors per contract, sorted by annual amount desc
func (d *Detector) DetectAll(p contracts.Portfolio) []Leakage {
	out := []Leakage{}
	for _, c := range p {
		out = append(out, d.Detect(c)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AmountAnnual > out[j].AmountAnnual
	})
	return out
}

// Detect runs the five detectors for one contract
func (d *Detector) Detect(c contracts.Contract) []Leakage {
	var out []Leakage
	out = append(out, d.pricing(c)...)
	out = append(out, volume(c)...)
	out = append(out, billing(c)...)
	out = append(out, sla(c)...)
	out = append(out, terms(c)...)
	return out
}

func newLeakage(c contracts.Contract, subtype, leakType string, monthly float64) Leakage {
	return Leakage{
		ID:            contracts.ItemID(c.Index, subtype),
		ClientName:    c.ClientName,
		ContractID:    c.Index,
		LeakType:      leakType,
		AmountMonthly: money.Round2(monthly),
		AmountAnnual:  money.Round2(monthly * 12),
	}
}

// =============================================================================
// Detectors
// =============================================================================

// pricing: 요율이 tier 평균보다 15% 이상 낮거나 건당 수수료가 시장가보다 낮을 때
func (d *Detector) pricing(c contracts.Contract) []Leakage {
	tb, ok := d.bench.Tier(c.ClientTier)
	if !ok {
		return nil
	}
	var out []Leakage

	share, avg := c.RevenueSharePct, tb.AvgRevenueShare
	if share > 0 && avg > 0 && share < avg*0.85 {
		gap := avg - share
		l := newLeakage(c, SubtypeRevShare, "Pricing - Below Market Rate", c.ClientMonthlyRevenue*(gap/100))
		l.Description = fmt.Sprintf("Revenue share of %s%% is %.1fpp below %s tier average of %.1f%%",
			money.Num(share), gap, c.ClientTier, avg)
		l.RootCause = "Contract negotiated below market rate or hasn't been updated"
		l.FixAction = fmt.Sprintf("Renegotiate to %.1f%% on next renewal", avg)
		l.FixEffort = EffortMedium
		l.FixTimeline = "Next renewal cycle"
		l.Confidence = 0.85
		out = append(out, l)
	}

	fee := c.PerTransactionFee
	if fee > 0 && fee < lowTransactionFee {
		monthly := float64(c.SubscriberCount) * (MarketTransactionFee - fee)
		if monthly > materialTxnFeeMonthly {
			l := newLeakage(c, SubtypeTxnFee, "Pricing - Low Transaction Fee", monthly)
			l.Description = fmt.Sprintf("Transaction fee of $%.2f is below market rate of $0.25", fee)
			l.RootCause = "Aggressive discounting during initial negotiation"
			l.FixAction = "Include fee adjustment clause in renewal"
			l.FixEffort = EffortMedium
			l.FixTimeline = "Next renewal"
			l.Confidence = 0.75
			out = append(out, l)
		}
	}
	return out
}

// volume: 최소 계약 물량 대비 50% 넘게 성장했는데 요율 조정이 없을 때
func volume(c contracts.Contract) []Leakage {
	subs := float64(c.SubscriberCount)
	minTxn := float64(c.MonthlyMinimumTransactions)
	if c.VolumeDiscountThreshold <= 0 || subs <= 0 || minTxn <= 0 {
		return nil
	}
	if subs <= minTxn*1.5 {
		return nil
	}

	growth := (subs - minTxn) / minTxn * 100
	if growth <= 50 {
		return nil
	}

	l := newLeakage(c, SubtypeVolume, "Volume - Unpriced Growth", c.OurMonthlyRevenue*0.10)
	l.Description = fmt.Sprintf("Client has grown %.0f%% above contracted minimum without rate adjustment", growth)
	l.RootCause = "No price escalation clause tied to volume growth"
	l.FixAction = "Propose tiered pricing that captures growth value"
	l.FixEffort = EffortMedium
	l.FixTimeline = "Proactive outreach within 30 days"
	l.Confidence = 0.70
	return []Leakage{l}
}

// billing: Net 45 이상이면 연체율 15%로 추정, 미징수 연체료를 누수로 봄
func billing(c contracts.Contract) []Leakage {
	lateRate := 0.08
	if c.PaymentTermsDays >= 45 {
		lateRate = 0.15
	}
	if lateRate <= 0.10 {
		return nil
	}

	uncollected := c.OurMonthlyRevenue * lateRate * (c.LatePaymentPct / 100)
	l := newLeakage(c, SubtypeBillingLate, "Billing - Uncollected Late Fees", uncollected)
	l.Description = fmt.Sprintf("Extended payment terms (Net %d) correlate with %.0f%% late payment rate",
		c.PaymentTermsDays, lateRate*100)
	l.RootCause = "Late fees not being enforced consistently"
	l.FixAction = "Implement automated late fee billing and collection"
	l.FixEffort = EffortLow
	l.FixTimeline = "Immediate - automate in billing system"
	l.Confidence = 0.65
	return []Leakage{l}
}

// sla: Standard/Starter 고객이 Enterprise 수준 SLA를 받는 경우 (프리미엄 가치 ~15%)
func sla(c contracts.Contract) []Leakage {
	if !c.IsTier(contracts.TierStandard, contracts.TierStarter) {
		return nil
	}
	if c.BillingAccuracySLA < 99.9 && c.PlatformUptimeSLA < 99.99 && c.SupportResponseHours > 1 {
		return nil
	}

	l := newLeakage(c, SubtypeSLA, "SLA - Uncompensated Premium Service", c.OurMonthlyRevenue*0.15)
	l.Description = fmt.Sprintf("%s tier client receiving Enterprise-level SLAs (99.9%%+ accuracy, %dhr support)",
		c.ClientTier, c.SupportResponseHours)
	l.RootCause = "SLAs negotiated without corresponding pricing tier"
	l.FixAction = "Offer tier upgrade with current SLAs formalized, or adjust SLAs to tier"
	l.FixEffort = EffortMedium
	l.FixTimeline = "Next QBR or renewal"
	l.Confidence = 0.80
	return []Leakage{l}
}

func terms(c contracts.Contract) []Leakage {
	var out []Leakage

	if c.SLACreditPct >= 25 {
		expected := c.OurMonthlyRevenue * (c.SLACreditPct / 100) * slaBreachProbability * 12
		if expected > materialSLACreditCost {
			l := newLeakage(c, SubtypeSLACredit, "Terms - Excessive SLA Credits", expected/12)
			l.AmountAnnual = money.Round2(expected)
			l.Description = fmt.Sprintf("SLA credit of %s%% creates %s/year expected liability",
				money.Num(c.SLACreditPct), money.Dollars(expected, 0))
			l.RootCause = "Aggressive SLA credits negotiated without actuarial analysis"
			l.FixAction = "Cap credits at 15% or add breach procedures that reduce exposure"
			l.FixEffort = EffortMedium
			l.FixTimeline = "Next renewal"
			l.Confidence = 0.60
			out = append(out, l)
		}
	}

	if c.ContractLengthMonths <= 12 && c.EarlyTerminationMonths <= 3 {
		atRisk := c.OurMonthlyRevenue * shortTermChurnRisk * 12
		l := newLeakage(c, SubtypeShortTerm, "Terms - Short Contract Exposure", atRisk/12)
		l.AmountAnnual = money.Round2(atRisk)
		l.Description = fmt.Sprintf("Short %d-month term with %d-month notice creates high churn exposure",
			c.ContractLengthMonths, c.EarlyTerminationMonths)
		l.RootCause = "Insufficient commitment secured during negotiation"
		l.FixAction = "Offer renewal incentive for 24+ month extension"
		l.FixEffort = EffortMedium
		l.FixTimeline = "Initiate renewal discussion immediately"
		l.Confidence = 0.70
		out = append(out, l)
	}
	return out
}
