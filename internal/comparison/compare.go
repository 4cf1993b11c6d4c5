// Package comparison diffs two contracts field by field and judges which
// side holds the provider-favorable term.
package comparison

import (
	"fmt"
	"strings"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Field kinds
const (
	KindCategory   = "category"
	KindPercentage = "percentage"
	KindCurrency   = "currency"
	KindMonths     = "months"
	KindDays       = "days"
	KindHours      = "hours"
	KindBoolean    = "boolean"
)

// Verdicts
const (
	ABetter = "a_better"
	BBetter = "b_better"
	Neutral = "neutral"
)

type direction int

const (
	neutral direction = iota
	higherBetter
	lowerBetter
)

type field struct {
	key   string
	label string
	kind  string
	dir   direction
	value func(c contracts.Contract) any
}

// fields: 비교 순서 = 출력 순서
var fields = []field{
	{"billing_model", "Billing Model", KindCategory, neutral, func(c contracts.Contract) any { return c.BillingModel }},
	{"revenue_share_pct", "Revenue Share %", KindPercentage, higherBetter, func(c contracts.Contract) any { return c.RevenueSharePct }},
	{"per_transaction_fee", "Per-Transaction Fee", KindCurrency, higherBetter, func(c contracts.Contract) any { return c.PerTransactionFee }},
	{"monthly_platform_fee", "Monthly Platform Fee", KindCurrency, higherBetter, func(c contracts.Contract) any { return c.MonthlyPlatformFee }},
	{"our_monthly_revenue", "Monthly Revenue", KindCurrency, higherBetter, func(c contracts.Contract) any { return c.OurMonthlyRevenue }},
	{"annual_contract_value", "Annual Contract Value", KindCurrency, higherBetter, func(c contracts.Contract) any { return c.AnnualContractValue }},
	{"contract_length_months", "Contract Length", KindMonths, higherBetter, func(c contracts.Contract) any { return c.ContractLengthMonths }},
	{"billing_accuracy_sla", "Billing Accuracy SLA", KindPercentage, higherBetter, func(c contracts.Contract) any { return c.BillingAccuracySLA }},
	{"platform_uptime_sla", "Platform Uptime SLA", KindPercentage, higherBetter, func(c contracts.Contract) any { return c.PlatformUptimeSLA }},
	{"support_response_hours", "Support Response Time", KindHours, lowerBetter, func(c contracts.Contract) any { return c.SupportResponseHours }},
	{"dispute_resolution_days", "Dispute Resolution", KindDays, lowerBetter, func(c contracts.Contract) any { return c.DisputeResolutionDays }},
	{"payment_terms_days", "Payment Terms", KindDays, lowerBetter, func(c contracts.Contract) any { return c.PaymentTermsDays }},
	{"sla_credit_pct", "SLA Credit %", KindPercentage, lowerBetter, func(c contracts.Contract) any { return c.SLACreditPct }},
	{"late_payment_pct", "Late Payment Fee", KindPercentage, higherBetter, func(c contracts.Contract) any { return c.LatePaymentPct }},
	{"early_termination_months", "ETF Notice Period", KindMonths, higherBetter, func(c contracts.Contract) any { return c.EarlyTerminationMonths }},
	{"early_termination_fee", "Early Termination Fee", KindCurrency, higherBetter, func(c contracts.Contract) any { return c.EarlyTerminationFee }},
	{"pci_compliant", "PCI Compliance", KindBoolean, neutral, func(c contracts.Contract) any { return c.PCICompliant }},
	{"soc2_certified", "SOC 2 Certified", KindBoolean, neutral, func(c contracts.Contract) any { return c.SOC2Certified }},
	{"data_retention_months", "Data Retention", KindMonths, higherBetter, func(c contracts.Contract) any { return c.DataRetentionMonths }},
	{"volume_discount_pct", "Volume Discount", KindPercentage, higherBetter, func(c contracts.Contract) any { return c.VolumeDiscountPct }},
}

// Difference is one field whose value differs
type Difference struct {
	Field      string `json:"field"`
	ContractA  string `json:"contract_a"`
	ContractB  string `json:"contract_b"`
	RawA       any    `json:"raw_a"`
	RawB       any    `json:"raw_b"`
	Delta      string `json:"delta,omitempty"`
	Comparison string `json:"comparison"`
}

// FinancialImpact is the B-minus-A revenue delta
type FinancialImpact struct {
	MonthlyRevenueDelta float64 `json:"monthly_revenue_delta"`
	AnnualRevenueDelta  float64 `json:"annual_revenue_delta"`
}

// Comparison is the full diff of two contracts
type Comparison struct {
	ContractA       string          `json:"contract_a"`
	ContractB       string          `json:"contract_b"`
	Differences     []Difference    `json:"differences"`
	Summary         string          `json:"summary"`
	FinancialImpact FinancialImpact `json:"financial_impact"`
}

// Compare diffs a against b. Only differing fields are listed.
func Compare(a, b contracts.Contract) Comparison {
	out := Comparison{
		ContractA:   a.ClientName,
		ContractB:   b.ClientName,
		Differences: []Difference{},
	}

	for _, f := range fields {
		va, vb := f.value(a), f.value(b)
		if va == vb {
			continue
		}

		d := Difference{
			Field:      f.label,
			ContractA:  format(va, f.kind, false),
			ContractB:  format(vb, f.kind, false),
			RawA:       va,
			RawB:       vb,
			Comparison: Neutral,
		}

		na, aNumeric := number(va)
		nb, bNumeric := number(vb)
		if aNumeric && bNumeric {
			delta := nb - na
			d.Delta = format(delta, f.kind, true)
			if f.key == "our_monthly_revenue" {
				out.FinancialImpact = FinancialImpact{
					MonthlyRevenueDelta: money.Round2(delta),
					AnnualRevenueDelta:  money.Round2(delta * 12),
				}
			}
			d.Comparison = verdict(f.dir, na, nb)
		}
		out.Differences = append(out.Differences, d)
	}

	out.Summary = summarize(out)
	return out
}

func verdict(dir direction, a, b float64) string {
	switch dir {
	case higherBetter:
		if b > a {
			return BBetter
		}
		if a > b {
			return ABetter
		}
	case lowerBetter:
		if b < a {
			return BBetter
		}
		if a < b {
			return ABetter
		}
	}
	return Neutral
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// format renders a value for display; withSign prefixes "+" on positive deltas
func format(v any, kind string, withSign bool) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		return x
	}

	n, _ := number(v)
	sign := ""
	if withSign && n > 0 {
		sign = "+"
	}
	// 부동소수 잔차 제거 (99.9-99.5 → 0.4)
	text := money.Num(money.Round(n, 4))

	switch kind {
	case KindCurrency:
		return sign + money.Dollars(n, 2)
	case KindPercentage:
		return sign + text + "%"
	case KindMonths:
		return sign + text + " months"
	case KindDays:
		return sign + text + " days"
	case KindHours:
		return sign + text + " hours"
	default:
		return sign + text
	}
}

func summarize(c Comparison) string {
	if len(c.Differences) == 0 {
		return fmt.Sprintf("The contracts with %s and %s have identical terms.", c.ContractA, c.ContractB)
	}

	aWins, bWins := 0, 0
	for _, d := range c.Differences {
		switch d.Comparison {
		case ABetter:
			aWins++
		case BBetter:
			bWins++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Comparing %s vs %s: Found %d differences. ", c.ContractA, c.ContractB, len(c.Differences))
	switch {
	case aWins > bWins:
		fmt.Fprintf(&sb, "%s has more favorable terms in %d areas. ", c.ContractA, aWins)
	case bWins > aWins:
		fmt.Fprintf(&sb, "%s has more favorable terms in %d areas. ", c.ContractB, bWins)
	default:
		sb.WriteString("Both contracts have similar overall favorability. ")
	}

	delta := c.FinancialImpact.AnnualRevenueDelta
	switch {
	case delta > 0:
		fmt.Fprintf(&sb, "%s generates %s more annual revenue.", c.ContractB, money.Dollars(delta, 0))
	case delta < 0:
		fmt.Fprintf(&sb, "%s generates %s more annual revenue.", c.ContractA, money.Dollars(-delta, 0))
	}
	return strings.TrimSpace(sb.String())
}
