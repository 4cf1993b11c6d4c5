package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Client tiers
const (
	TierEnterprise = "Enterprise"
	TierBusiness   = "Business"
	TierStandard   = "Standard"
	TierStarter    = "Starter"
)

// Tiers lists the four fixed tiers in benchmark order
var Tiers = []string{TierEnterprise, TierBusiness, TierStandard, TierStarter}

// TierLadder lists tiers from smallest to largest (upgrade path)
var TierLadder = []string{TierStarter, TierStandard, TierBusiness, TierEnterprise}

// Billing models
const (
	ModelRevenueShare   = "Revenue Share"
	ModelPerTransaction = "Per-Transaction"
	ModelHybrid         = "Hybrid"
	ModelFlatFee        = "Flat Fee"
)

// DateLayout is the layout of start_date / end_date ("March 04, 2024")
const DateLayout = "January 02, 2006"

// Contract is one billing service agreement.
// ⭐ SSOT: 모든 필드 기본값은 Defaults()에서만 정의. Decoders (JSON, YAML, SQL)
// start from Defaults() so an absent field always reads as its documented fallback.
type Contract struct {
	Index          int    `json:"index" yaml:"index"`
	ClientName     string `json:"client_name" yaml:"client_name"`
	ContractNumber string `json:"contract_number" yaml:"contract_number"`
	ClientTier     string `json:"client_tier" yaml:"client_tier"`
	BillingModel   string `json:"billing_model" yaml:"billing_model"`

	// Volume
	SubscriberCount            int     `json:"subscriber_count" yaml:"subscriber_count"`
	AvgARPU                    float64 `json:"avg_arpu" yaml:"avg_arpu"`
	MonthlyMinimumTransactions int     `json:"monthly_minimum_transactions" yaml:"monthly_minimum_transactions"`
	VolumeDiscountThreshold    float64 `json:"volume_discount_threshold" yaml:"volume_discount_threshold"`
	VolumeDiscountPct          float64 `json:"volume_discount_pct" yaml:"volume_discount_pct"`

	// Financial terms
	ClientMonthlyRevenue float64 `json:"client_monthly_revenue" yaml:"client_monthly_revenue"`
	RevenueSharePct      float64 `json:"revenue_share_pct" yaml:"revenue_share_pct"`
	PerTransactionFee    float64 `json:"per_transaction_fee" yaml:"per_transaction_fee"`
	MonthlyPlatformFee   float64 `json:"monthly_platform_fee" yaml:"monthly_platform_fee"`
	OurMonthlyRevenue    float64 `json:"our_monthly_revenue" yaml:"our_monthly_revenue"`
	AnnualContractValue  float64 `json:"annual_contract_value" yaml:"annual_contract_value"`
	TotalContractValue   float64 `json:"total_contract_value" yaml:"total_contract_value"`

	// Duration / termination
	ContractLengthMonths   int     `json:"contract_length_months" yaml:"contract_length_months"`
	EarlyTerminationMonths int     `json:"early_termination_months" yaml:"early_termination_months"`
	EarlyTerminationFee    float64 `json:"early_termination_fee" yaml:"early_termination_fee"`
	StartDate              string  `json:"start_date" yaml:"start_date"`
	EndDate                string  `json:"end_date" yaml:"end_date"`

	// SLA
	BillingAccuracySLA    float64 `json:"billing_accuracy_sla" yaml:"billing_accuracy_sla"`
	PlatformUptimeSLA     float64 `json:"platform_uptime_sla" yaml:"platform_uptime_sla"`
	SupportResponseHours  int     `json:"support_response_hours" yaml:"support_response_hours"`
	DisputeResolutionDays int     `json:"dispute_resolution_days" yaml:"dispute_resolution_days"`
	SLACreditPct          float64 `json:"sla_credit_pct" yaml:"sla_credit_pct"`

	// Payment
	PaymentTermsDays    int     `json:"payment_terms_days" yaml:"payment_terms_days"`
	RemittanceFrequency string  `json:"remittance_frequency" yaml:"remittance_frequency"`
	LatePaymentPct      float64 `json:"late_payment_pct" yaml:"late_payment_pct"`

	// Compliance
	PCICompliant        bool `json:"pci_compliant" yaml:"pci_compliant"`
	SOC2Certified       bool `json:"soc2_certified" yaml:"soc2_certified"`
	DataRetentionMonths int  `json:"data_retention_months" yaml:"data_retention_months"`

	// Location
	City  string `json:"city" yaml:"city"`
	State string `json:"state" yaml:"state"`
	Phone string `json:"phone" yaml:"phone"`
}

// Defaults returns a contract holding every documented fallback value.
//
//	billing_accuracy_sla 99.5   platform_uptime_sla 99.9   sla_credit_pct 10
//	pci_compliant true          soc2_certified false       data_retention_months 24
//	payment_terms_days 30       late_payment_pct 2.0       contract_length_months 24
//	early_termination_months 6  dispute_resolution_days 10 support_response_hours 4
//	client_tier Standard        client_name Unknown        everything else zero
func Defaults() Contract {
	return Contract{
		ClientName:             "Unknown",
		ClientTier:             TierStandard,
		BillingAccuracySLA:     99.5,
		PlatformUptimeSLA:      99.9,
		SLACreditPct:           10,
		PCICompliant:           true,
		SOC2Certified:          false,
		DataRetentionMonths:    24,
		PaymentTermsDays:       30,
		LatePaymentPct:         2.0,
		ContractLengthMonths:   24,
		EarlyTerminationMonths: 6,
		DisputeResolutionDays:  10,
		SupportResponseHours:   4,
	}
}

// normalize fills derived values the record left empty.
// ACV = our_monthly_revenue × 12, TCV = our_monthly_revenue × length.
func (c *Contract) normalize() {
	if c.AnnualContractValue == 0 && c.OurMonthlyRevenue != 0 {
		c.AnnualContractValue = c.OurMonthlyRevenue * 12
	}
	if c.TotalContractValue == 0 && c.OurMonthlyRevenue != 0 {
		c.TotalContractValue = c.OurMonthlyRevenue * float64(c.ContractLengthMonths)
	}
	if c.ClientTier == "" {
		c.ClientTier = TierStandard
	}
	if c.ClientName == "" {
		c.ClientName = "Unknown"
	}
}

// UnmarshalJSON decodes on top of Defaults()
func (c *Contract) UnmarshalJSON(data []byte) error {
	type raw Contract
	r := raw(Defaults())
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*c = Contract(r)
	c.normalize()
	return nil
}

// UnmarshalYAML decodes on top of Defaults()
func (c *Contract) UnmarshalYAML(value *yaml.Node) error {
	type raw Contract
	r := raw(Defaults())
	if err := value.Decode(&r); err != nil {
		return err
	}
	*c = Contract(r)
	c.normalize()
	return nil
}

// Normalized returns c with derived fields filled (for records built in code or read from SQL)
func (c Contract) Normalized() Contract {
	c.normalize()
	return c
}

// IsTier reports whether the contract belongs to one of the given tiers
func (c Contract) IsTier(tiers ...string) bool {
	for _, t := range tiers {
		if c.ClientTier == t {
			return true
		}
	}
	return false
}

// TierRank returns the position on TierLadder (unknown tiers rank as Starter)
func (c Contract) TierRank() int {
	for i, t := range TierLadder {
		if t == c.ClientTier {
			return i
		}
	}
	return 0
}

// EndTime parses end_date; ok=false when absent or malformed
func (c Contract) EndTime() (time.Time, bool) {
	if strings.TrimSpace(c.EndDate) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// String is used in log lines
func (c Contract) String() string {
	return fmt.Sprintf("#%d %s (%s)", c.Index, c.ClientName, c.ClientTier)
}
