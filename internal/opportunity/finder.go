// Package opportunity finds revenue not yet captured: tier upgrades,
// volume growth, billing-model changes, term extensions and service upsells.
package opportunity

import (
	"fmt"
	"sort"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/simrand"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Finder sub-types (part of the item id)
const (
	SubtypeTierUpgrade     = "tier_upgrade"
	SubtypeVolumeExpansion = "volume_expansion"
	SubtypeModelSwitch     = "model_switch"
	SubtypeModelRevShare   = "model_revshare"
	SubtypeTermExtension   = "term_extension"
	SubtypeCompliance      = "service_compliance"
	SubtypeSupport         = "service_support"
)

// Opportunity types (display labels)
const (
	TypeTierUpgrade     = "Tier Upgrade"
	TypeVolumeExpansion = "Volume Expansion"
	TypeModelSwitch     = "Billing Model Optimization"
	TypeModelRevShare   = "Model Transition to Revenue Share"
	TypeTermExtension   = "Term Extension"
	TypeCompliance      = "Compliance Package Upsell"
	TypeSupport         = "Premium Support Upgrade"
)

// TierThresholds: 현재 tier 기준 구독자 수, 85% 이상이면 다음 tier 자격
var TierThresholds = map[string]int{
	contracts.TierStarter:    25000,
	contracts.TierStandard:   50000,
	contracts.TierBusiness:   100000,
	contracts.TierEnterprise: 200000,
}

// Opportunity is one untapped revenue opportunity
type Opportunity struct {
	ID                 string   `json:"id"`
	ClientName         string   `json:"client_name"`
	ContractID         int      `json:"contract_id"`
	OpportunityType    string   `json:"opportunity_type"`
	PotentialMonthly   float64  `json:"potential_monthly"`
	PotentialAnnual    float64  `json:"potential_annual"`
	Description        string   `json:"description"`
	Approach           string   `json:"approach"`
	SuccessProbability float64  `json:"success_probability"`
	BestTiming         string   `json:"best_timing"`
	TalkingPoints      []string `json:"talking_points"`
}

// Finder 기회 탐지기 (순수 계산기)
// growth trajectory는 simrand 시드(contract id + 100)로 대체
type Finder struct {
	bench *benchmark.Benchmarks
	rand  simrand.Source
}

// NewFinder creates a finder; a nil source means the seeded default
func NewFinder(bench *benchmark.Benchmarks, src simrand.Source) *Finder {
	if bench == nil {
		bench = benchmark.Default()
	}
	if src == nil {
		src = simrand.NewSeeded()
	}
	return &Finder{bench: bench, rand: src}
}

// FindAll runs the five finders per contract, sorted by annual potential desc
func (f *Finder) FindAll(p contracts.Portfolio) []Opportunity {
	out := []Opportunity{}
	for _, c := range p {
		out = append(out, f.Find(c)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PotentialAnnual > out[j].PotentialAnnual
	})
	return out
}

// Find runs the five finders for one contract
func (f *Finder) Find(c contracts.Contract) []Opportunity {
	var out []Opportunity
	out = append(out, tierUpgrade(c)...)
	out = append(out, f.volumeExpansion(c)...)
	out = append(out, modelOptimization(c)...)
	out = append(out, termExtension(c)...)
	out = append(out, serviceUpsell(c)...)
	return out
}

func newOpportunity(c contracts.Contract, subtype, typ string, monthly float64) Opportunity {
	return Opportunity{
		ID:               contracts.ItemID(c.Index, subtype),
		ClientName:       c.ClientName,
		ContractID:       c.Index,
		OpportunityType:  typ,
		PotentialMonthly: money.Round2(monthly),
		PotentialAnnual:  money.Round2(monthly * 12),
	}
}

// =============================================================================
// Finders
// =============================================================================

func tierUpgrade(c contracts.Contract) []Opportunity {
	rank := c.TierRank()
	if rank >= len(contracts.TierLadder)-1 {
		return nil
	}
	next := contracts.TierLadder[rank+1]
	threshold := TierThresholds[c.ClientTier]

	if float64(c.SubscriberCount) < float64(threshold)*0.85 {
		return nil
	}

	subs := money.Grouped(float64(c.SubscriberCount), 0)
	o := newOpportunity(c, SubtypeTierUpgrade, TypeTierUpgrade, c.OurMonthlyRevenue*0.20)
	o.Description = fmt.Sprintf("Client has %s subscribers, qualifying for %s tier", subs, next)
	o.Approach = "Position upgrade as recognition of their growth with enhanced SLAs and support"
	o.SuccessProbability = 0.65
	o.BestTiming = "Next QBR or account review"
	o.TalkingPoints = []string{
		fmt.Sprintf("You've grown to %s subscribers - congratulations!", subs),
		fmt.Sprintf("%s tier includes enhanced SLAs and dedicated support", next),
		"We can lock in preferential rates with a longer commitment",
		"Many clients at your scale have found value in premium features",
	}
	return []Opportunity{o}
}

func (f *Finder) volumeExpansion(c contracts.Contract) []Opportunity {
	growth := f.rand.Stream(simrand.Seed(c.Index, simrand.OffsetGrowth)).Uniform(0.05, 0.25)
	if growth <= 0.15 || c.ClientTier == contracts.TierEnterprise {
		return nil
	}

	projected := float64(c.SubscriberCount) * growth
	o := newOpportunity(c, SubtypeVolumeExpansion, TypeVolumeExpansion, c.OurMonthlyRevenue*growth)
	o.Description = fmt.Sprintf("Client showing %.0f%% growth trajectory, ~%s new subscribers",
		growth*100, money.Grouped(projected, 0))
	o.Approach = "Proactive capacity planning discussion with growth pricing"
	o.SuccessProbability = 0.55
	o.BestTiming = "Before their next growth milestone"
	o.TalkingPoints = []string{
		"We've noticed strong growth in your subscriber base",
		"Let's ensure our infrastructure scales with you",
		"Volume commitments unlock better per-unit pricing",
		"Early planning prevents scaling issues",
	}
	return []Opportunity{o}
}

func modelOptimization(c contracts.Contract) []Opportunity {
	var out []Opportunity
	clientRev := c.ClientMonthlyRevenue

	// 건당 과금 + 대량 고객 → 수익 배분 전환
	if c.BillingModel == contracts.ModelPerTransaction && c.SubscriberCount > 50000 {
		rate := 0.0
		if clientRev > 0 {
			rate = c.OurMonthlyRevenue / clientRev * 100
		}
		if rate < 2.5 {
			increase := clientRev*0.025 - c.OurMonthlyRevenue
			if increase > 5000 {
				o := newOpportunity(c, SubtypeModelSwitch, TypeModelSwitch, increase)
				o.Description = fmt.Sprintf("Current per-transaction model yields %.2f%% effective rate; revenue share could yield 2.5%%+", rate)
				o.Approach = "Frame as simplification and alignment of incentives"
				o.SuccessProbability = 0.45
				o.BestTiming = "Contract renewal or annual review"
				o.TalkingPoints = []string{
					"Revenue share aligns our success with yours",
					"Simplifies billing - no transaction counting",
					"Provides cost predictability as you scale",
					"Many similar clients have found this model more efficient",
				}
				out = append(out, o)
			}
		}
	}

	// 정액 과금 고객이 성장분을 가져가지 못하는 경우
	if c.BillingModel == contracts.ModelFlatFee && c.SubscriberCount > 30000 {
		fee := c.MonthlyPlatformFee
		rate := 0.0
		if clientRev > 0 {
			rate = fee / clientRev * 100
		}
		if rate < 0.5 {
			increase := clientRev*0.02 - fee
			if increase > 3000 {
				o := newOpportunity(c, SubtypeModelRevShare, TypeModelRevShare, increase)
				o.Description = fmt.Sprintf("Flat fee of %s is only %.2f%% of their revenue; significant upside with revenue share",
					money.Dollars(fee, 0), rate)
				o.Approach = "Offer hybrid model as transition step"
				o.SuccessProbability = 0.40
				o.BestTiming = "When client is expanding or renewing"
				o.TalkingPoints = []string{
					"As you've grown, a usage-based model may be more efficient",
					"Hybrid model provides stability with growth participation",
					"Removes artificial caps on our partnership value",
				}
				out = append(out, o)
			}
		}
	}
	return out
}

// termExtension: 24개월 이하 계약 → 12개월이면 36, 아니면 48개월로 연장 (5% 할인 반영해 90%)
func termExtension(c contracts.Contract) []Opportunity {
	length := c.ContractLengthMonths
	if length > 24 {
		return nil
	}

	extension := 48
	if length == 12 {
		extension = 36
	}
	additional := extension - length
	net := c.OurMonthlyRevenue * float64(additional) * 0.90

	o := newOpportunity(c, SubtypeTermExtension, TypeTermExtension, 0)
	o.PotentialMonthly = money.Round2(net / float64(extension))
	o.PotentialAnnual = money.Round2(net / (float64(extension) / 12))
	o.Description = fmt.Sprintf("Extend from %d to %d months for %d months additional commitment", length, extension, additional)
	o.Approach = "Offer 5% discount in exchange for extended commitment"
	o.SuccessProbability = 0.60
	o.BestTiming = "6 months before current term ends"
	o.TalkingPoints = []string{
		"Lock in current rates before annual increases",
		"Extended commitment unlocks loyalty pricing",
		"Reduces renewal overhead for both parties",
		"Demonstrates partnership commitment",
	}
	return []Opportunity{o}
}

func serviceUpsell(c contracts.Contract) []Opportunity {
	if !c.IsTier(contracts.TierBusiness, contracts.TierEnterprise) {
		return nil
	}
	var out []Opportunity

	if !c.SOC2Certified {
		o := newOpportunity(c, SubtypeCompliance, TypeCompliance, c.OurMonthlyRevenue*0.08)
		o.Description = fmt.Sprintf("%s client without SOC 2 compliance package", c.ClientTier)
		o.Approach = "Position as risk mitigation and enterprise requirement"
		o.SuccessProbability = 0.50
		o.BestTiming = "During compliance or audit season (Q4/Q1)"
		o.TalkingPoints = []string{
			"Many of your peers require SOC 2 from vendors",
			"Compliance package includes audit support",
			"Reduces your own compliance burden",
			"Differentiates you to enterprise customers",
		}
		out = append(out, o)
	}

	if c.SupportResponseHours > 2 {
		o := newOpportunity(c, SubtypeSupport, TypeSupport, c.OurMonthlyRevenue*0.05)
		o.Description = fmt.Sprintf("Current %d-hour SLA; premium 1-hour response available", c.SupportResponseHours)
		o.Approach = "Highlight after any support interaction or outage"
		o.SuccessProbability = 0.35
		o.BestTiming = "After a support ticket or incident"
		o.TalkingPoints = []string{
			"Premium support includes 1-hour response SLA",
			"Dedicated support engineer assigned to your account",
			"Proactive monitoring and alerting included",
			"Priority queue for all issues",
		}
		out = append(out, o)
	}
	return out
}
