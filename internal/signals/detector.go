// Package signals simulates early-warning and expansion signals per client.
//
// Real signals would come from telemetry (support tickets, logins, payment
// history). Until that exists every trigger is a seeded draw keyed by
// (contract id + category offset), see simrand.
package signals

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/simrand"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Signal types
const (
	TypeRenewalRisk     = "renewal_risk"
	TypeExpansionSignal = "expansion_signal"
	TypePaymentDelay    = "payment_delay"
	TypeEngagementDrop  = "engagement_drop"
)

// Detector sub-types (part of the item id)
const (
	SubtypeRenewalImminent = "renewal_imminent"
	SubtypeExpansion       = "expansion_signal"
	SubtypePaymentDelay    = "payment_delay"
	SubtypeEngagementDrop  = "engagement_drop"
)

// Signal strengths and trigger thresholds
const (
	StrengthRenewal    = 0.90
	StrengthExpansion  = 0.75
	StrengthPayment    = 0.70
	StrengthEngagement = 0.65

	renewalWindowMonths = 3
	expansionTrigger    = 0.75
	paymentTrigger      = 0.85 // ~15% of clients
	engagementTrigger   = 0.88 // ~12% of clients
)

// Signal is one weak indicator detected for a client
type Signal struct {
	ID                  string   `json:"id"`
	ClientName          string   `json:"client_name"`
	ContractID          int      `json:"contract_id"`
	SignalType          string   `json:"signal_type"`
	Strength            float64  `json:"strength"`
	DetectedAt          string   `json:"detected_at"`
	Description         string   `json:"description"`
	Evidence            []string `json:"evidence"`
	RecommendedResponse string   `json:"recommended_response"`
	IfIgnored           string   `json:"if_ignored"`
}

// Detector 신호 탐지기
// detected_at은 주입된 clock에서만 읽음 (테스트에서 고정)
type Detector struct {
	rand simrand.Source
	now  func() time.Time
}

// NewDetector creates a detector; nil source/clock fall back to seeded/time.Now
func NewDetector(src simrand.Source, now func() time.Time) *Detector {
	if src == nil {
		src = simrand.NewSeeded()
	}
	if now == nil {
		now = time.Now
	}
	return &Detector{rand: src, now: now}
}

// DetectAll runs the four detectors per contract, sorted by strength desc
func (d *Detector) DetectAll(p contracts.Portfolio) []Signal {
	out := []Signal{}
	for _, c := range p {
		out = append(out, d.Detect(c)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Strength > out[j].Strength
	})
	return out
}

// Detect runs the four detectors for one contract
func (d *Detector) Detect(c contracts.Contract) []Signal {
	detectedAt := d.now().Format(time.RFC3339)

	var out []Signal
	for _, s := range []*Signal{
		d.renewal(c),
		d.expansion(c),
		d.payment(c),
		d.engagement(c),
	} {
		if s != nil {
			s.DetectedAt = detectedAt
			out = append(out, *s)
		}
	}
	return out
}

func newSignal(c contracts.Contract, subtype, typ string, strength float64) *Signal {
	return &Signal{
		ID:         contracts.ItemID(c.Index, subtype),
		ClientName: c.ClientName,
		ContractID: c.Index,
		SignalType: typ,
		Strength:   strength,
	}
}

func (d *Detector) draw(c contracts.Contract, offset int64) simrand.Stream {
	return d.rand.Stream(simrand.Seed(c.Index, offset))
}

// =============================================================================
// Detectors
// =============================================================================

func (d *Detector) renewal(c contracts.Contract) *Signal {
	remaining := d.draw(c, simrand.OffsetRenewal).IntRange(1, c.ContractLengthMonths)
	if remaining > renewalWindowMonths {
		return nil
	}

	s := newSignal(c, SubtypeRenewalImminent, TypeRenewalRisk, StrengthRenewal)
	s.Description = fmt.Sprintf("Contract expires in %d month(s) with no renewal discussion initiated", remaining)
	s.Evidence = []string{
		fmt.Sprintf("Contract end date approaching (%d months)", remaining),
		"No renewal meeting scheduled in calendar",
		"No proposal sent in last 60 days",
	}
	s.RecommendedResponse = "Schedule renewal discussion immediately; prepare competitive retention offer"
	s.IfIgnored = fmt.Sprintf("Client may shop alternatives; risk losing %s ACV", money.Dollars(c.AnnualContractValue, 0))
	return s
}

func (d *Detector) expansion(c contracts.Contract) *Signal {
	v := d.draw(c, simrand.OffsetExpansion).Float64()
	if v <= expansionTrigger || c.ClientTier == contracts.TierEnterprise {
		return nil
	}

	s := newSignal(c, SubtypeExpansion, TypeExpansionSignal, StrengthExpansion)
	s.Description = "Multiple expansion indicators detected"
	s.Evidence = []string{
		"Subscriber count growth rate above portfolio average",
		"Increased API call volume last 30 days",
		"Client mentioned growth plans in recent communication",
		"Industry news indicates market expansion",
	}
	s.RecommendedResponse = "Proactively reach out about capacity planning and tier upgrade"
	s.IfIgnored = "Competitor may capture the growth opportunity"
	return s
}

func (d *Detector) payment(c contracts.Contract) *Signal {
	if d.draw(c, simrand.OffsetPayment).Float64() <= paymentTrigger {
		return nil
	}

	s := newSignal(c, SubtypePaymentDelay, TypePaymentDelay, StrengthPayment)
	s.Description = "Payment pattern deviation detected"
	s.Evidence = []string{
		"Last 2 payments processed 5+ days late",
		"Payment method update requested recently",
		"Finance contact changed in CRM",
	}
	s.RecommendedResponse = "Reach out to new finance contact; verify payment details; consider early payment incentive"
	s.IfIgnored = "Late payments may escalate; potential bad debt risk"
	return s
}

func (d *Detector) engagement(c contracts.Contract) *Signal {
	if d.draw(c, simrand.OffsetEngagement).Float64() <= engagementTrigger {
		return nil
	}

	s := newSignal(c, SubtypeEngagementDrop, TypeEngagementDrop, StrengthEngagement)
	s.Description = "Client engagement metrics declining"
	s.Evidence = []string{
		"Portal logins down 40% from 30-day average",
		"No response to last 2 outreach attempts",
		"QBR meeting postponed twice",
		"Primary contact less responsive",
	}
	s.RecommendedResponse = "Executive outreach; schedule in-person meeting; assess satisfaction"
	s.IfIgnored = "Disengaged clients are 3x more likely to churn"
	return s
}
