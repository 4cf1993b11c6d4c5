// Package action fuses signals, leakages and opportunities into one ranked,
// deduplicated next-best-action queue. It maps and ranks results computed
// elsewhere and never re-derives a score.
package action

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/leakage"
	"github.com/wonny/billflow/backend/internal/opportunity"
	"github.com/wonny/billflow/backend/internal/signals"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Urgency levels, in queue order
const (
	UrgencyCritical    = "critical"    // act today
	UrgencyHigh        = "high"        // this week
	UrgencyMedium      = "medium"      // this month
	UrgencyLow         = "low"         // when possible
	UrgencyOpportunity = "opportunity" // nice to have
)

// Action types
const (
	TypeCall        = "call"
	TypeEmail       = "email"
	TypeMeeting     = "meeting"
	TypeProposal    = "proposal"
	TypeEscalate    = "escalate"
	TypeRenegotiate = "renegotiate"
	TypeUpsell      = "upsell"
	TypeRetain      = "retain"
	TypeCollect     = "collect"
)

// Id prefixes trace an action back to its source item
const (
	PrefixSignal      = "action-"
	PrefixLeakage     = "action-leak-"
	PrefixOpportunity = "action-opp-"
)

// Selection thresholds
const (
	MinSignalStrength      = 0.65
	TopLeakages            = 10
	MinLeakageAnnual       = 10000.0
	highLeakageAnnual      = 50000.0
	TopOpportunities       = 10
	MinOpportunityProb     = 0.40
	MinOpportunityAnnual   = 20000.0
	criticalSignalStrength = 0.8
	dueDateLayout          = "2006-01-02"
)

var urgencyRank = map[string]int{
	UrgencyCritical:    0,
	UrgencyHigh:        1,
	UrgencyMedium:      2,
	UrgencyLow:         3,
	UrgencyOpportunity: 4,
}

var signalActionType = map[string]string{
	signals.TypeRenewalRisk:     TypeMeeting,
	signals.TypeExpansionSignal: TypeProposal,
	signals.TypePaymentDelay:    TypeCall,
	signals.TypeEngagementDrop:  TypeMeeting,
}

var signalUrgency = map[string]string{
	signals.TypeRenewalRisk:     UrgencyCritical,
	signals.TypePaymentDelay:    UrgencyHigh,
	signals.TypeEngagementDrop:  UrgencyHigh,
	signals.TypeExpansionSignal: UrgencyMedium,
}

// Item is one synthesized next-best-action
type Item struct {
	ID             string   `json:"id"`
	ClientName     string   `json:"client_name"`
	ContractID     int      `json:"contract_id"`
	ActionType     string   `json:"action_type"`
	Urgency        string   `json:"urgency"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RevenueImpact  float64  `json:"revenue_impact"`
	DueDate        string   `json:"due_date"`
	Script         *string  `json:"script"`
	AutoExecutable bool     `json:"auto_executable"`
	Prerequisites  []string `json:"prerequisites"`
	SuccessMetrics []string `json:"success_metrics"`
}

// UrgencyRank orders urgencies; unknown values sort last
func UrgencyRank(urgency string) int {
	if r, ok := urgencyRank[urgency]; ok {
		return r
	}
	return len(urgencyRank)
}

// Builder 액션 큐 생성기
// due date는 주입된 clock 기준
type Builder struct {
	portfolio contracts.Portfolio
	now       func() time.Time
}

// NewBuilder creates a builder; signal actions take revenue impact from the portfolio ACV
func NewBuilder(p contracts.Portfolio, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{portfolio: p, now: now}
}

// Build maps already sorted inputs into the ranked queue.
// Order: urgency rank asc, then revenue impact desc. Ids are unique.
func (b *Builder) Build(leaks []leakage.Leakage, opps []opportunity.Opportunity, sigs []signals.Signal) []Item {
	var items []Item

	for _, s := range sigs {
		if s.Strength >= MinSignalStrength {
			items = append(items, b.fromSignal(s))
		}
	}
	for _, l := range head(leaks, TopLeakages) {
		if l.AmountAnnual >= MinLeakageAnnual {
			items = append(items, b.fromLeakage(l))
		}
	}
	for _, o := range head(opps, TopOpportunities) {
		if o.SuccessProbability >= MinOpportunityProb && o.PotentialAnnual >= MinOpportunityAnnual {
			items = append(items, fromOpportunity(o))
		}
	}

	items = dedupe(items)
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := UrgencyRank(items[i].Urgency), UrgencyRank(items[j].Urgency)
		if ri != rj {
			return ri < rj
		}
		return items[i].RevenueImpact > items[j].RevenueImpact
	})
	return items
}

// Find returns the queued action with the given id
func Find(items []Item, id string) (Item, bool) {
	for _, a := range items {
		if a.ID == id {
			return a, true
		}
	}
	return Item{}, false
}

func (b *Builder) due(days int) string {
	return b.now().AddDate(0, 0, days).Format(dueDateLayout)
}

func (b *Builder) fromSignal(s signals.Signal) Item {
	actionType, ok := signalActionType[s.SignalType]
	if !ok {
		actionType = TypeCall
	}
	urgency, ok := signalUrgency[s.SignalType]
	if !ok {
		urgency = UrgencyMedium
	}
	days := 7
	if s.Strength > criticalSignalStrength {
		days = 3
	}

	acv := 0.0
	if c, found := b.portfolio.Find(s.ContractID); found {
		acv = c.AnnualContractValue
	}

	return Item{
		ID:             PrefixSignal + s.ID,
		ClientName:     s.ClientName,
		ContractID:     s.ContractID,
		ActionType:     actionType,
		Urgency:        urgency,
		Title:          "Respond to " + titleize(s.SignalType),
		Description:    s.RecommendedResponse,
		RevenueImpact:  acv,
		DueDate:        b.due(days),
		AutoExecutable: false,
		Prerequisites:  []string{"Review signal evidence", "Check recent interactions"},
		SuccessMetrics: []string{"Meeting scheduled", "Response received", "Issue resolved"},
	}
}

func (b *Builder) fromLeakage(l leakage.Leakage) Item {
	urgency := UrgencyMedium
	if l.AmountAnnual > highLeakageAnnual {
		urgency = UrgencyHigh
	}
	return Item{
		ID:             PrefixLeakage + l.ID,
		ClientName:     l.ClientName,
		ContractID:     l.ContractID,
		ActionType:     TypeRenegotiate,
		Urgency:        urgency,
		Title:          "Fix: " + l.LeakType,
		Description:    l.FixAction,
		RevenueImpact:  l.AmountAnnual,
		DueDate:        b.due(14),
		AutoExecutable: l.FixEffort == leakage.EffortLow,
		Prerequisites:  []string{"Confirm leakage: " + l.Description},
		SuccessMetrics: []string{fmt.Sprintf("Recover %s/year", money.Dollars(l.AmountAnnual, 0))},
	}
}

func fromOpportunity(o opportunity.Opportunity) Item {
	points := make([]string, len(o.TalkingPoints))
	for i, tp := range o.TalkingPoints {
		points[i] = "• " + tp
	}
	script := strings.Join(points, "\n")

	return Item{
		ID:             PrefixOpportunity + o.ID,
		ClientName:     o.ClientName,
		ContractID:     o.ContractID,
		ActionType:     TypeUpsell,
		Urgency:        UrgencyOpportunity,
		Title:          "Opportunity: " + o.OpportunityType,
		Description:    o.Approach,
		RevenueImpact:  o.PotentialAnnual,
		DueDate:        o.BestTiming,
		Script:         &script,
		AutoExecutable: false,
		Prerequisites:  []string{"Review client history", "Prepare proposal"},
		SuccessMetrics: []string{fmt.Sprintf("Close %s/year opportunity", money.Dollars(o.PotentialAnnual, 0))},
	}
}

// titleize: "renewal_risk" -> "Renewal Risk" (Caser는 상태가 있어 호출마다 생성)
func titleize(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// dedupe keeps the first item per id
func dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, a := range items {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
