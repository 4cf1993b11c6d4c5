package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/leakage"
	"github.com/wonny/billflow/backend/internal/opportunity"
	"github.com/wonny/billflow/backend/internal/signals"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func portfolio() contracts.Portfolio {
	c := contracts.Defaults()
	c.Index, c.ClientName, c.AnnualContractValue = 5, "Initech", 120000
	return contracts.Portfolio{c}
}

func TestBuild_Signals(t *testing.T) {
	sigs := []signals.Signal{
		{ID: "s1", ContractID: 5, ClientName: "Initech", SignalType: signals.TypeRenewalRisk, Strength: 0.9, RecommendedResponse: "Call now"},
		{ID: "s2", ContractID: 5, SignalType: signals.TypePaymentDelay, Strength: 0.7},
		{ID: "s3", ContractID: 5, SignalType: signals.TypeExpansionSignal, Strength: 0.75},
		{ID: "s4", ContractID: 5, SignalType: signals.TypeEngagementDrop, Strength: 0.6}, // below 0.65
	}

	got := NewBuilder(portfolio(), fixedNow).Build(nil, nil, sigs)
	require.Len(t, got, 3)

	renewal := got[0]
	assert.Equal(t, "action-s1", renewal.ID)
	assert.Equal(t, TypeMeeting, renewal.ActionType)
	assert.Equal(t, UrgencyCritical, renewal.Urgency)
	assert.Equal(t, "Respond to Renewal Risk", renewal.Title)
	assert.Equal(t, "Call now", renewal.Description)
	assert.Equal(t, 120000.0, renewal.RevenueImpact)
	assert.Equal(t, "2024-03-04", renewal.DueDate)
	assert.Nil(t, renewal.Script)
	assert.False(t, renewal.AutoExecutable)

	assert.Equal(t, UrgencyHigh, got[1].Urgency)
	assert.Equal(t, TypeCall, got[1].ActionType)
	assert.Equal(t, "2024-03-08", got[1].DueDate)
	assert.Equal(t, TypeProposal, got[2].ActionType)
	assert.Equal(t, "Respond to Expansion Signal", got[2].Title)
}

func TestBuild_Leakages(t *testing.T) {
	leaks := []leakage.Leakage{
		{ID: "big", LeakType: "Terms - Short Contract Exposure", AmountAnnual: 60000, FixAction: "Extend", FixEffort: leakage.EffortMedium, Description: "d"},
		{ID: "mid", LeakType: "Billing - Uncollected Late Fees", AmountAnnual: 12000, FixEffort: leakage.EffortLow},
		{ID: "small", AmountAnnual: 9999},
	}

	got := NewBuilder(nil, fixedNow).Build(leaks, nil, nil)
	require.Len(t, got, 2)

	assert.Equal(t, "action-leak-big", got[0].ID)
	assert.Equal(t, UrgencyHigh, got[0].Urgency)
	assert.Equal(t, TypeRenegotiate, got[0].ActionType)
	assert.Equal(t, "Fix: Terms - Short Contract Exposure", got[0].Title)
	assert.Equal(t, "2024-03-15", got[0].DueDate)
	assert.Equal(t, []string{"Confirm leakage: d"}, got[0].Prerequisites)
	assert.Equal(t, []string{"Recover $60,000/year"}, got[0].SuccessMetrics)

	assert.Equal(t, UrgencyMedium, got[1].Urgency)
	assert.True(t, got[1].AutoExecutable)
}

func TestBuild_LeakagesTopTenOnly(t *testing.T) {
	leaks := make([]leakage.Leakage, 12)
	for i := range leaks {
		leaks[i] = leakage.Leakage{ID: string(rune('a' + i)), AmountAnnual: 20000}
	}
	assert.Len(t, NewBuilder(nil, fixedNow).Build(leaks, nil, nil), 10)
}

func TestBuild_Opportunities(t *testing.T) {
	opps := []opportunity.Opportunity{
		{ID: "o1", OpportunityType: opportunity.TypeTierUpgrade, PotentialAnnual: 48000, SuccessProbability: 0.65,
			Approach: "Pitch", BestTiming: "Next QBR or account review", TalkingPoints: []string{"One", "Two"}},
		{ID: "o2", PotentialAnnual: 30000, SuccessProbability: 0.35},
		{ID: "o3", PotentialAnnual: 19999, SuccessProbability: 0.9},
	}

	got := NewBuilder(nil, fixedNow).Build(nil, opps, nil)
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, "action-opp-o1", a.ID)
	assert.Equal(t, TypeUpsell, a.ActionType)
	assert.Equal(t, UrgencyOpportunity, a.Urgency)
	assert.Equal(t, "Opportunity: Tier Upgrade", a.Title)
	assert.Equal(t, "Next QBR or account review", a.DueDate)
	require.NotNil(t, a.Script)
	assert.Equal(t, "• One\n• Two", *a.Script)
	assert.Equal(t, []string{"Close $48,000/year opportunity"}, a.SuccessMetrics)
}

func TestBuild_UrgencyBeforeRevenue(t *testing.T) {
	c := contracts.Defaults()
	c.Index, c.AnnualContractValue = 1, 500
	sigs := []signals.Signal{{ID: "crit", ContractID: 1, SignalType: signals.TypeRenewalRisk, Strength: 0.9}}
	leaks := []leakage.Leakage{{ID: "rich", AmountAnnual: 1000000}}

	got := NewBuilder(contracts.Portfolio{c}, fixedNow).Build(leaks, nil, sigs)

	require.Len(t, got, 2)
	assert.Equal(t, UrgencyCritical, got[0].Urgency)
	assert.Equal(t, 500.0, got[0].RevenueImpact)
	assert.Equal(t, UrgencyHigh, got[1].Urgency)
}

func TestBuild_Dedupes(t *testing.T) {
	sig := signals.Signal{ID: "same", ContractID: 5, SignalType: signals.TypePaymentDelay, Strength: 0.7}
	got := NewBuilder(portfolio(), fixedNow).Build(nil, nil, []signals.Signal{sig, sig})
	assert.Len(t, got, 1)
}

func TestBuild_UnknownContractHasNoImpact(t *testing.T) {
	sig := signals.Signal{ID: "x", ContractID: 404, SignalType: "volume_decline", Strength: 0.7}
	got := NewBuilder(portfolio(), fixedNow).Build(nil, nil, []signals.Signal{sig})

	require.Len(t, got, 1)
	assert.Zero(t, got[0].RevenueImpact)
	assert.Equal(t, TypeCall, got[0].ActionType)
	assert.Equal(t, UrgencyMedium, got[0].Urgency)
	assert.Equal(t, "Respond to Volume Decline", got[0].Title)
}

func TestFindAndReport(t *testing.T) {
	items := []Item{
		{ID: "a", Urgency: UrgencyCritical, RevenueImpact: 100},
		{ID: "b", Urgency: UrgencyHigh, RevenueImpact: 50.5},
		{ID: "c", Urgency: UrgencyOpportunity, RevenueImpact: 10},
	}

	got, ok := Find(items, "b")
	assert.True(t, ok)
	assert.Equal(t, "b", got.ID)
	_, ok = Find(items, "zzz")
	assert.False(t, ok)

	r := BuildReport(items)
	assert.Equal(t, 3, r.TotalActions)
	assert.Len(t, r.Critical, 1)
	assert.Len(t, r.High, 1)
	assert.Empty(t, r.Medium)
	assert.Len(t, r.Opportunities, 1)
	assert.Equal(t, 160.5, r.TotalRevenueAtStake)
	assert.Equal(t, 2, CountUrgent(items))
}

func TestUrgencyRank(t *testing.T) {
	assert.Less(t, UrgencyRank(UrgencyCritical), UrgencyRank(UrgencyHigh))
	assert.Less(t, UrgencyRank(UrgencyLow), UrgencyRank(UrgencyOpportunity))
	assert.Equal(t, 5, UrgencyRank("whenever"))
}
