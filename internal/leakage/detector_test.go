package leakage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/contracts"
)

func base(idx int) contracts.Contract {
	c := contracts.Defaults()
	c.Index = idx
	c.ClientName = "Client"
	return c
}

func only(t *testing.T, items []Leakage, subtype string, idx int) Leakage {
	t.Helper()
	want := contracts.ItemID(idx, subtype)
	for _, l := range items {
		if l.ID == want {
			return l
		}
	}
	require.Failf(t, "leakage not found", "subtype %s", subtype)
	return Leakage{}
}

func TestDetect_DefaultContractIsClean(t *testing.T) {
	c := base(1)
	assert.Empty(t, NewDetector(benchmark.Compute(contracts.Portfolio{c})).Detect(c))
}

func TestDetect_RevenueShareBelowTier(t *testing.T) {
	a := base(1)
	a.ClientTier, a.RevenueSharePct, a.ClientMonthlyRevenue = contracts.TierBusiness, 2.0, 100000
	b := base(2)
	b.ClientTier, b.RevenueSharePct = contracts.TierBusiness, 4.0
	d := NewDetector(benchmark.Compute(contracts.Portfolio{a, b}))

	l := only(t, d.Detect(a), SubtypeRevShare, 1)
	assert.Equal(t, "34a43e98f65f", l.ID)
	assert.Equal(t, "Pricing - Below Market Rate", l.LeakType)
	assert.Equal(t, 1000.0, l.AmountMonthly)
	assert.Equal(t, 12000.0, l.AmountAnnual)
	assert.Equal(t, "Revenue share of 2% is 1.0pp below Business tier average of 3.0%", l.Description)
	assert.Equal(t, "Renegotiate to 3.0% on next renewal", l.FixAction)
	assert.Equal(t, 0.85, l.Confidence)

	// 15% 이내의 차이는 누수 아님
	a.RevenueSharePct = 2.6
	assert.Empty(t, d.Detect(a))
}

func TestDetect_RevenueShareSkipsUnknownTier(t *testing.T) {
	c := base(1)
	c.RevenueSharePct = 0.5
	// 벤치마크 없는 포트폴리오
	assert.Empty(t, NewDetector(nil).Detect(c))
}

func TestDetect_TransactionFee(t *testing.T) {
	c := base(1)
	c.PerTransactionFee, c.SubscriberCount = 0.10, 10000
	d := NewDetector(benchmark.Compute(contracts.Portfolio{c}))

	l := only(t, d.Detect(c), SubtypeTxnFee, 1)
	assert.Equal(t, 1500.0, l.AmountMonthly)
	assert.Equal(t, 18000.0, l.AmountAnnual)
	assert.Equal(t, "Transaction fee of $0.10 is below market rate of $0.25", l.Description)

	// 월 $1,000 이하면 무시
	c.SubscriberCount = 5000
	assert.Empty(t, d.Detect(c))
}

func TestDetect_VolumeGrowth(t *testing.T) {
	c := base(1)
	c.SubscriberCount, c.MonthlyMinimumTransactions, c.VolumeDiscountThreshold = 200000, 100000, 250000
	c.OurMonthlyRevenue = 8000

	l := only(t, NewDetector(nil).Detect(c), SubtypeVolume, 1)
	assert.Equal(t, 800.0, l.AmountMonthly)
	assert.Equal(t, "Client has grown 100% above contracted minimum without rate adjustment", l.Description)

	// zero minimum never divides
	c.MonthlyMinimumTransactions = 0
	assert.Empty(t, NewDetector(nil).Detect(c))
}

func TestDetect_BillingLate(t *testing.T) {
	c := base(1)
	c.PaymentTermsDays, c.OurMonthlyRevenue = 45, 10000

	l := only(t, NewDetector(nil).Detect(c), SubtypeBillingLate, 1)
	assert.Equal(t, 30.0, l.AmountMonthly)
	assert.Equal(t, 360.0, l.AmountAnnual)
	assert.Equal(t, EffortLow, l.FixEffort)
	assert.Equal(t, "Extended payment terms (Net 45) correlate with 15% late payment rate", l.Description)

	c.PaymentTermsDays = 44
	assert.Empty(t, NewDetector(nil).Detect(c))
}

func TestDetect_SLAOverDelivery(t *testing.T) {
	c := base(1)
	c.ClientTier, c.BillingAccuracySLA, c.OurMonthlyRevenue = contracts.TierStarter, 99.9, 10000

	l := only(t, NewDetector(nil).Detect(c), SubtypeSLA, 1)
	assert.Equal(t, 1500.0, l.AmountMonthly)
	assert.Equal(t, "Starter tier client receiving Enterprise-level SLAs (99.9%+ accuracy, 4hr support)", l.Description)

	c.ClientTier = contracts.TierEnterprise
	assert.Empty(t, NewDetector(nil).Detect(c))
}

func TestDetect_Terms(t *testing.T) {
	c := base(7)
	c.SLACreditPct, c.OurMonthlyRevenue = 30, 100000
	c.ContractLengthMonths, c.EarlyTerminationMonths = 12, 3

	items := NewDetector(nil).Detect(c)
	credit := only(t, items, SubtypeSLACredit, 7)
	assert.Equal(t, 7200.0, credit.AmountAnnual)
	assert.Equal(t, 600.0, credit.AmountMonthly)
	assert.Equal(t, "SLA credit of 30% creates $7,200/year expected liability", credit.Description)

	short := only(t, items, SubtypeShortTerm, 7)
	assert.Equal(t, "13ed33788364", short.ID)
	assert.Equal(t, 300000.0, short.AmountAnnual)
	assert.Equal(t, 25000.0, short.AmountMonthly)
	assert.Equal(t, "Short 12-month term with 3-month notice creates high churn exposure", short.Description)
}

func TestDetectAll_SortedAndStable(t *testing.T) {
	small := base(1)
	small.ContractLengthMonths, small.EarlyTerminationMonths, small.OurMonthlyRevenue = 12, 3, 100
	big := base(2)
	big.ContractLengthMonths, big.EarlyTerminationMonths, big.OurMonthlyRevenue = 12, 3, 10000
	p := contracts.Portfolio{small, big}
	d := NewDetector(benchmark.Compute(p))

	first := d.DetectAll(p)
	second := d.DetectAll(p)

	require.Len(t, first, 2)
	assert.Equal(t, 2, first[0].ContractID)
	assert.Equal(t, first, second, "ids and order are reproducible")
}

func TestDetectAll_Empty(t *testing.T) {
	got := NewDetector(nil).DetectAll(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildReport(t *testing.T) {
	items := []Leakage{
		{ID: "a", LeakType: "Terms - Short Contract Exposure", AmountMonthly: 100, AmountAnnual: 1200, FixEffort: EffortMedium},
		{ID: "b", LeakType: "Billing - Uncollected Late Fees", AmountMonthly: 10.5, AmountAnnual: 126, FixEffort: EffortLow},
		{ID: "c", LeakType: "Terms - Excessive SLA Credits", AmountMonthly: 5, AmountAnnual: 60, FixEffort: EffortMedium},
	}

	r := BuildReport(items)

	assert.Equal(t, 1386.0, r.TotalAnnualLeakage)
	assert.Equal(t, 115.5, r.TotalMonthlyLeakage)
	assert.Equal(t, 3, r.LeakageCount)
	require.Contains(t, r.ByType, "Terms")
	assert.Equal(t, 2, r.ByType["Terms"].Count)
	assert.Equal(t, 1260.0, r.ByType["Terms"].AnnualTotal)
	assert.Equal(t, 1, r.ByType["Billing"].Count)
	require.Len(t, r.QuickWins, 1)
	assert.Equal(t, "b", r.QuickWins[0].ID)
	assert.Len(t, r.TopLeakages, 3)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "Pricing", Category("Pricing - Below Market Rate"))
	assert.Equal(t, "Other", Category("Other"))
}
