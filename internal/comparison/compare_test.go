package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/contracts"
)

func contract(name string) contracts.Contract {
	c := contracts.Defaults()
	c.ClientName = name
	c.OurMonthlyRevenue = 10000
	c.AnnualContractValue = 120000
	return c
}

func diff(t *testing.T, c Comparison, label string) Difference {
	t.Helper()
	for _, d := range c.Differences {
		if d.Field == label {
			return d
		}
	}
	require.Failf(t, "difference not found", "field %s", label)
	return Difference{}
}

func TestCompare_Identical(t *testing.T) {
	a := contract("Acme")
	got := Compare(a, a)

	assert.Empty(t, got.Differences)
	assert.NotNil(t, got.Differences)
	assert.Equal(t, "The contracts with Acme and Acme have identical terms.", got.Summary)
	assert.Equal(t, FinancialImpact{}, got.FinancialImpact)
}

func TestCompare_Fields(t *testing.T) {
	a := contract("Acme")
	b := contract("Globex")
	b.BillingModel = contracts.ModelFlatFee
	b.OurMonthlyRevenue = 12500.5
	b.PaymentTermsDays = 45
	b.BillingAccuracySLA = 99.9
	b.SOC2Certified = true

	got := Compare(a, b)
	require.Len(t, got.Differences, 5)

	model := diff(t, got, "Billing Model")
	assert.Equal(t, "", model.ContractA)
	assert.Equal(t, "Flat Fee", model.ContractB)
	assert.Empty(t, model.Delta)
	assert.Equal(t, Neutral, model.Comparison)

	rev := diff(t, got, "Monthly Revenue")
	assert.Equal(t, "$10,000.00", rev.ContractA)
	assert.Equal(t, "$12,500.50", rev.ContractB)
	assert.Equal(t, "+$2,500.50", rev.Delta)
	assert.Equal(t, BBetter, rev.Comparison)

	terms := diff(t, got, "Payment Terms")
	assert.Equal(t, "30 days", terms.ContractA)
	assert.Equal(t, "+15 days", terms.Delta)
	assert.Equal(t, ABetter, terms.Comparison, "longer payment terms favor the client")

	sla := diff(t, got, "Billing Accuracy SLA")
	assert.Equal(t, "99.5%", sla.ContractA)
	assert.Equal(t, "+0.4%", sla.Delta)
	assert.Equal(t, BBetter, sla.Comparison)

	soc2 := diff(t, got, "SOC 2 Certified")
	assert.Equal(t, "No", soc2.ContractA)
	assert.Equal(t, "Yes", soc2.ContractB)
	assert.Equal(t, true, soc2.RawB)
	assert.Equal(t, Neutral, soc2.Comparison)

	assert.Equal(t, FinancialImpact{MonthlyRevenueDelta: 2500.5, AnnualRevenueDelta: 30006}, got.FinancialImpact)
	assert.Equal(t, "Comparing Acme vs Globex: Found 5 differences. "+
		"Globex has more favorable terms in 2 areas. "+
		"Globex generates $30,006 more annual revenue.", got.Summary)
}

func TestCompare_Order(t *testing.T) {
	a := contract("Acme")
	b := contract("Globex")
	b.VolumeDiscountPct = 5
	b.BillingModel = contracts.ModelHybrid

	got := Compare(a, b)
	require.Len(t, got.Differences, 2)
	assert.Equal(t, "Billing Model", got.Differences[0].Field)
	assert.Equal(t, "Volume Discount", got.Differences[1].Field)
}

func TestCompare_SummaryFavorability(t *testing.T) {
	a := contract("Acme")
	b := contract("Globex")
	b.OurMonthlyRevenue = 8000
	b.SupportResponseHours = 8
	b.SLACreditPct = 20

	got := Compare(a, b)

	assert.Equal(t, "$-2,000.00", diff(t, got, "Monthly Revenue").Delta)
	assert.Equal(t, "+4 hours", diff(t, got, "Support Response Time").Delta)
	assert.Equal(t, "Comparing Acme vs Globex: Found 3 differences. "+
		"Acme has more favorable terms in 3 areas. "+
		"Acme generates $24,000 more annual revenue.", got.Summary)
}

func TestCompare_NoRevenueDeltaTrimsSummary(t *testing.T) {
	a := contract("Acme")
	b := contract("Globex")
	b.ContractLengthMonths = 36

	got := Compare(a, b)
	assert.Equal(t, "Comparing Acme vs Globex: Found 1 differences. Globex has more favorable terms in 1 areas.", got.Summary)
}

func TestCompare_EvenFavorability(t *testing.T) {
	a := contract("Acme")
	b := contract("Globex")
	b.ContractLengthMonths, b.PaymentTermsDays = 36, 45

	got := Compare(a, b)
	assert.Equal(t, "Comparing Acme vs Globex: Found 2 differences. Both contracts have similar overall favorability.", got.Summary)
}
