package scenario

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/money"
)

func contract(idx int, name string, monthly float64) contracts.Contract {
	c := contracts.Defaults()
	c.Index, c.ClientName, c.OurMonthlyRevenue = idx, name, monthly
	c.AnnualContractValue = monthly * 12
	return c
}

func threeClients() contracts.Portfolio {
	return contracts.Portfolio{
		contract(1, "Alpha", 1000),
		contract(2, "Beta", 2000),
		contract(3, "Gamma", 3000),
	}
}

func TestClientLoss(t *testing.T) {
	r := NewEngine(threeClients()).ClientLoss([]string{"Alpha"})

	assert.Equal(t, 1000.0, r.LostMonthlyRevenue)
	assert.Equal(t, 12000.0, r.LostAnnualRevenue)
	assert.Equal(t, 5000.0, r.RemainingMonthly)
	assert.Equal(t, 60000.0, r.RemainingACV)
	assert.Equal(t, 16.67, r.RevenueImpactPct)
	assert.Equal(t, 2, r.RetainedClients)
	require.Len(t, r.LostClients, 1)
	assert.Equal(t, LostClient{ClientName: "Alpha", MonthlyRevenue: 1000, AnnualRevenue: 12000}, r.LostClients[0])
}

func TestClientLoss_Reconciles(t *testing.T) {
	p := contracts.Portfolio{
		contract(1, "A", 1234.56),
		contract(2, "B", 0.1),
		contract(3, "C", 0.2),
		contract(4, "D", 98765.43),
	}
	base := p.TotalMonthlyRevenue()
	for _, names := range [][]string{{"A"}, {"B", "C"}, {"A", "D"}, {}, {"missing"}} {
		r := NewEngine(p).ClientLoss(names)
		assert.Equal(t, base, money.Sum(r.RemainingMonthly, r.LostMonthlyRevenue), "names %v", names)
	}
}

func TestClientLoss_EmptyPortfolio(t *testing.T) {
	r := NewEngine(nil).ClientLoss([]string{"Alpha"})
	assert.Zero(t, r.RevenueImpactPct)
	assert.Empty(t, r.LostClients)
	assert.NotNil(t, r.LostClients)
}

func TestRateChange(t *testing.T) {
	p := threeClients()
	p[1].ClientTier = contracts.TierBusiness
	tier := contracts.TierBusiness

	r := NewEngine(p).RateChange(RateChangeParams{Tier: &tier, RateChangePct: 10})

	assert.Equal(t, 1, r.AffectedContracts)
	assert.Equal(t, 200.0, r.TotalMonthlyImpact)
	assert.Equal(t, 2400.0, r.TotalAnnualImpact)
	assert.Equal(t, 6200.0, r.NewPortfolioMonthly)
	assert.Equal(t, 74400.0, r.NewPortfolioACV)
	require.Len(t, r.Contracts, 1)
	assert.Equal(t, RateChangeRow{ClientName: "Beta", CurrentMonthly: 2000, NewMonthly: 2200, MonthlyDelta: 200, AnnualDelta: 2400}, r.Contracts[0])

	all := NewEngine(p).RateChange(RateChangeParams{RateChangePct: -5})
	assert.Equal(t, 3, all.AffectedContracts)
	assert.Equal(t, -300.0, all.TotalMonthlyImpact)
}

func TestSLAStandardization(t *testing.T) {
	p := threeClients()
	p[0].BillingAccuracySLA = 99.0
	p[2].BillingAccuracySLA = 99.9

	r := NewEngine(p).SLAStandardization(99.5)

	assert.Equal(t, 1, r.ContractsUpgraded)
	assert.Equal(t, 1, r.ContractsDowngraded)
	require.NotNil(t, r.Upgrades[0].Improvement)
	assert.Equal(t, 0.5, *r.Upgrades[0].Improvement)
	assert.Equal(t, 0.4, *r.Downgrades[0].Reduction)
	assert.Equal(t, "SLA downgrades may increase churn risk", r.Recommendation)

	safe := NewEngine(p).SLAStandardization(99.95)
	assert.Equal(t, "Safe to proceed", safe.Recommendation)
	assert.Equal(t, 3, safe.ContractsUpgraded)
}

func TestForecast_Flat(t *testing.T) {
	r := NewEngine(threeClients()).Forecast(ForecastParams{Months: 6})

	require.Len(t, r.Projections, 6)
	for _, pr := range r.Projections {
		assert.Equal(t, 6000.0, pr.Revenue)
		assert.Zero(t, pr.Churned)
		assert.Zero(t, pr.New)
	}
	assert.Equal(t, 6000.0, r.StartingRevenue)
	assert.Equal(t, 6000.0, r.EndingRevenue)
	assert.Zero(t, r.ChangePct)
}

func TestForecast_Compounds(t *testing.T) {
	p := contracts.Portfolio{contract(1, "Solo", 1000)}
	r := NewEngine(p).Forecast(ForecastParams{Months: 2, MonthlyChurnRate: 0, MonthlyGrowthRate: 10})

	// 1000 → 1100 → 1210 (복리, base 기준이면 1200)
	assert.Equal(t, 1100.0, r.Projections[0].Revenue)
	assert.Equal(t, 110.0, r.Projections[1].New)
	assert.Equal(t, 1210.0, r.EndingRevenue)
	assert.Equal(t, 210.0, r.TotalChange)
	assert.Equal(t, 21.0, r.ChangePct)
}

func TestEarlyTermination(t *testing.T) {
	p := threeClients()
	p[0].ContractNumber = "BF-001"
	p[0].EarlyTerminationFee = 50000
	p[1].ContractLengthMonths = 6

	r, err := NewEngine(p).EarlyTermination([]string{"Alpha", "Beta"}, 12)
	require.NoError(t, err)

	require.Len(t, r.Rows, 2)
	// Beta: 6개월 계약 → 6 * 2000, 수수료 없음
	assert.Equal(t, TerminationRow{
		ClientName: "Beta", ContractNumber: "N/A", MonthlyRevenue: 2000, ContractMonths: 6,
		CancelMonth: 12, AmountPaid: 12000, EarlyTerminationFee: 0, TotalCost: 12000,
	}, r.Rows[0])
	assert.Equal(t, 62000.0, r.Rows[1].TotalCost)
	assert.Equal(t, "BF-001", r.Rows[1].ContractNumber)
	require.NotNil(t, r.LowestCostClient)
	assert.Equal(t, "Beta", *r.LowestCostClient)

	_, err = NewEngine(p).EarlyTermination([]string{"Alpha", "Nobody", "Ghost"}, 3)
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Contains(t, err.Error(), "unknown clients: Nobody, Ghost")

	empty, err := NewEngine(p).EarlyTermination(nil, 3)
	require.NoError(t, err)
	assert.Nil(t, empty.LowestCostClient)
}

func TestRun_Dispatch(t *testing.T) {
	e := NewEngine(threeClients())

	tests := []struct {
		scenario string
		params   Params
		want     string
	}{
		{TypeRateChange, Params{"rate_change_pct": 5.0}, TypeRateChange},
		{TypeClientLoss, Params{"client_names": []any{"Alpha"}}, TypeClientLoss},
		{TypeSLAStandardization, nil, TypeSLAStandardization},
		{TypeRevenueForecast, Params{"months": 3.0}, TypeRevenueForecast},
		{TypeEarlyTermination, Params{"month": 3, "client_names": []string{"Gamma"}}, TypeEarlyTermination},
	}
	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			r, err := e.Run(tt.scenario, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.ScenarioType())
		})
	}
}

func TestRun_Defaults(t *testing.T) {
	r, err := NewEngine(threeClients()).Run(TypeRevenueForecast, Params{})
	require.NoError(t, err)

	f := r.(ForecastResult)
	assert.Equal(t, ForecastParams{Months: 12, MonthlyChurnRate: 1.0, MonthlyGrowthRate: 2.0}, f.Parameters)
	assert.Len(t, f.Projections, 12)

	r, err = NewEngine(threeClients()).Run(TypeSLAStandardization, Params{})
	require.NoError(t, err)
	assert.Equal(t, 99.5, r.(SLAStandardizationResult).TargetSLA)
}

func TestRun_Errors(t *testing.T) {
	e := NewEngine(threeClients())

	_, err := e.Run("churn_everything", nil)
	assert.ErrorIs(t, err, ErrUnknownScenario)

	invalid := []struct {
		scenario string
		params   Params
	}{
		{TypeRateChange, Params{"rate_change_pct": "ten"}},
		{TypeRateChange, Params{"tier": 3}},
		{TypeClientLoss, Params{"client_names": "Alpha"}},
		{TypeClientLoss, Params{"client_names": []any{"Alpha", 2}}},
		{TypeRevenueForecast, Params{"months": 1.5}},
		{TypeRevenueForecast, Params{"months": -1}},
		{TypeEarlyTermination, Params{"client_names": []string{"Alpha"}}},
		{TypeEarlyTermination, Params{"month": 3, "client_names": []string{"Nobody"}}},
	}
	for _, tt := range invalid {
		_, err := e.Run(tt.scenario, tt.params)
		assert.ErrorIs(t, err, ErrInvalidParams, "%s %v", tt.scenario, tt.params)
	}
}

func TestRun_JSONParams(t *testing.T) {
	var params Params
	require.NoError(t, json.Unmarshal([]byte(`{"tier":"","rate_change_pct":10,"billing_model":null}`), &params))

	r, err := NewEngine(threeClients()).Run(TypeRateChange, params)
	require.NoError(t, err)

	rc := r.(RateChangeResult)
	assert.Nil(t, rc.Parameters.Tier)
	assert.Equal(t, 3, rc.AffectedContracts)
	assert.Equal(t, 600.0, rc.TotalMonthlyImpact)
}
