// Package scenario runs stateless what-if simulations over one portfolio
// snapshot: rate change, client loss, SLA standardization, revenue forecast
// and early termination.
package scenario

import (
	"sort"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/pkg/money"
)

// Scenario types
const (
	TypeRateChange         = "rate_change"
	TypeClientLoss         = "client_loss"
	TypeSLAStandardization = "sla_standardization"
	TypeRevenueForecast    = "revenue_forecast"
	TypeEarlyTermination   = "early_termination"
)

// Types lists the supported scenario types
var Types = []string{
	TypeRateChange,
	TypeClientLoss,
	TypeSLAStandardization,
	TypeRevenueForecast,
	TypeEarlyTermination,
}

const (
	slaDowngradeWarning = "SLA downgrades may increase churn risk"
	slaSafe             = "Safe to proceed"
	missingNumber       = "N/A"
)

// Result is any scenario output
type Result interface {
	ScenarioType() string
}

// Engine 시나리오 시뮬레이터
// rate change/client loss는 정적 base 기준, forecast는 월별 복리
type Engine struct {
	portfolio   contracts.Portfolio
	baseMonthly float64
	baseACV     float64
}

// NewEngine captures the base totals of the snapshot
func NewEngine(p contracts.Portfolio) *Engine {
	return &Engine{
		portfolio:   p,
		baseMonthly: p.TotalMonthlyRevenue(),
		baseACV:     p.TotalACV(),
	}
}

// =============================================================================
// Rate change
// =============================================================================

// RateChangeParams filters are optional; nil matches every contract
type RateChangeParams struct {
	Tier          *string `json:"tier_filter"`
	BillingModel  *string `json:"billing_model_filter"`
	RateChangePct float64 `json:"rate_change_pct"`
}

// RateChangeRow is one affected contract
type RateChangeRow struct {
	ClientName     string  `json:"client_name"`
	CurrentMonthly float64 `json:"current_monthly"`
	NewMonthly     float64 `json:"new_monthly"`
	MonthlyDelta   float64 `json:"monthly_delta"`
	AnnualDelta    float64 `json:"annual_delta"`
}

// RateChangeResult is the rate_change output
type RateChangeResult struct {
	Scenario            string           `json:"scenario"`
	Parameters          RateChangeParams `json:"parameters"`
	AffectedContracts   int              `json:"affected_contracts"`
	TotalMonthlyImpact  float64          `json:"total_monthly_impact"`
	TotalAnnualImpact   float64          `json:"total_annual_impact"`
	NewPortfolioMonthly float64          `json:"new_portfolio_monthly"`
	NewPortfolioACV     float64          `json:"new_portfolio_acv"`
	Contracts           []RateChangeRow  `json:"contracts"`
}

// ScenarioType implements Result
func (RateChangeResult) ScenarioType() string { return TypeRateChange }

// RateChange applies a percentage delta to our_monthly_revenue of matching contracts
func (e *Engine) RateChange(params RateChangeParams) RateChangeResult {
	rows := []RateChangeRow{}
	var deltas []float64

	for _, c := range e.portfolio {
		if params.Tier != nil && c.ClientTier != *params.Tier {
			continue
		}
		if params.BillingModel != nil && c.BillingModel != *params.BillingModel {
			continue
		}

		current := c.OurMonthlyRevenue
		delta := current * (params.RateChangePct / 100)
		rows = append(rows, RateChangeRow{
			ClientName:     c.ClientName,
			CurrentMonthly: money.Round2(current),
			NewMonthly:     money.Round2(current + delta),
			MonthlyDelta:   money.Round2(delta),
			AnnualDelta:    money.Round2(delta * 12),
		})
		deltas = append(deltas, delta)
	}

	total := money.Sum(deltas...)
	return RateChangeResult{
		Scenario:            TypeRateChange,
		Parameters:          params,
		AffectedContracts:   len(rows),
		TotalMonthlyImpact:  money.Round2(total),
		TotalAnnualImpact:   money.Round2(total * 12),
		NewPortfolioMonthly: money.Round2(e.baseMonthly + total),
		NewPortfolioACV:     money.Round2(e.baseACV + total*12),
		Contracts:           rows,
	}
}

// =============================================================================
// Client loss
// =============================================================================

// LostClient is one contract removed by the scenario
type LostClient struct {
	ClientName     string  `json:"client_name"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	AnnualRevenue  float64 `json:"annual_revenue"`
	Subscribers    int     `json:"subscribers"`
}

// ClientLossResult is the client_loss output.
// remaining_monthly + lost_monthly_revenue == base monthly revenue.
type ClientLossResult struct {
	Scenario           string       `json:"scenario"`
	LostClients        []LostClient `json:"lost_clients"`
	LostMonthlyRevenue float64      `json:"lost_monthly_revenue"`
	LostAnnualRevenue  float64      `json:"lost_annual_revenue"`
	RemainingMonthly   float64      `json:"remaining_monthly"`
	RemainingACV       float64      `json:"remaining_acv"`
	RevenueImpactPct   float64      `json:"revenue_impact_pct"`
	RetainedClients    int          `json:"retained_clients"`
}

// ScenarioType implements Result
func (ClientLossResult) ScenarioType() string { return TypeClientLoss }

// ClientLoss partitions contracts by exact client name
func (e *Engine) ClientLoss(clientNames []string) ClientLossResult {
	names := make(map[string]struct{}, len(clientNames))
	for _, n := range clientNames {
		names[n] = struct{}{}
	}

	lost := []LostClient{}
	var lostMonthly []float64
	retained := 0
	for _, c := range e.portfolio {
		if _, ok := names[c.ClientName]; !ok {
			retained++
			continue
		}
		lost = append(lost, LostClient{
			ClientName:     c.ClientName,
			MonthlyRevenue: c.OurMonthlyRevenue,
			AnnualRevenue:  c.AnnualContractValue,
			Subscribers:    c.SubscriberCount,
		})
		lostMonthly = append(lostMonthly, c.OurMonthlyRevenue)
	}

	lostRevenue := money.Sum(lostMonthly...)
	impact := 0.0
	if e.baseMonthly > 0 {
		impact = money.Round2(lostRevenue / e.baseMonthly * 100)
	}

	return ClientLossResult{
		Scenario:           TypeClientLoss,
		LostClients:        lost,
		LostMonthlyRevenue: money.Round2(lostRevenue),
		LostAnnualRevenue:  money.Round2(lostRevenue * 12),
		RemainingMonthly:   money.Round2(money.Sum(e.baseMonthly, -lostRevenue)),
		RemainingACV:       money.Round2(money.Sum(e.baseACV, -lostRevenue*12)),
		RevenueImpactPct:   impact,
		RetainedClients:    retained,
	}
}

// =============================================================================
// SLA standardization
// =============================================================================

// SLAChange is one hypothetical SLA move; Improvement or Reduction is set
type SLAChange struct {
	ClientName  string   `json:"client_name"`
	CurrentSLA  float64  `json:"current_sla"`
	NewSLA      float64  `json:"new_sla"`
	Improvement *float64 `json:"improvement,omitempty"`
	Reduction   *float64 `json:"reduction,omitempty"`
}

// SLAStandardizationResult is the sla_standardization output
type SLAStandardizationResult struct {
	Scenario            string      `json:"scenario"`
	TargetSLA           float64     `json:"target_sla"`
	ContractsUpgraded   int         `json:"contracts_upgraded"`
	ContractsDowngraded int         `json:"contracts_downgraded"`
	Upgrades            []SLAChange `json:"upgrades"`
	Downgrades          []SLAChange `json:"downgrades"`
	Recommendation      string      `json:"recommendation"`
}

// ScenarioType implements Result
func (SLAStandardizationResult) ScenarioType() string { return TypeSLAStandardization }

// SLAStandardization reports which contracts would move to the target billing SLA.
// Nothing is mutated.
func (e *Engine) SLAStandardization(target float64) SLAStandardizationResult {
	r := SLAStandardizationResult{
		Scenario:   TypeSLAStandardization,
		TargetSLA:  target,
		Upgrades:   []SLAChange{},
		Downgrades: []SLAChange{},
	}

	for _, c := range e.portfolio {
		current := c.BillingAccuracySLA
		switch {
		case current < target:
			v := money.Round2(target - current)
			r.Upgrades = append(r.Upgrades, SLAChange{ClientName: c.ClientName, CurrentSLA: current, NewSLA: target, Improvement: &v})
		case current > target:
			v := money.Round2(current - target)
			r.Downgrades = append(r.Downgrades, SLAChange{ClientName: c.ClientName, CurrentSLA: current, NewSLA: target, Reduction: &v})
		}
	}

	r.ContractsUpgraded = len(r.Upgrades)
	r.ContractsDowngraded = len(r.Downgrades)
	r.Recommendation = slaSafe
	if len(r.Downgrades) > 0 {
		r.Recommendation = slaDowngradeWarning
	}
	return r
}

// =============================================================================
// Revenue forecast
// =============================================================================

// ForecastParams are the monthly rates in percent
type ForecastParams struct {
	Months            int     `json:"months"`
	MonthlyChurnRate  float64 `json:"monthly_churn_rate"`
	MonthlyGrowthRate float64 `json:"monthly_growth_rate"`
}

// Projection is one forecast month
type Projection struct {
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
	Churned float64 `json:"churned"`
	New     float64 `json:"new"`
}

// ForecastResult is the revenue_forecast output
type ForecastResult struct {
	Scenario        string         `json:"scenario"`
	Parameters      ForecastParams `json:"parameters"`
	StartingRevenue float64        `json:"starting_revenue"`
	EndingRevenue   float64        `json:"ending_revenue"`
	TotalChange     float64        `json:"total_change"`
	ChangePct       float64        `json:"change_pct"`
	Projections     []Projection   `json:"projections"`
}

// ScenarioType implements Result
func (ForecastResult) ScenarioType() string { return TypeRevenueForecast }

// Forecast compounds churn and growth against the current month's revenue
func (e *Engine) Forecast(params ForecastParams) ForecastResult {
	churnRate := params.MonthlyChurnRate / 100
	growthRate := params.MonthlyGrowthRate / 100

	projections := make([]Projection, 0, params.Months)
	current := e.baseMonthly
	for month := 1; month <= params.Months; month++ {
		churned := current * churnRate
		added := current * growthRate
		current = current - churned + added

		projections = append(projections, Projection{
			Month:   month,
			Revenue: money.Round2(current),
			Churned: money.Round2(churned),
			New:     money.Round2(added),
		})
	}

	change := 0.0
	if e.baseMonthly > 0 {
		change = money.Round2((current - e.baseMonthly) / e.baseMonthly * 100)
	}

	return ForecastResult{
		Scenario:        TypeRevenueForecast,
		Parameters:      params,
		StartingRevenue: money.Round2(e.baseMonthly),
		EndingRevenue:   money.Round2(current),
		TotalChange:     money.Round2(current - e.baseMonthly),
		ChangePct:       change,
		Projections:     projections,
	}
}

// =============================================================================
// Early termination
// =============================================================================

// TerminationRow is the cost of cancelling one client at the given month
type TerminationRow struct {
	ClientName          string  `json:"client_name"`
	ContractNumber      string  `json:"contract_number"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
	ContractMonths      int     `json:"contract_months"`
	CancelMonth         int     `json:"cancel_month"`
	AmountPaid          float64 `json:"amount_paid"`
	EarlyTerminationFee float64 `json:"early_termination_fee"`
	TotalCost           float64 `json:"total_cost"`
}

// EarlyTerminationResult is the early_termination output
type EarlyTerminationResult struct {
	Scenario         string           `json:"scenario"`
	Rows             []TerminationRow `json:"rows"`
	LowestCostClient *string          `json:"lowest_cost_client"`
}

// ScenarioType implements Result
func (EarlyTerminationResult) ScenarioType() string { return TypeEarlyTermination }

// EarlyTermination prices cancelling each named client at month.
// Unknown names fail with ErrInvalidParams.
func (e *Engine) EarlyTermination(clientNames []string, month int) (EarlyTerminationResult, error) {
	byName := make(map[string]contracts.Contract, len(e.portfolio))
	for _, c := range e.portfolio {
		byName[c.ClientName] = c
	}

	var missing []string
	for _, n := range clientNames {
		if _, ok := byName[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return EarlyTerminationResult{}, invalidf("unknown clients: %s", joinNames(missing))
	}

	rows := make([]TerminationRow, 0, len(clientNames))
	for _, n := range clientNames {
		c := byName[n]
		paidMonths := min(month, c.ContractLengthMonths)
		fee := 0.0
		if month < c.ContractLengthMonths {
			fee = c.EarlyTerminationFee
		}
		paid := money.Round2(float64(paidMonths) * c.OurMonthlyRevenue)

		number := c.ContractNumber
		if number == "" {
			number = missingNumber
		}
		rows = append(rows, TerminationRow{
			ClientName:          n,
			ContractNumber:      number,
			MonthlyRevenue:      c.OurMonthlyRevenue,
			ContractMonths:      c.ContractLengthMonths,
			CancelMonth:         month,
			AmountPaid:          paid,
			EarlyTerminationFee: fee,
			TotalCost:           money.Round2(money.Sum(paid, fee)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalCost < rows[j].TotalCost
	})

	r := EarlyTerminationResult{Scenario: TypeEarlyTermination, Rows: rows}
	if len(rows) > 0 {
		r.LowestCostClient = &rows[0].ClientName
	}
	return r, nil
}
