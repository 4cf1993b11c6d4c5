package intelligence

import (
	"time"

	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/churn"
	"github.com/wonny/billflow/backend/internal/comparison"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/risk"
	"github.com/wonny/billflow/backend/internal/scenario"
	"github.com/wonny/billflow/backend/pkg/money"
)

const expiringWindowDays = 90

// =============================================================================
// Risk / churn
// =============================================================================

// RiskAnalysis scores every contract
func (s *Service) RiskAnalysis() risk.Analysis {
	snap := s.Snapshot()
	return snap.risk.Analyze(snap.Portfolio)
}

// ContractRisk scores one contract against the whole portfolio
func (s *Service) ContractRisk(id int) (risk.Score, error) {
	snap := s.Snapshot()
	c, err := s.contract(snap, id)
	if err != nil {
		return risk.Score{}, err
	}
	return snap.risk.Score(c, snap.Portfolio), nil
}

// ChurnAnalysis predicts churn for every contract
func (s *Service) ChurnAnalysis() churn.Analysis {
	snap := s.Snapshot()
	return snap.churn.Analyze(snap.Portfolio, snap.risk)
}

// ContractChurn predicts churn for one contract
func (s *Service) ContractChurn(id int) (churn.Prediction, error) {
	snap := s.Snapshot()
	c, err := s.contract(snap, id)
	if err != nil {
		return churn.Prediction{}, err
	}
	return snap.churn.Predict(c, snap.risk.Score(c, snap.Portfolio)), nil
}

// =============================================================================
// Scenarios / comparison / benchmarks
// =============================================================================

// Simulate runs a named what-if scenario
func (s *Service) Simulate(scenarioType string, params scenario.Params) (scenario.Result, error) {
	return s.Snapshot().scenario.Run(scenarioType, params)
}

// Compare diffs two contracts by id
func (s *Service) Compare(idA, idB int) (comparison.Comparison, error) {
	snap := s.Snapshot()
	a, err := s.contract(snap, idA)
	if err != nil {
		return comparison.Comparison{}, err
	}
	b, err := s.contract(snap, idB)
	if err != nil {
		return comparison.Comparison{}, err
	}
	return comparison.Compare(a, b), nil
}

// Benchmarks returns the rounded benchmark view
func (s *Service) Benchmarks() benchmark.View {
	return s.Snapshot().Benchmarks.View()
}

// =============================================================================
// Contract list / metrics
// =============================================================================

// ContractSummary is the lightweight browse row
type ContractSummary struct {
	ID                  int     `json:"id"`
	Company             string  `json:"company"`
	ContractNumber      string  `json:"contract_number"`
	ClientTier          string  `json:"client_tier"`
	BillingModel        string  `json:"billing_model"`
	OurMonthlyRevenue   float64 `json:"our_monthly_revenue"`
	AnnualContractValue float64 `json:"annual_contract_value"`
	SubscriberCount     int     `json:"subscriber_count"`
	TermMonths          int     `json:"term_months"`
	EndDate             string  `json:"end_date"`
	BillingAccuracySLA  float64 `json:"billing_accuracy_sla"`
	City                string  `json:"city"`
	State               string  `json:"state"`
}

// ContractList is the browse response
type ContractList struct {
	Contracts []ContractSummary `json:"contracts"`
	Total     int               `json:"total"`
}

// Contracts lists contract metadata in portfolio order
func (s *Service) Contracts() ContractList {
	p := s.Snapshot().Portfolio
	out := ContractList{Contracts: make([]ContractSummary, 0, len(p)), Total: len(p)}
	for _, c := range p {
		out.Contracts = append(out.Contracts, ContractSummary{
			ID:                  c.Index,
			Company:             c.ClientName,
			ContractNumber:      c.ContractNumber,
			ClientTier:          c.ClientTier,
			BillingModel:        c.BillingModel,
			OurMonthlyRevenue:   c.OurMonthlyRevenue,
			AnnualContractValue: c.AnnualContractValue,
			SubscriberCount:     c.SubscriberCount,
			TermMonths:          c.ContractLengthMonths,
			EndDate:             c.EndDate,
			BillingAccuracySLA:  c.BillingAccuracySLA,
			City:                c.City,
			State:               c.State,
		})
	}
	return out
}

// Metrics is the dashboard header
type Metrics struct {
	TotalContracts        int            `json:"total_contracts"`
	TotalACV              float64        `json:"total_acv"`
	MonthlyRevenue        float64        `json:"monthly_revenue"`
	TotalSubscribers      int            `json:"total_subscribers"`
	AvgBillingAccuracySLA float64        `json:"avg_billing_accuracy_sla"`
	ContractsByTier       map[string]int `json:"contracts_by_tier"`
	ExpiringSoon          int            `json:"expiring_soon"`
}

// Metrics aggregates the portfolio. Expiring = end_date within the next 90 days of the service clock.
func (s *Service) Metrics() Metrics {
	p := s.Snapshot().Portfolio
	m := Metrics{
		TotalContracts:  len(p),
		ContractsByTier: map[string]int{},
	}
	if len(p) == 0 {
		m.AvgBillingAccuracySLA = contracts.Defaults().BillingAccuracySLA
		return m
	}

	// end_date는 날짜만 있으므로 UTC 자정 기준으로 비교
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, expiringWindowDays)

	sla := make([]float64, len(p))
	for i, c := range p {
		m.TotalSubscribers += c.SubscriberCount
		m.ContractsByTier[c.ClientTier]++
		sla[i] = c.BillingAccuracySLA

		if end, ok := c.EndTime(); ok && !end.Before(today) && !end.After(horizon) {
			m.ExpiringSoon++
		}
	}
	m.TotalACV = money.Round2(p.TotalACV())
	m.MonthlyRevenue = money.Round2(p.TotalMonthlyRevenue())
	m.AvgBillingAccuracySLA = money.Round2(money.Sum(sla...) / float64(len(p)))
	return m
}
