package intelligence

import (
	"context"
	"fmt"

	"github.com/wonny/billflow/backend/internal/action"
	"github.com/wonny/billflow/backend/internal/genome"
	"github.com/wonny/billflow/backend/internal/leakage"
	"github.com/wonny/billflow/backend/internal/opportunity"
	"github.com/wonny/billflow/backend/internal/outreach"
	"github.com/wonny/billflow/backend/internal/signals"
	"github.com/wonny/billflow/backend/pkg/money"
	"github.com/wonny/billflow/backend/pkg/redis"
)

// Command center list sizes
const (
	centerLeakages      = 10
	centerOpportunities = 10
	centerSignals       = 10
	centerActions       = 15
	centerGenomes       = 5

	urgentStrength      = 0.7
	headlineLeakage     = 100000.0
	headlineOpportunity = 200000.0
	scriptFailurePrefix = "Script generation failed: "
)

// =============================================================================
// Reports
// =============================================================================

// LeakageReport is the detailed leakage view
func (s *Service) LeakageReport() leakage.Report {
	return leakage.BuildReport(s.Snapshot().Revenue().Leakages)
}

// OpportunityReport is the detailed opportunity view
func (s *Service) OpportunityReport() opportunity.Report {
	return opportunity.BuildReport(s.Snapshot().Revenue().Opportunities)
}

// SignalReport is the detailed signal view
func (s *Service) SignalReport() signals.Report {
	return signals.BuildReport(s.Snapshot().Revenue().Signals)
}

// ActionReport is the action queue grouped by urgency
func (s *Service) ActionReport() action.Report {
	return action.BuildReport(s.Snapshot().Revenue().Actions)
}

// Actions returns the ranked queue of the current snapshot with its id
func (s *Service) Actions() (string, []action.Item) {
	snap := s.Snapshot()
	return snap.ID, snap.Revenue().Actions
}

// GenomeReport is the portfolio genome view
func (s *Service) GenomeReport() genome.Report {
	return genome.BuildReport(s.Snapshot().Revenue().Genomes)
}

// ContractGenome returns the genome of one contract
func (s *Service) ContractGenome(id int) (genome.Genome, error) {
	g, ok := genome.Find(s.Snapshot().Revenue().Genomes, id)
	if !ok {
		return genome.Genome{}, fmt.Errorf("%w: %d", ErrContractNotFound, id)
	}
	return g, nil
}

// =============================================================================
// Command center / executive summary
// =============================================================================

// CenterSummary is the command center header
type CenterSummary struct {
	TotalLeakageAnnual     float64 `json:"total_leakage_annual"`
	TotalOpportunityAnnual float64 `json:"total_opportunity_annual"`
	NetRevenueGap          float64 `json:"net_revenue_gap"`
	CriticalActions        int     `json:"critical_actions"`
	PortfolioHealthScore   float64 `json:"portfolio_health_score"`
	ActiveSignals          int     `json:"active_signals"`
}

// CommandCenter is the main revenue dashboard
type CommandCenter struct {
	Summary       CenterSummary             `json:"summary"`
	Leakages      []leakage.Leakage         `json:"leakages"`
	Opportunities []opportunity.Opportunity `json:"opportunities"`
	Signals       []signals.Signal          `json:"signals"`
	ActionQueue   []action.Item             `json:"action_queue"`
	Genomes       []genome.Genome           `json:"genomes"`
}

// CommandCenter builds the dashboard from the snapshot's revenue results
func (s *Service) CommandCenter() CommandCenter {
	r := s.Snapshot().Revenue()

	leak := leakage.TotalAnnual(r.Leakages)
	opp := opportunity.TotalAnnual(r.Opportunities)

	return CommandCenter{
		Summary: CenterSummary{
			TotalLeakageAnnual:     leak,
			TotalOpportunityAnnual: opp,
			NetRevenueGap:          money.Round2(money.Sum(leak, opp)),
			CriticalActions:        action.CountUrgent(r.Actions),
			PortfolioHealthScore:   genome.AverageScore(r.Genomes),
			ActiveSignals:          len(r.Signals),
		},
		Leakages:      top(r.Leakages, centerLeakages),
		Opportunities: top(r.Opportunities, centerOpportunities),
		Signals:       top(r.Signals, centerSignals),
		ActionQueue:   top(r.Actions, centerActions),
		Genomes:       top(r.Genomes, centerGenomes),
	}
}

// ExecutiveSummary is the one-screen summary for leadership
type ExecutiveSummary struct {
	PortfolioValue  float64 `json:"portfolio_value"`
	RevenueAtRisk   float64 `json:"revenue_at_risk"`
	GrowthPotential float64 `json:"growth_potential"`
	PortfolioHealth float64 `json:"portfolio_health"`
	UrgentItems     int     `json:"urgent_items"`
	Headline        string  `json:"headline"`
}

// ExecutiveSummary builds the summary and its headline
func (s *Service) ExecutiveSummary() ExecutiveSummary {
	snap := s.Snapshot()
	r := snap.Revenue()

	leak := leakage.TotalAnnual(r.Leakages)
	opp := opportunity.TotalAnnual(r.Opportunities)

	return ExecutiveSummary{
		PortfolioValue:  money.Round2(snap.Portfolio.TotalACV()),
		RevenueAtRisk:   leak,
		GrowthPotential: opp,
		PortfolioHealth: genome.AverageScore(r.Genomes),
		UrgentItems:     signals.CountAtLeast(r.Signals, urgentStrength),
		Headline:        headline(leak, opp, signals.CountAtLeast(r.Signals, signals.CriticalStrength)),
	}
}

// headline: 첫 번째로 매칭되는 규칙 사용 (critical signal > leakage > opportunity > healthy)
func headline(leak, opp float64, critical int) string {
	switch {
	case critical > 0:
		return fmt.Sprintf("🚨 %d critical signal(s) require immediate attention", critical)
	case leak > headlineLeakage:
		return fmt.Sprintf("⚠️ $%.0fK annual revenue leakage detected", leak/1000)
	case opp > headlineOpportunity:
		return fmt.Sprintf("💰 $%.0fK revenue opportunity identified", opp/1000)
	default:
		return "✅ Portfolio is healthy - focus on growth"
	}
}

// =============================================================================
// Outreach
// =============================================================================

// OutreachResult pairs an action with its generated script
type OutreachResult struct {
	Action action.Item `json:"action"`
	Script string      `json:"script"`
}

// GenerateOutreach drafts outreach copy for one action of the current snapshot.
// Generator failures become a "Script generation failed: ..." script, never an error.
// Successful scripts are cached per (snapshot, action).
func (s *Service) GenerateOutreach(ctx context.Context, actionID string) (OutreachResult, error) {
	snap := s.Snapshot()
	item, ok := action.Find(snap.Revenue().Actions, actionID)
	if !ok {
		return OutreachResult{}, fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}

	c, _ := snap.Portfolio.Find(item.ContractID)
	req := outreach.Request{
		ClientName: item.ClientName,
		ClientTier: c.ClientTier,
		ACV:        c.AnnualContractValue,
		ActionType: item.ActionType,
		Objective:  item.Title,
		Context:    item.Description,
	}

	generate := func() (interface{}, error) {
		return s.outreach.Generate(ctx, req)
	}

	var script string
	var err error
	if s.cache != nil {
		err = s.cache.GetOrSet(ctx, redis.OutreachKey(snap.ID, actionID), &script, redis.TTLLong, generate)
	} else {
		var v interface{}
		if v, err = generate(); err == nil {
			script = v.(string)
		}
	}
	if err != nil {
		s.logger.WithError(err).WithField("action_id", actionID).Warn("Outreach generation failed")
		script = scriptFailurePrefix + err.Error()
	}

	return OutreachResult{Action: item, Script: script}, nil
}

func top[T any](items []T, n int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
