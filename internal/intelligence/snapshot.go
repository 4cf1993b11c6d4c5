package intelligence

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/billflow/backend/internal/action"
	"github.com/wonny/billflow/backend/internal/benchmark"
	"github.com/wonny/billflow/backend/internal/churn"
	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/genome"
	"github.com/wonny/billflow/backend/internal/leakage"
	"github.com/wonny/billflow/backend/internal/opportunity"
	"github.com/wonny/billflow/backend/internal/risk"
	"github.com/wonny/billflow/backend/internal/scenario"
	"github.com/wonny/billflow/backend/internal/signals"
	"github.com/wonny/billflow/backend/internal/simrand"
)

// Snapshot is one immutable load of the portfolio with its benchmarks and engines.
// ⭐ SSOT: Refresh만 새 Snapshot을 만들고, 만든 뒤에는 절대 수정하지 않음
type Snapshot struct {
	ID         string
	LoadedAt   time.Time
	Source     string
	Portfolio  contracts.Portfolio
	Benchmarks *benchmark.Benchmarks

	risk     *risk.Engine
	churn    *churn.Engine
	leakage  *leakage.Detector
	finder   *opportunity.Finder
	signals  *signals.Detector
	genome   *genome.Analyzer
	scenario *scenario.Engine
	builder  *action.Builder

	revenueOnce sync.Once
	revenue     *Revenue
}

// Revenue holds the revenue-engine outputs of one snapshot, each already sorted
type Revenue struct {
	Leakages      []leakage.Leakage
	Opportunities []opportunity.Opportunity
	Signals       []signals.Signal
	Actions       []action.Item
	Genomes       []genome.Genome
}

func newSnapshot(p contracts.Portfolio, source string, src simrand.Source, now func() time.Time) *Snapshot {
	if p == nil {
		p = contracts.Portfolio{}
	}
	bench := benchmark.Compute(p)
	return &Snapshot{
		ID:         uuid.NewString(),
		LoadedAt:   now(),
		Source:     source,
		Portfolio:  p,
		Benchmarks: bench,
		risk:       risk.NewEngine(bench),
		churn:      churn.NewEngine(bench, src),
		leakage:    leakage.NewDetector(bench),
		finder:     opportunity.NewFinder(bench, src),
		signals:    signals.NewDetector(src, now),
		genome:     genome.NewAnalyzer(bench),
		scenario:   scenario.NewEngine(p),
		builder:    action.NewBuilder(p, now),
	}
}

// Revenue computes the five revenue engines once per snapshot, so action ids,
// due dates and detected_at stay identical across calls until the next refresh.
func (s *Snapshot) Revenue() *Revenue {
	s.revenueOnce.Do(func() {
		r := &Revenue{
			Leakages:      s.leakage.DetectAll(s.Portfolio),
			Opportunities: s.finder.FindAll(s.Portfolio),
			Signals:       s.signals.DetectAll(s.Portfolio),
			Genomes:       s.genome.AnalyzeAll(s.Portfolio),
		}
		r.Actions = s.builder.Build(r.Leakages, r.Opportunities, r.Signals)
		s.revenue = r
	})
	return s.revenue
}
