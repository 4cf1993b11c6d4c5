package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/internal/genome"
	"github.com/wonny/billflow/backend/pkg/money"
)

// revenueCmd represents the revenue command
var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "매출 인텔리전스",
	Long: `매출 누수, 확장 기회, 시그널, 액션 큐, 딜 게놈을 조회합니다.

Subcommands:
  summary        - 경영진 요약 (헤드라인 + 핵심 지표)
  leakage        - 매출 누수 리포트
  opportunities  - 확장 기회 리포트
  signals        - 클라이언트 시그널
  actions        - 우선순위 액션 큐
  genome [id]    - 딜 게놈 분석
  outreach <id>  - 액션별 아웃리치 스크립트 생성

Example:
  go run ./cmd/billflow revenue summary
  go run ./cmd/billflow revenue actions --top 10
  go run ./cmd/billflow revenue outreach action-leak-1a2b3c4d5e6f`,
}

var revenueTop int

var (
	revenueSummaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "경영진 요약",
		RunE:  runRevenueSummary,
	}

	revenueLeakageCmd = &cobra.Command{
		Use:   "leakage",
		Short: "매출 누수 리포트",
		RunE:  runRevenueLeakage,
	}

	revenueOpportunitiesCmd = &cobra.Command{
		Use:   "opportunities",
		Short: "확장 기회 리포트",
		RunE:  runRevenueOpportunities,
	}

	revenueSignalsCmd = &cobra.Command{
		Use:   "signals",
		Short: "클라이언트 시그널",
		RunE:  runRevenueSignals,
	}

	revenueActionsCmd = &cobra.Command{
		Use:   "actions",
		Short: "우선순위 액션 큐",
		RunE:  runRevenueActions,
	}

	revenueGenomeCmd = &cobra.Command{
		Use:   "genome [contract_id]",
		Short: "딜 게놈 분석",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRevenueGenome,
	}

	revenueOutreachCmd = &cobra.Command{
		Use:   "outreach <action_id>",
		Short: "아웃리치 스크립트 생성",
		Args:  cobra.ExactArgs(1),
		RunE:  runRevenueOutreach,
	}
)

func init() {
	rootCmd.AddCommand(revenueCmd)
	revenueCmd.AddCommand(revenueSummaryCmd)
	revenueCmd.AddCommand(revenueLeakageCmd)
	revenueCmd.AddCommand(revenueOpportunitiesCmd)
	revenueCmd.AddCommand(revenueSignalsCmd)
	revenueCmd.AddCommand(revenueActionsCmd)
	revenueCmd.AddCommand(revenueGenomeCmd)
	revenueCmd.AddCommand(revenueOutreachCmd)

	revenueCmd.PersistentFlags().IntVar(&revenueTop, "top", 15, "표시할 항목 수 (0 = 전체)")
}

func runRevenueSummary(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	sum := a.service.ExecutiveSummary()
	if jsonOutput {
		return printJSON(sum)
	}

	PrintHeader("Executive Summary", sum.Headline)
	PrintKeyValue("Portfolio value", money.Dollars(sum.PortfolioValue, 0), 18)
	PrintKeyValue("Revenue at risk", money.Dollars(sum.RevenueAtRisk, 0)+"/yr", 18)
	PrintKeyValue("Growth potential", money.Dollars(sum.GrowthPotential, 0)+"/yr", 18)
	PrintKeyValue("Portfolio health", money.Num(sum.PortfolioHealth)+" / 100", 18)
	PrintKeyValue("Urgent items", strconv.Itoa(sum.UrgentItems), 18)
	return nil
}

func runRevenueLeakage(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	r := a.service.LeakageReport()
	if jsonOutput {
		return printJSON(r)
	}

	PrintHeader("Revenue Leakage", fmt.Sprintf("%d leak(s) · %s/yr · %s/mo",
		r.LeakageCount, money.Dollars(r.TotalAnnualLeakage, 0), money.Dollars(r.TotalMonthlyLeakage, 0)))

	widths := []int{24, 36, 12, 8}
	PrintTableHeader([]string{"Client", "Leak", "Annual", "Effort"}, widths)
	for _, l := range limit(r.TopLeakages, revenueTop) {
		PrintTableRow([]string{l.ClientName, l.LeakType, money.Dollars(l.AmountAnnual, 0), l.FixEffort}, widths)
	}

	if len(r.QuickWins) > 0 {
		fmt.Println("\n   Quick wins:")
		for _, l := range r.QuickWins {
			fmt.Printf("   • %s: %s (%s/yr)\n", l.ClientName, l.FixAction, money.Dollars(l.AmountAnnual, 0))
		}
	}
	return nil
}

func runRevenueOpportunities(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	r := a.service.OpportunityReport()
	if jsonOutput {
		return printJSON(r)
	}

	PrintHeader("Expansion Opportunities", fmt.Sprintf("%d opportunit(ies) · %s/yr",
		r.OpportunityCount, money.Dollars(r.TotalAnnualOpportunity, 0)))

	widths := []int{24, 30, 12, 6, 12}
	PrintTableHeader([]string{"Client", "Type", "Annual", "Prob", "Timing"}, widths)
	for _, o := range limit(r.TopOpportunities, revenueTop) {
		PrintTableRow([]string{
			o.ClientName,
			o.OpportunityType,
			money.Dollars(o.PotentialAnnual, 0),
			percent(o.SuccessProbability),
			o.BestTiming,
		}, widths)
	}
	return nil
}

func runRevenueSignals(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	r := a.service.SignalReport()
	if jsonOutput {
		return printJSON(r)
	}

	PrintHeader("Client Signals", fmt.Sprintf("%d signal(s) · %d critical", r.TotalSignals, r.CriticalSignals))

	widths := []int{14, 24, 18, 8}
	PrintTableHeader([]string{"ID", "Client", "Type", "Strength"}, widths)
	for _, s := range limit(r.AllSignals, revenueTop) {
		PrintTableRow([]string{s.ID, s.ClientName, s.SignalType, money.Num(s.Strength)}, widths)
	}
	return nil
}

func runRevenueActions(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	r := a.service.ActionReport()
	if jsonOutput {
		return printJSON(r)
	}

	_, items := a.service.Actions()
	PrintHeader("Next Best Actions", fmt.Sprintf("%d action(s) · %s at stake",
		r.TotalActions, money.Dollars(r.TotalRevenueAtStake, 0)))

	widths := []int{26, 12, 20, 34, 12}
	PrintTableHeader([]string{"ID", "Urgency", "Client", "Title", "Due"}, widths)
	for _, it := range limit(items, revenueTop) {
		PrintTableRow([]string{it.ID, it.Urgency, it.ClientName, it.Title, it.DueDate}, widths)
	}
	return nil
}

func runRevenueGenome(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid contract id: %q", args[0])
		}
		g, err := a.service.ContractGenome(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(g)
		}
		printGenome(g)
		return nil
	}

	r := a.service.GenomeReport()
	if jsonOutput {
		return printJSON(r)
	}

	PrintHeader("Deal Genome", fmt.Sprintf("portfolio average %s", money.Num(r.PortfolioAvgScore)))

	widths := []int{6, 28, 7, 40}
	PrintTableHeader([]string{"ID", "Client", "Score", "Outcome"}, widths)
	for _, g := range limit(r.AllGenomes, revenueTop) {
		PrintTableRow([]string{strconv.Itoa(g.ContractID), g.ClientName, money.Num(g.SuccessScore), g.PredictedOutcome}, widths)
	}
	if len(r.NeedsAttention) > 0 {
		PrintWarning(fmt.Sprintf("%d contract(s) need attention (score < 50)", len(r.NeedsAttention)))
	}
	return nil
}

func printGenome(g genome.Genome) {
	PrintHeader(fmt.Sprintf("Genome · %s (#%d)", g.ClientName, g.ContractID), g.PredictedOutcome)
	PrintKeyValue("Success score", money.Num(g.SuccessScore), 14)
	if len(g.OptimizationSuggestions) > 0 {
		fmt.Println("\n   Suggestions:")
		PrintNumberedList(g.OptimizationSuggestions)
	}
}

func runRevenueOutreach(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.OpenAI.Enabled() {
		PrintInfo("OPENAI_API_KEY is not set; outreach generation is disabled")
	}

	res, err := a.service.GenerateOutreach(context.Background(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(res)
	}

	PrintHeader(res.Action.Title, fmt.Sprintf("%s · %s · due %s", res.Action.ClientName, res.Action.ActionType, res.Action.DueDate))
	fmt.Println(res.Script)
	return nil
}
