package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/internal/risk"
	"github.com/wonny/billflow/backend/pkg/money"
)

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk [contract_id]",
	Short: "계약 리스크 스코어",
	Long: `포트폴리오 전체 또는 단일 계약의 리스크 점수를 출력합니다.

Example:
  go run ./cmd/billflow risk
  go run ./cmd/billflow risk 42
  go run ./cmd/billflow risk --top 5 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRisk,
}

var riskTop int

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().IntVar(&riskTop, "top", 20, "표시할 계약 수 (0 = 전체)")
}

func runRisk(cmd *cobra.Command, args []string) error {
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
		score, err := a.service.ContractRisk(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(score)
		}
		printRiskScore(score)
		return nil
	}

	analysis := a.service.RiskAnalysis()
	if jsonOutput {
		return printJSON(analysis)
	}

	PrintHeader("Portfolio Risk Analysis", fmt.Sprintf("%d contracts", len(analysis.Contracts)))
	PrintKeyValue("Average score", money.Num(analysis.PortfolioAvgScore), 16)
	d := analysis.RiskDistribution
	PrintKeyValue("Distribution", fmt.Sprintf("critical %d · high %d · medium %d · low %d", d.Critical, d.High, d.Medium, d.Low), 16)
	PrintKeyValue("Flags", fmt.Sprintf("%d (%d critical)", analysis.TotalFlags, analysis.CriticalFlags), 16)
	fmt.Println()

	widths := []int{6, 28, 6, 9, 6}
	PrintTableHeader([]string{"ID", "Client", "Score", "Level", "Flags"}, widths)
	for _, s := range limit(analysis.Contracts, riskTop) {
		PrintTableRow([]string{
			strconv.Itoa(s.ContractID),
			s.ClientName,
			strconv.Itoa(s.OverallScore),
			s.RiskLevel,
			strconv.Itoa(len(s.Flags)),
		}, widths)
	}
	return nil
}

func printRiskScore(s risk.Score) {
	PrintHeader(fmt.Sprintf("Risk · %s (#%d)", s.ClientName, s.ContractID), s.Summary)
	PrintKeyValue("Score", fmt.Sprintf("%d / 100 (%s)", s.OverallScore, s.RiskLevel), 8)

	if len(s.Flags) > 0 {
		fmt.Println("\n   Flags:")
		for _, f := range s.Flags {
			fmt.Printf("   [%s] %s (+%d)\n", f.Severity, f.Title, f.ImpactScore)
			fmt.Printf("       %s\n", f.Recommendation)
		}
	}
	if len(s.Strengths) > 0 {
		fmt.Println("\n   Strengths:")
		PrintList(s.Strengths)
	}
}

// limit returns the first n items (n <= 0: all)
func limit[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
