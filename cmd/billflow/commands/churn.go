package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/internal/churn"
	"github.com/wonny/billflow/backend/pkg/money"
)

// churnCmd represents the churn command
var churnCmd = &cobra.Command{
	Use:   "churn [contract_id]",
	Short: "계약 이탈 예측",
	Long: `포트폴리오 전체 또는 단일 계약의 이탈 확률을 출력합니다.

Example:
  go run ./cmd/billflow churn
  go run ./cmd/billflow churn 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChurn,
}

var churnTop int

func init() {
	rootCmd.AddCommand(churnCmd)

	churnCmd.Flags().IntVar(&churnTop, "top", 20, "표시할 계약 수 (0 = 전체)")
}

func runChurn(cmd *cobra.Command, args []string) error {
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
		p, err := a.service.ContractChurn(id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(p)
		}
		printPrediction(p)
		return nil
	}

	analysis := a.service.ChurnAnalysis()
	if jsonOutput {
		return printJSON(analysis)
	}

	PrintHeader("Portfolio Churn Analysis", fmt.Sprintf("%d contracts", len(analysis.Contracts)))
	PrintKeyValue("Avg probability", percent(analysis.AvgChurnProbability), 18)
	PrintKeyValue("High risk", strconv.Itoa(analysis.HighRiskCount), 18)
	PrintKeyValue("At-risk revenue", money.Dollars(analysis.AtRiskAnnualRevenue, 0)+"/yr", 18)
	fmt.Println()

	widths := []int{6, 28, 8, 10, 12}
	PrintTableHeader([]string{"ID", "Client", "Prob", "Level", "Sensitivity"}, widths)
	for _, p := range limit(analysis.Contracts, churnTop) {
		PrintTableRow([]string{
			strconv.Itoa(p.ContractID),
			p.ClientName,
			percent(p.ChurnProbability),
			p.RiskLevel,
			p.PriceSensitivity,
		}, widths)
	}
	return nil
}

func printPrediction(p churn.Prediction) {
	PrintHeader(fmt.Sprintf("Churn · %s (#%d)", p.ClientName, p.ContractID), "")
	PrintKeyValue("Probability", fmt.Sprintf("%s (%s)", percent(p.ChurnProbability), p.RiskLevel), 12)
	PrintKeyValue("Renewal", p.OptimalRenewalTiming, 12)
	PrintKeyValue("Sensitivity", p.PriceSensitivity, 12)

	if len(p.RiskFactors) > 0 {
		fmt.Println("\n   Risk factors:")
		for _, f := range p.RiskFactors {
			fmt.Printf("   • %s [%s]: %s\n", f.Factor, f.Impact, f.Detail)
		}
	}
	if len(p.RecommendedActions) > 0 {
		fmt.Println("\n   Recommended:")
		PrintNumberedList(p.RecommendedActions)
	}
}

// percent: 0.4235 -> "42.4%"
func percent(p float64) string {
	return money.Num(money.Round(p*100, 1)) + "%"
}
