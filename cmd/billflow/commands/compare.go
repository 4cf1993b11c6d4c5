package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/pkg/money"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <contract_id_a> <contract_id_b>",
	Short: "두 계약 비교",
	Long: `두 계약의 조건 차이와 매출 영향을 출력합니다. 다른 필드만 표시됩니다.

Example:
  go run ./cmd/billflow compare 3 17`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ids := make([]int, 2)
	for i, raw := range args {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid contract id: %q", raw)
		}
		ids[i] = id
	}

	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.service.Compare(ids[0], ids[1])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(c)
	}

	PrintHeader(fmt.Sprintf("%s vs %s", c.ContractA, c.ContractB), c.Summary)

	if len(c.Differences) > 0 {
		widths := []int{22, 16, 16, 12, 8}
		PrintTableHeader([]string{"Field", "A", "B", "Delta", "Better"}, widths)
		for _, d := range c.Differences {
			PrintTableRow([]string{d.Field, d.ContractA, d.ContractB, d.Delta, d.Comparison}, widths)
		}
		fmt.Println()
	}

	PrintKeyValue("Monthly delta", money.Dollars(c.FinancialImpact.MonthlyRevenueDelta, 2), 14)
	PrintKeyValue("Annual delta", money.Dollars(c.FinancialImpact.AnnualRevenueDelta, 2), 14)
	return nil
}
