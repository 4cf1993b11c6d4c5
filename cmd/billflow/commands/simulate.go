package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/internal/scenario"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario_type>",
	Short: "What-if 시나리오 시뮬레이션",
	Long: `이름 있는 시나리오를 파라미터 JSON과 함께 실행합니다.

Scenario types:
  rate_change          {"tier"?, "billing_model"?, "rate_change_pct"}
  client_loss          {"client_names": [...]}
  sla_standardization  {"target_sla"}
  revenue_forecast     {"months", "churn_rate_pct", "growth_rate_pct"}
  early_termination    {"month", "client_names": [...]}

Example:
  go run ./cmd/billflow simulate revenue_forecast --params '{"months":6,"churn_rate_pct":0.5}'
  go run ./cmd/billflow simulate client_loss --params '{"client_names":["Acme Payments"]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var simulateParams string

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateParams, "params", "{}", "시나리오 파라미터 (JSON object)")
}

// parseParams decodes a JSON object; numbers stay float64 like an HTTP body
func parseParams(raw string) (scenario.Params, error) {
	params := scenario.Params{}
	if len(bytes.TrimSpace([]byte(raw))) == 0 {
		return params, nil
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("invalid --params: %w", err)
	}
	return params, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	params, err := parseParams(simulateParams)
	if err != nil {
		return err
	}

	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.Simulate(args[0], params)
	if err != nil {
		return err
	}

	if !jsonOutput {
		PrintHeader("Scenario · "+result.ScenarioType(), fmt.Sprintf("%d contracts in snapshot", len(a.service.Snapshot().Portfolio)))
	}
	return printJSON(result)
}
