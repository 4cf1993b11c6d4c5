package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags (환경변수 값을 덮어씀)
	contractsSource string
	contractsPath   string
	jsonOutput      bool
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "billflow",
	Short: "Billflow - B2B 빌링 계약 포트폴리오 인텔리전스",
	Long: `Billflow Unified CLI

B2B 빌링 계약 포트폴리오의 리스크/이탈 스코어링, 매출 누수/기회 탐지,
시그널 기반 액션 큐, what-if 시나리오를 제공합니다.

Usage:
  go run ./cmd/billflow [command]

Examples:
  go run ./cmd/billflow api
  go run ./cmd/billflow risk
  go run ./cmd/billflow revenue summary
  go run ./cmd/billflow simulate revenue_forecast --params '{"months":6}'
  go run ./cmd/billflow import contract_data.json`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&contractsSource, "source", "", "contract source override (file|postgres|url)")
	rootCmd.PersistentFlags().StringVar(&contractsPath, "contracts", "", "contract file override (.json/.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
