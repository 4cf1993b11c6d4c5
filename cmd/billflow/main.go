package main

import (
	"os"

	"github.com/wonny/billflow/backend/cmd/billflow/commands"
)

// main is the entry point for the billflow CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/billflow [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
