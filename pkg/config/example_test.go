package config_test

import (
	"fmt"

	"github.com/wonny/billflow/backend/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Contracts source: %s (%s)\n", cfg.Contracts.Source, cfg.Contracts.Path)
	fmt.Printf("Outreach enabled: %v\n", cfg.OpenAI.Enabled())
}
