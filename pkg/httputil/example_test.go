package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/billflow/backend/pkg/config"
	"github.com/wonny/billflow/backend/pkg/httputil"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// Example_remoteExport fetches a contract export published by another system
func Example_remoteExport() {
	cfg := &config.Config{Env: "production", LogLevel: "info"}
	log := logger.New(cfg)

	client := httputil.NewWithTimeout(cfg, log, 10*time.Second).
		WithRetry(2, 500*time.Millisecond)

	var rows []map[string]interface{}
	if err := client.GetJSON(context.Background(), "https://billing.example.com/exports/contracts.json", &rows); err != nil {
		fmt.Printf("fetch failed: %v\n", err)
		return
	}

	fmt.Printf("loaded %d contracts\n", len(rows))
}
