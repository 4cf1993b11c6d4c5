package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/internal/api"
	"github.com/wonny/billflow/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 계약 스냅샷 로드 후 HTTP API 서버 시작
- 리스크/이탈/시나리오/비교 엔드포인트 제공
- 매출 인텔리전스(누수, 기회, 시그널, 액션 큐, 게놈) 제공
- --with-scheduler 지정 시 refresh/export 잡을 같은 프로세스에서 실행

Endpoints:
  GET  /health
  GET  /api/contracts, /api/metrics
  POST /api/scenario
  GET  /api/intelligence/risk[/{id}], /api/intelligence/churn[/{id}]
  POST /api/intelligence/simulate, /api/intelligence/compare
  GET  /api/intelligence/benchmarks
  POST /api/intelligence/refresh
  GET  /api/revenue/command-center, executive-summary, leakage,
       opportunities, signals, actions, genome[/{id}]
  POST /api/revenue/generate-outreach

Example:
  go run ./cmd/billflow api
  go run ./cmd/billflow api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "refresh/export 스케줄러 동시 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Billflow API Server ===")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Config, logger, redis, store, service
	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":      a.cfg.Port,
		"env":       a.cfg.Env,
		"source":    a.opened.Store.Name(),
		"contracts": len(a.service.Snapshot().Portfolio),
	}).Info("Initializing API server")

	// 2. Optional in-process scheduler
	if apiWithScheduler {
		sched, closePublisher, err := newScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		defer closePublisher()
		sched.Start()
		defer sched.Stop()
	}

	// 3. Handlers and router
	h := api.Handlers{
		Health:       handlers.NewHealthHandler(a.service, a.opened.DB),
		Portfolio:    handlers.NewPortfolioHandler(a.service, a.log),
		Intelligence: handlers.NewIntelligenceHandler(a.service, a.log),
		Revenue:      handlers.NewRevenueHandler(a.service, a.log),
	}
	router := api.NewRouter(h, api.RouterOptions{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		Limiter:        a.limiter,
	}, a.log)

	// 4. Server with graceful shutdown
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Printf("   Contracts : %d (%s)\n", len(a.service.Snapshot().Portfolio), a.opened.Store.Name())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
