package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/internal/events"
	"github.com/wonny/billflow/backend/internal/scheduler"
	"github.com/wonny/billflow/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (동기)

Example:
  go run ./cmd/billflow scheduler start
  go run ./cmd/billflow scheduler list
  go run ./cmd/billflow scheduler run action_export`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- portfolio_refresh: REFRESH_SCHEDULE (기본 15분마다, 계약 스냅샷 재로딩)
- action_export: EXPORT_SCHEDULE (기본 매일 오전 7시, 액션 큐 Kafka 발행)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers the refresh and export jobs; the returned func closes the publisher
func newScheduler(a *app, opts ...scheduler.Option) (*scheduler.Scheduler, func(), error) {
	pub, err := events.New(a.cfg.Kafka, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("create publisher: %w", err)
	}
	closePublisher := func() {
		if err := pub.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close publisher")
		}
	}

	sched := scheduler.New(a.log, opts...)
	for _, job := range []scheduler.Job{
		jobs.NewRefreshJob(a.service, a.cfg.Scheduler.RefreshSchedule, a.log),
		jobs.NewExportJob(a.service, pub, a.cfg.Scheduler.ExportSchedule, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			closePublisher()
			return nil, nil, err
		}
	}

	return sched, closePublisher, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Billflow Scheduler ===")

	a, err := bootstrap(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, closePublisher, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer closePublisher()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for name, stats := range sched.GetJobStats() {
		fmt.Printf("  - %s (%s)\n", name, stats.Schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, closePublisher, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer closePublisher()

	stats := sched.GetJobStats()
	fmt.Println("Registered jobs:")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %-18s %s\n", name, stats[name].Schedule)
	}

	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	// 수동 실행은 재시도 없이 한 번만
	sched, closePublisher, err := newScheduler(a, scheduler.WithRetry(0, 0))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer closePublisher()

	result, err := sched.RunNow(context.Background(), jobName)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	if result.Success {
		PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration))
		return nil
	}
	PrintError(fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
	return fmt.Errorf("job %s failed", jobName)
}
