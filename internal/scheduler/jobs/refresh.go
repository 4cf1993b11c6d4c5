package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/billflow/backend/internal/intelligence"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// RefreshJobName is the portfolio refresh job name
const RefreshJobName = "portfolio_refresh"

// Refresher reloads the contract snapshot
type Refresher interface {
	Refresh(ctx context.Context) (intelligence.RefreshResult, error)
}

// RefreshJob reloads contracts and swaps the snapshot
// ⭐ SSOT: 주기적 스냅샷 갱신은 이 Job에서만
type RefreshJob struct {
	service  Refresher
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new portfolio refresh job
func NewRefreshJob(svc Refresher, schedule string, log *logger.Logger) *RefreshJob {
	if log == nil {
		log = logger.Nop()
	}
	return &RefreshJob{
		service:  svc,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return RefreshJobName
}

// Schedule returns the cron schedule (REFRESH_SCHEDULE)
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the refresh
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled portfolio refresh")

	res, err := j.service.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("portfolio refresh: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"snapshot_id": res.SnapshotID,
		"contracts":   res.ContractsLoaded,
	}).Info("Scheduled portfolio refresh completed")

	return nil
}
