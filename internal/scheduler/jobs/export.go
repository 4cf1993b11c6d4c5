package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/billflow/backend/internal/action"
	"github.com/wonny/billflow/backend/internal/events"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// ExportJobName is the action export job name
const ExportJobName = "action_export"

// ActionSource returns the current action queue and the snapshot it came from
type ActionSource interface {
	Actions() (string, []action.Item)
}

// ExportJob publishes the ranked action queue downstream
// ⭐ SSOT: 액션 큐 외부 발행 스케줄은 이 Job에서만
type ExportJob struct {
	source    ActionSource
	publisher events.Publisher
	schedule  string
	logger    *logger.Logger
}

// NewExportJob creates a new action export job
func NewExportJob(src ActionSource, pub events.Publisher, schedule string, log *logger.Logger) *ExportJob {
	if log == nil {
		log = logger.Nop()
	}
	return &ExportJob{
		source:    src,
		publisher: pub,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *ExportJob) Name() string {
	return ExportJobName
}

// Schedule returns the cron schedule (EXPORT_SCHEDULE)
func (j *ExportJob) Schedule() string {
	return j.schedule
}

// Run publishes every queued action of the current snapshot
func (j *ExportJob) Run(ctx context.Context) error {
	snapshotID, items := j.source.Actions()
	if len(items) == 0 {
		j.logger.WithField("snapshot_id", snapshotID).Debug("No actions to export")
		return nil
	}

	n, err := j.publisher.PublishActions(ctx, snapshotID, items)
	if err != nil {
		return fmt.Errorf("export actions: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"snapshot_id": snapshotID,
		"queued":      len(items),
		"published":   n,
	}).Info("Action export completed")

	return nil
}
