package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // 처음 n번 실패
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	if n := j.calls.Add(1); n <= j.failures {
		return errors.New("store unavailable")
	}
	return nil
}

func newJob(name string, failures int32) *fakeJob {
	return &fakeJob{name: name, schedule: "0 */15 * * * *", failures: failures}
}

func TestAddJob(t *testing.T) {
	s := New(nil)

	require.NoError(t, s.AddJob(newJob("portfolio_refresh", 0)))
	require.NoError(t, s.AddJob(newJob("action_export", 0)))

	err := s.AddJob(newJob("portfolio_refresh", 0))
	assert.EqualError(t, err, "job portfolio_refresh already exists")

	bad := &fakeJob{name: "bad", schedule: "every tuesday"}
	err = s.AddJob(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule job bad")

	assert.Equal(t, []string{"action_export", "portfolio_refresh"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddJob(newJob("portfolio_refresh", 0)))

	require.NoError(t, s.RemoveJob("portfolio_refresh"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.cron.Entries())

	assert.EqualError(t, s.RemoveJob("portfolio_refresh"), "job portfolio_refresh not found")
}

func TestRunNow_Retries(t *testing.T) {
	tests := []struct {
		name     string
		failures int32
		success  bool
		attempts int
	}{
		{"first try", 0, true, 1},
		{"recovers on retry", 2, true, 3},
		{"gives up", 10, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, WithRetry(2, time.Millisecond))
			job := newJob("portfolio_refresh", tt.failures)
			require.NoError(t, s.AddJob(job))

			res, err := s.RunNow(context.Background(), "portfolio_refresh")
			require.NoError(t, err)

			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.attempts, res.Attempts)
			assert.Equal(t, int32(tt.attempts), job.calls.Load())
			if tt.success {
				assert.Empty(t, res.Error)
			} else {
				assert.Equal(t, "store unavailable", res.Error)
			}
		})
	}
}

func TestRunNow_UnknownJob(t *testing.T) {
	_, err := New(nil).RunNow(context.Background(), "missing")
	assert.EqualError(t, err, "job missing not found")
	assert.Error(t, New(nil).RunJob("missing"))
}

func TestRunNow_CancelStopsRetrying(t *testing.T) {
	s := New(nil, WithRetry(3, time.Hour))
	job := newJob("portfolio_refresh", 10)
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := s.RunNow(ctx, "portfolio_refresh")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Error, context.DeadlineExceeded.Error())
}

func TestHistoryAndStats(t *testing.T) {
	s := New(nil, WithRetry(0, 0))
	require.NoError(t, s.AddJob(newJob("action_export", 1)))

	ctx := context.Background()
	_, _ = s.RunNow(ctx, "action_export") // fails
	_, _ = s.RunNow(ctx, "action_export") // succeeds

	h, err := s.GetJobHistory("action_export")
	require.NoError(t, err)
	require.Len(t, h.Results, 2)
	assert.False(t, h.Results[0].Success)
	assert.True(t, h.Results[1].Success)

	stats := s.GetJobStats()["action_export"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 0.5, stats.SuccessRate)
	assert.Equal(t, "0 */15 * * * *", stats.Schedule)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{Attempts: i, Success: i%2 == 0})
	}

	require.Len(t, h.Results, historyLimit)
	assert.Equal(t, 20, h.Results[0].Attempts)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetLatestResults(500), historyLimit)
	assert.Empty(t, h.GetLatestResults(0))
	assert.Len(t, h.GetFailedResults(), historyLimit/2)
	assert.Equal(t, 0.5, h.GetSuccessRate())

	assert.Zero(t, (&JobHistory{}).GetSuccessRate())
}

func TestStartStop(t *testing.T) {
	s := New(nil, WithRetry(0, 0))
	job := &fakeJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	require.NoError(t, s.RunJob("tick"))
	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
}
