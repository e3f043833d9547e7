package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhaveri/fie/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.NewNop())
	job := &stubJob{name: "daily", schedule: "0 30 18 * * 1-5"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())

	assert.Error(t, s.AddJob(&stubJob{name: "broken", schedule: "not a cron expr"}))
}

func TestRunJobImmediately(t *testing.T) {
	s := New(logger.NewNop())
	job := &stubJob{name: "daily", schedule: "0 30 18 * * 1-5"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("daily"))

	assert.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	assert.Error(t, s.RunJob("unknown"))
}

func TestRunJobRecordsFailureHistory(t *testing.T) {
	s := New(logger.NewNop())
	s.maxRetries = 1
	s.retryDelay = time.Millisecond
	job := &stubJob{name: "daily", schedule: "0 30 18 * * 1-5", err: errors.New("book load failed")}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, int32(2), job.runs.Load(), "one retry after the failure")

	stats := s.JobStats()["daily"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.Contains(t, stats.LastError, "book load failed")
}

func TestJobHistorySuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})
	h.AddResult(JobResult{Success: true})

	assert.InDelta(t, 2.0/3.0, h.SuccessRate(), 1e-9)

	last, ok := h.Last()
	require.True(t, ok)
	assert.True(t, last.Success)
}
