package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jhaveri/fie/internal/pipeline"
	"github.com/jhaveri/fie/pkg/logger"
)

// DailyAdvisoryJob runs the full advisory pipeline after market close.
type DailyAdvisoryJob struct {
	orchestrator *pipeline.Orchestrator
	logger       *logger.Logger
}

func NewDailyAdvisoryJob(orchestrator *pipeline.Orchestrator, log *logger.Logger) *DailyAdvisoryJob {
	return &DailyAdvisoryJob{
		orchestrator: orchestrator,
		logger:       log,
	}
}

func (j *DailyAdvisoryJob) Name() string {
	return "daily_advisory"
}

// Schedule runs weekdays at 18:30 IST, after NSE settlement data is up.
func (j *DailyAdvisoryJob) Schedule() string {
	return "0 30 18 * * 1-5"
}

func (j *DailyAdvisoryJob) Run(ctx context.Context) error {
	now := time.Now()
	config := pipeline.RunConfig{
		Date:  now,
		RunID: pipeline.GenerateRunID(now),
	}

	result, err := j.orchestrator.Run(ctx, config)
	if err != nil {
		return fmt.Errorf("daily advisory run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":  result.RunID,
		"signals": len(result.Signals),
		"failed":  len(result.Failed),
		"clients": len(result.Advice),
	}).Info("Daily advisory run finished")

	return nil
}
