package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jhaveri/fie/internal/pipeline"
	"github.com/jhaveri/fie/pkg/logger"
)

// RunEvent is a pipeline lifecycle notification pushed to websocket
// subscribers.
type RunEvent struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"` // STARTED, COMPLETED, FAILED
	Stages    []string  `json:"stages,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RunBroadcaster fans run events out to connected clients.
type RunBroadcaster interface {
	Broadcast(event RunEvent)
}

// Runner executes a full advisory pipeline run.
type Runner interface {
	Run(ctx context.Context, config pipeline.RunConfig) (*pipeline.RunResult, error)
}

type triggerRequest struct {
	Date        string   `json:"date,omitempty"`
	Instruments []string `json:"instruments,omitempty"`
	DryRun      bool     `json:"dry_run,omitempty"`
}

// PipelineHandler triggers on-demand pipeline runs over HTTP.
type PipelineHandler struct {
	runner      Runner
	broadcaster RunBroadcaster
	runTimeout  time.Duration
	logger      *logger.Logger
}

func NewPipelineHandler(runner Runner, broadcaster RunBroadcaster, runTimeout time.Duration, log *logger.Logger) *PipelineHandler {
	if runTimeout <= 0 {
		runTimeout = 30 * time.Minute
	}
	return &PipelineHandler{
		runner:      runner,
		broadcaster: broadcaster,
		runTimeout:  runTimeout,
		logger:      log,
	}
}

// TriggerRun starts a pipeline run in the background and returns 202
// with its run identifier. Progress is published on the run event
// stream.
func (h *PipelineHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	config := pipeline.RunConfig{
		Date:        date,
		RunID:       pipeline.GenerateRunID(time.Now()),
		Instruments: req.Instruments,
		DryRun:      req.DryRun,
	}

	go h.execute(config)

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"run_id": config.RunID,
		"status": "STARTED",
	})
}

func (h *PipelineHandler) execute(config pipeline.RunConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), h.runTimeout)
	defer cancel()

	h.broadcast(RunEvent{
		RunID:     config.RunID,
		Status:    "STARTED",
		Timestamp: time.Now(),
	})

	result, err := h.runner.Run(ctx, config)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", config.RunID).Error("Pipeline run failed")
		h.broadcast(RunEvent{
			RunID:     config.RunID,
			Status:    "FAILED",
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"duration": result.Duration.String(),
	}).Info("Pipeline run completed")
	h.broadcast(RunEvent{
		RunID:     result.RunID,
		Status:    "COMPLETED",
		Stages:    result.CompletedStages,
		Timestamp: time.Now(),
	})
}

func (h *PipelineHandler) broadcast(event RunEvent) {
	if h.broadcaster == nil {
		return
	}
	h.broadcaster.Broadcast(event)
}
