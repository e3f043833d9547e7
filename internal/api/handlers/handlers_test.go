package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/internal/pipeline"
	"github.com/jhaveri/fie/pkg/logger"
)

type fakeSignalRepo struct {
	analyses map[string]*contracts.InstrumentAnalysis
}

func (r *fakeSignalRepo) SaveAnalysis(_ context.Context, a *contracts.InstrumentAnalysis) error {
	r.analyses[a.Symbol] = a
	return nil
}

func (r *fakeSignalRepo) GetLatestAnalysis(_ context.Context, symbol string) (*contracts.InstrumentAnalysis, error) {
	a, ok := r.analyses[symbol]
	if !ok {
		return nil, errors.New("no rows")
	}
	return a, nil
}

type fakeSectorRepo struct {
	strengths []contracts.SectorStrength
	err       error
}

func (r *fakeSectorRepo) SaveStrengths(_ context.Context, _ time.Time, _ []contracts.SectorStrength) error {
	return nil
}

func (r *fakeSectorRepo) GetStrengths(_ context.Context, _ time.Time) ([]contracts.SectorStrength, error) {
	return r.strengths, r.err
}

type fakeRecRepo struct {
	recs []contracts.Recommendation
}

func (r *fakeRecRepo) SaveRecommendations(_ context.Context, _ string, _ string, _ []contracts.Recommendation) error {
	return nil
}

func (r *fakeRecRepo) GetByClient(_ context.Context, _ string) ([]contracts.Recommendation, error) {
	return r.recs, nil
}

type fakeRunner struct {
	mu      sync.Mutex
	configs []pipeline.RunConfig
	err     error
	done    chan struct{}
}

func (f *fakeRunner) Run(_ context.Context, config pipeline.RunConfig) (*pipeline.RunResult, error) {
	f.mu.Lock()
	f.configs = append(f.configs, config)
	f.mu.Unlock()
	defer close(f.done)
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.RunResult{
		RunID:           config.RunID,
		Success:         true,
		CompletedStages: []string{"book", "signals"},
	}, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []RunEvent
}

func (b *recordingBroadcaster) Broadcast(event RunEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) statuses() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Status)
	}
	return out
}

func TestGetSignalFound(t *testing.T) {
	repo := &fakeSignalRepo{analyses: map[string]*contracts.InstrumentAnalysis{
		"NSE:INFY": {
			Symbol: "NSE:INFY",
			Close:  1520.5,
			Score:  contracts.CompositeScore{Composite: 64.2, Signal: contracts.SignalStrongBuy},
		},
	}}
	h := NewSignalsHandler(repo, &fakeSectorRepo{}, logger.NewNop())

	req := httptest.NewRequest("GET", "/api/signals/NSE:INFY", nil)
	req = mux.SetURLVars(req, map[string]string{"symbol": "NSE:INFY"})
	rec := httptest.NewRecorder()

	h.GetSignal(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.InstrumentAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "NSE:INFY", got.Symbol)
	assert.Equal(t, contracts.SignalStrongBuy, got.Score.Signal)
}

func TestGetSignalNotFound(t *testing.T) {
	repo := &fakeSignalRepo{analyses: map[string]*contracts.InstrumentAnalysis{}}
	h := NewSignalsHandler(repo, &fakeSectorRepo{}, logger.NewNop())

	req := httptest.NewRequest("GET", "/api/signals/NSE:TCS", nil)
	req = mux.SetURLVars(req, map[string]string{"symbol": "NSE:TCS"})
	rec := httptest.NewRecorder()

	h.GetSignal(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSectorsRejectsBadDate(t *testing.T) {
	h := NewSignalsHandler(&fakeSignalRepo{}, &fakeSectorRepo{}, logger.NewNop())

	req := httptest.NewRequest("GET", "/api/sectors?date=next-tuesday", nil)
	rec := httptest.NewRecorder()

	h.GetSectors(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSectorsReturnsRanking(t *testing.T) {
	h := NewSignalsHandler(&fakeSignalRepo{}, &fakeSectorRepo{strengths: []contracts.SectorStrength{
		{Sector: "IT", Rank: 1},
		{Sector: "BANK", Rank: 2},
	}}, logger.NewNop())

	req := httptest.NewRequest("GET", "/api/sectors?date=2026-08-28", nil)
	rec := httptest.NewRecorder()

	h.GetSectors(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []contracts.SectorStrength
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "IT", got[0].Sector)
}

func TestGetRecommendations(t *testing.T) {
	h := NewAdviceHandler(&fakeRecRepo{recs: []contracts.Recommendation{
		{RecID: "REC-001", Action: contracts.RecActionRedeem, Confidence: 85},
	}}, logger.NewNop())

	req := httptest.NewRequest("GET", "/api/clients/CL-001/recommendations", nil)
	req = mux.SetURLVars(req, map[string]string{"clientID": "CL-001"})
	rec := httptest.NewRecorder()

	h.GetRecommendations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ClientID        string                     `json:"client_id"`
		Count           int                        `json:"count"`
		Recommendations []contracts.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CL-001", body.ClientID)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Recommendations, 1)
	assert.Equal(t, "REC-001", body.Recommendations[0].RecID)
}

func TestTriggerRunAccepted(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	broadcaster := &recordingBroadcaster{}
	h := NewPipelineHandler(runner, broadcaster, time.Minute, logger.NewNop())

	payload, _ := json.Marshal(triggerRequest{Date: "2026-08-28", DryRun: true})
	req := httptest.NewRequest("POST", "/api/pipeline/run", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.TriggerRun(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["run_id"], "RUN-")
	assert.Equal(t, "STARTED", body["status"])

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline run never executed")
	}

	runner.mu.Lock()
	require.Len(t, runner.configs, 1)
	config := runner.configs[0]
	runner.mu.Unlock()

	assert.True(t, config.DryRun)
	assert.Equal(t, "2026-08-28", config.Date.Format("2006-01-02"))

	assert.Eventually(t, func() bool {
		statuses := broadcaster.statuses()
		return len(statuses) == 2 && statuses[0] == "STARTED" && statuses[1] == "COMPLETED"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTriggerRunBroadcastsFailure(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{}), err: errors.New("book unavailable")}
	broadcaster := &recordingBroadcaster{}
	h := NewPipelineHandler(runner, broadcaster, time.Minute, logger.NewNop())

	req := httptest.NewRequest("POST", "/api/pipeline/run", nil)
	rec := httptest.NewRecorder()

	h.TriggerRun(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	<-runner.done

	assert.Eventually(t, func() bool {
		statuses := broadcaster.statuses()
		return len(statuses) == 2 && statuses[1] == "FAILED"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTriggerRunRejectsBadDate(t *testing.T) {
	h := NewPipelineHandler(&fakeRunner{done: make(chan struct{})}, nil, time.Minute, logger.NewNop())

	payload := []byte(`{"date": "28/08/2026"}`)
	req := httptest.NewRequest("POST", "/api/pipeline/run", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.TriggerRun(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
