package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kyky30/Projet-SIR/internal/backend"
	"github.com/Kyky30/Projet-SIR/internal/engine"
	"github.com/Kyky30/Projet-SIR/internal/model"
	"github.com/Kyky30/Projet-SIR/internal/output"
	"github.com/Kyky30/Projet-SIR/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxBodySize      = 1 << 20 // 1 MB
)

// createRunRequest is the JSON body for POST /v1/runs. Params are layered
// over the named preset, or over the defaults when no preset is given.
type createRunRequest struct {
	Engine string             `json:"engine"`
	Preset string             `json:"preset"`
	Params map[string]float64 `json:"params"`
	Seed   *int64             `json:"seed"`
}

// listRunsResponse wraps the paginated list response.
type listRunsResponse struct {
	Runs   []*model.Run `json:"runs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// snapshotsResponse is the JSON response for GET /v1/runs/{id}/snapshots.
type snapshotsResponse struct {
	RunID     string           `json:"run_id"`
	Status    string           `json:"status"`
	Elapsed   int              `json:"elapsed"`
	Horizon   int              `json:"horizon"`
	Snapshots []model.Snapshot `json:"snapshots"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	outcome := outcomeRejected
	defer func() {
		runRequestsTotal.WithLabelValues(s.engineLabel(req.Engine), outcome).Inc()
	}()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params := model.DefaultParams()
	if req.Preset != "" {
		p, err := s.store.GetPreset(r.Context(), req.Preset)
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("preset %q not found", req.Preset))
			return
		}
		if err != nil {
			s.logger.Error("load preset", "preset", req.Preset, "error", err)
			outcome = outcomeError
			s.writeError(w, http.StatusInternalServerError, "failed to load preset")
			return
		}
		params = p
	}
	if len(req.Params) > 0 {
		merged := params.ToMap()
		for k, v := range req.Params {
			if _, ok := merged[k]; !ok {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown parameter %q", k))
				return
			}
			merged[k] = v
		}
		p, err := model.ParamsFromMap(merged)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		params = p
	}

	run := &model.Run{
		ID:        model.NewID(),
		Engine:    req.Engine,
		Preset:    req.Preset,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
	if req.Seed != nil {
		run.Seed = *req.Seed
	} else {
		run.Seed = time.Now().UnixNano()
	}

	if err := s.runner.Submit(r.Context(), run); err != nil {
		if errors.Is(err, model.ErrValidation) || errors.Is(err, backend.ErrUnknownEngine) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("submit run", "error", err)
		outcome = outcomeError
		s.writeError(w, http.StatusInternalServerError, "failed to submit run")
		return
	}

	outcome = outcomeAccepted
	s.writeJSON(w, http.StatusAccepted, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	runs, total, err := s.store.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list runs", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	if runs == nil {
		runs = []*model.Run{}
	}

	s.writeJSON(w, http.StatusOK, listRunsResponse{
		Runs:   runs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// handleStopRun requests a stop. The run reaches "stopped" at its next
// batch boundary, so the response carries the status at request time.
func (s *Server) handleStopRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if model.IsTerminal(run.Status) {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("run is %s", run.Status))
		return
	}

	if err := s.runner.Stop(run.ID); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			// Finished between the lookup and the stop request.
			s.writeError(w, http.StatusConflict, "run is no longer active")
			return
		}
		s.logger.Error("stop run", "run_id", run.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to stop run")
		return
	}

	s.writeJSON(w, http.StatusAccepted, run)
}

func (s *Server) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	snaps, err := s.store.GetSnapshots(r.Context(), run.ID)
	if err != nil {
		s.logger.Error("get snapshots", "run_id", run.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get snapshots")
		return
	}

	if r.URL.Query().Get("format") == output.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ID+".csv"))
		cw, err := output.NewCSVWriter(w)
		if err != nil {
			s.logger.Error("write csv header", "run_id", run.ID, "error", err)
			return
		}
		if err := cw.Write(snaps); err != nil {
			s.logger.Error("write csv", "run_id", run.ID, "error", err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, snapshotsResponse{
		RunID:     run.ID,
		Status:    run.Status,
		Elapsed:   run.Elapsed,
		Horizon:   run.Params.HorizonDays,
		Snapshots: snaps,
	})
}

// loadRun fetches the run named by the {id} URL parameter, writing the
// error response itself when it cannot.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*model.Run, bool) {
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "run not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get run", "run_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get run")
		return nil, false
	}
	return run, true
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
