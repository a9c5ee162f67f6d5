package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Kyky30/Projet-SIR/internal/model"
	"github.com/Kyky30/Projet-SIR/internal/store"
)

// presetResponse is the JSON form of one preset.
type presetResponse struct {
	Name    string             `json:"name"`
	Params  map[string]float64 `json:"params"`
	Summary string             `json:"summary"`
}

type listPresetsResponse struct {
	Presets []string `json:"presets"`
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListPresets(r.Context())
	if err != nil {
		s.logger.Error("list presets", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list presets")
		return
	}
	s.writeJSON(w, http.StatusOK, listPresetsResponse{Presets: names})
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	p, err := s.store.GetPreset(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "preset not found")
		return
	}
	if err != nil {
		s.logger.Error("get preset", "preset", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get preset")
		return
	}

	s.writeJSON(w, http.StatusOK, presetResponse{Name: name, Params: p.ToMap(), Summary: p.Summary()})
}

// handlePutPreset creates or overwrites a preset from a flat key→number body.
func (s *Server) handlePutPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := store.ValidatePresetName(name); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body map[string]float64
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := model.ParamsFromMap(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := p.Validate(s.maxPopulation); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.SavePreset(r.Context(), name, p); err != nil {
		s.logger.Error("save preset", "preset", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save preset")
		return
	}

	s.writeJSON(w, http.StatusOK, presetResponse{Name: name, Params: p.ToMap(), Summary: p.Summary()})
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.store.DeletePreset(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "preset not found")
			return
		}
		s.logger.Error("delete preset", "preset", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete preset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
