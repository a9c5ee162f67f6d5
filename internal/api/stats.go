package api

import (
	"net/http"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Total          int            `json:"total"`
	Active         int            `json:"active"`
	ByStatus       map[string]int `json:"by_status"`
	ByEngine       map[string]int `json:"by_engine"`
	AvgElapsedDays float64        `json:"avg_elapsed_days"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetRunStats(r.Context())
	if err != nil {
		s.logger.Error("get run stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Total:          stats.Total,
		Active:         s.runner.Active(),
		ByStatus:       stats.CountByStatus,
		ByEngine:       stats.CountByEngine,
		AvgElapsedDays: stats.AvgElapsedDays,
	})
}
