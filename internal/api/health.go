package api

import "net/http"

// healthResponse reports liveness along with what the server can run and
// how busy it is.
type healthResponse struct {
	Status     string   `json:"status"`
	ActiveRuns int      `json:"active_runs"`
	Engines    []string `json:"engines"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	infos := s.registry.List()
	engines := make([]string, 0, len(infos))
	for _, info := range infos {
		engines = append(engines, info.Name)
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		ActiveRuns: s.runner.Active(),
		Engines:    engines,
	})
}
