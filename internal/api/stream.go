package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// handleStreamRun streams batch progress of a run as server-sent events.
// Each "progress" event carries a model.Progress; a final "done" event
// reports the run's status once the stream ends.
func (s *Server) handleStreamRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, canFlush := w.(http.Flusher)

	if model.IsTerminal(run.Status) {
		w.WriteHeader(http.StatusOK)
		_ = writeSSEEvent(w, "done", run.Status)
		if canFlush {
			flusher.Flush()
		}
		return
	}

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Error("set write deadline for SSE", "error", err)
	}

	// A run that finished since the status check has a closed topic, so the
	// loop below exits at once.
	ch, unsub := s.runner.Broker().Subscribe(run.ID)
	defer unsub()
	streamClients.Inc()
	defer streamClients.Dec()

	w.WriteHeader(http.StatusOK)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case p, ok := <-ch:
			if !ok {
				_ = writeSSEEvent(w, "done", s.finalStatus(r, run.ID))
				if canFlush {
					flusher.Flush()
				}
				return
			}
			data, err := json.Marshal(p)
			if err != nil {
				s.logger.Error("encode progress", "run_id", run.ID, "error", err)
				return
			}
			if err := writeSSEEvent(w, "progress", string(data)); err != nil {
				return // client gone
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// finalStatus reads the status a run settled in. The runner records it
// before closing the progress stream.
func (s *Server) finalStatus(r *http.Request, id string) string {
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get final run status", "run_id", id, "error", err)
		return "unknown"
	}
	return run.Status
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
