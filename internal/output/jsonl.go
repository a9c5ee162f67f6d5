package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// JSONLWriter writes one JSON object per snapshot per line.
// It is safe for concurrent use.
type JSONLWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w)}
}

func (j *JSONLWriter) Write(snaps []model.Snapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, s := range snaps {
		if err := j.enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}
