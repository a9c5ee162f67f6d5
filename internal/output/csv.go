package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// CSVHeader is the first record written by a CSVWriter.
var CSVHeader = []string{"day", "healthy", "exposed", "infected", "recovered", "dead"}

// CSVWriter writes one record per snapshot. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	writer *csv.Writer
}

// NewCSVWriter writes the header to w and returns the writer.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return &CSVWriter{writer: cw}, nil
}

// Write appends snaps and flushes.
func (c *CSVWriter) Write(snaps []model.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range snaps {
		record := []string{
			strconv.Itoa(s.Day),
			formatCount(s.Healthy),
			formatCount(s.Exposed),
			formatCount(s.Infected),
			formatCount(s.Recovered),
			formatCount(s.Dead),
		}
		if err := c.writer.Write(record); err != nil {
			return err
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// formatCount prints whole counts without a fraction and real-valued ones
// with the shortest exact representation.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
