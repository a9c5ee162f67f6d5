package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// Supported output formats.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// SnapshotWriter appends snapshots to an underlying stream. Every Write is
// flushed before it returns so partial runs stay readable.
type SnapshotWriter interface {
	Write(snaps []model.Snapshot) error
}

// NewWriter returns a writer for the named format.
func NewWriter(format string, w io.Writer) (SnapshotWriter, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return NewCSVWriter(w)
	case FormatJSONL, "json":
		return NewJSONLWriter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatCSV, FormatJSONL)
}
