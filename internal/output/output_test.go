package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

var testSnaps = []model.Snapshot{
	{Day: 1, Healthy: 95, Exposed: 3, Infected: 2},
	{Day: 2, Healthy: 93.5, Exposed: 4.25, Infected: 2, Recovered: 0.25, Dead: 0},
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(testSnaps[:1]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(testSnaps[1:]); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	want := [][]string{
		CSVHeader,
		{"1", "95", "3", "2", "0", "0"},
		{"2", "93.5", "4.25", "2", "0.25", "0"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestCSVWriterHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewCSVWriter(&buf); err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if got := buf.String(); got != "day,healthy,exposed,infected,recovered,dead\n" {
		t.Errorf("header = %q", got)
	}
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)
	if err := w.Write(testSnaps); err != nil {
		t.Fatalf("Write: %v", err)
	}

	sc := bufio.NewScanner(&buf)
	var got []model.Snapshot
	for sc.Scan() {
		var s model.Snapshot
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		got = append(got, s)
	}
	if len(got) != 2 || got[1] != testSnaps[1] {
		t.Errorf("decoded %+v, want %+v", got, testSnaps)
	}
}

func TestNewWriter(t *testing.T) {
	for _, format := range []string{"csv", "CSV", "jsonl", "json"} {
		if _, err := NewWriter(format, &bytes.Buffer{}); err != nil {
			t.Errorf("NewWriter(%q): %v", format, err)
		}
	}
	if _, err := NewWriter("xml", &bytes.Buffer{}); err == nil {
		t.Error("NewWriter(xml) returned nil error")
	}
}
