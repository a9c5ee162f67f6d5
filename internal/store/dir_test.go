package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

func TestDirPresetStoreRoundTrip(t *testing.T) {
	d, err := NewDirPresetStore(filepath.Join(t.TempDir(), "presets"))
	if err != nil {
		t.Fatalf("NewDirPresetStore: %v", err)
	}
	ctx := context.Background()

	p := model.DefaultParams()
	p.VaccinationProbability = 0.25
	if err := d.SavePreset(ctx, "measles", p); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	got, err := d.GetPreset(ctx, "measles")
	if err != nil {
		t.Fatalf("GetPreset: %v", err)
	}
	if got != p {
		t.Errorf("GetPreset = %+v, want %+v", got, p)
	}
}

func TestDirPresetStoreListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDirPresetStore(dir)
	if err != nil {
		t.Fatalf("NewDirPresetStore: %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"b", "a"} {
		if err := d.SavePreset(ctx, name, model.DefaultParams()); err != nil {
			t.Fatalf("SavePreset: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := d.ListPresets(ctx)
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	if strings.Join(names, ",") != "a,b" {
		t.Errorf("ListPresets = %v, want [a b]", names)
	}
}

func TestDirPresetStoreNotFound(t *testing.T) {
	d, err := NewDirPresetStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirPresetStore: %v", err)
	}
	ctx := context.Background()

	if _, err := d.GetPreset(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPreset error = %v, want ErrNotFound", err)
	}
	if _, err := d.GetPreset(ctx, "../escape"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPreset traversal error = %v, want ErrNotFound", err)
	}
	if err := d.DeletePreset(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePreset error = %v, want ErrNotFound", err)
	}
}

func TestDirPresetStoreDelete(t *testing.T) {
	d, err := NewDirPresetStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirPresetStore: %v", err)
	}
	ctx := context.Background()

	if err := d.SavePreset(ctx, "flu", model.DefaultParams()); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if err := d.DeletePreset(ctx, "flu"); err != nil {
		t.Fatalf("DeletePreset: %v", err)
	}
	names, _ := d.ListPresets(ctx)
	if len(names) != 0 {
		t.Errorf("ListPresets after delete = %v", names)
	}
}

func TestUnmarshalPresetYAMLDefaults(t *testing.T) {
	data := []byte(`
initial_healthy: 100
initial_exposed: 0
initial_infected: 5
initial_recovered: 0
transmission_probability: 0.3
incubation_duration: 2
infection_duration: 5
vaccination_probability: 0
immunity_duration: 20
mortality_rate: 0.01
horizon_days: 60
`)
	p, err := UnmarshalPresetYAML(data)
	if err != nil {
		t.Fatalf("UnmarshalPresetYAML: %v", err)
	}
	if p.InitialDead != 0 {
		t.Errorf("InitialDead = %d, want 0", p.InitialDead)
	}
	if p.Discretization != model.DefaultDiscretization {
		t.Errorf("Discretization = %d, want %d", p.Discretization, model.DefaultDiscretization)
	}
	if p.InitialInfected != 5 || p.TransmissionProbability != 0.3 {
		t.Errorf("decoded params = %+v", p)
	}
}

func TestUnmarshalPresetYAMLMissingKey(t *testing.T) {
	_, err := UnmarshalPresetYAML([]byte("initial_healthy: 100\n"))
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestMarshalPresetYAMLFlatKeys(t *testing.T) {
	data, err := MarshalPresetYAML(model.DefaultParams())
	if err != nil {
		t.Fatalf("MarshalPresetYAML: %v", err)
	}
	for _, key := range model.ParamKeys() {
		if !strings.Contains(string(data), key+":") {
			t.Errorf("encoded preset missing key %q:\n%s", key, data)
		}
	}
}

func TestWithPresetsRoutesPresetCalls(t *testing.T) {
	db := newTestStore(t)
	d, err := NewDirPresetStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirPresetStore: %v", err)
	}
	s := WithPresets(db, d)
	ctx := context.Background()

	if err := s.SavePreset(ctx, "flu", model.DefaultParams()); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if names, _ := db.ListPresets(ctx); len(names) != 0 {
		t.Errorf("preset leaked into sqlite: %v", names)
	}
	if _, err := d.GetPreset(ctx, "flu"); err != nil {
		t.Errorf("preset not in directory: %v", err)
	}

	r := makeTestRun()
	if err := s.CreateRun(ctx, r); err != nil {
		t.Fatalf("CreateRun through wrapper: %v", err)
	}
	if _, err := db.GetRun(ctx, r.ID); err != nil {
		t.Errorf("run not in sqlite: %v", err)
	}
}
