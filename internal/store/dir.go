package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

const presetExt = ".yaml"

// Compile-time interface satisfaction check.
var _ PresetStore = (*DirPresetStore)(nil)

// DirPresetStore keeps each preset as a YAML file named <name>.yaml in a
// directory, so presets can be edited by hand and kept under version control.
type DirPresetStore struct {
	dir string
}

// NewDirPresetStore creates the directory if needed and returns a store over it.
func NewDirPresetStore(dir string) (*DirPresetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preset dir: %w", err)
	}
	return &DirPresetStore{dir: dir}, nil
}

func (d *DirPresetStore) path(name string) string {
	return filepath.Join(d.dir, name+presetExt)
}

// SavePreset writes the preset file, replacing any previous content.
func (d *DirPresetStore) SavePreset(_ context.Context, name string, p model.Params) error {
	if err := ValidatePresetName(name); err != nil {
		return err
	}
	data, err := MarshalPresetYAML(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save preset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path(name)); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	return nil
}

// GetPreset reads and decodes a preset file.
func (d *DirPresetStore) GetPreset(_ context.Context, name string) (model.Params, error) {
	if ValidatePresetName(name) != nil {
		return model.Params{}, ErrNotFound
	}
	data, err := os.ReadFile(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return model.Params{}, ErrNotFound
	}
	if err != nil {
		return model.Params{}, fmt.Errorf("get preset: %w", err)
	}

	p, err := UnmarshalPresetYAML(data)
	if err != nil {
		return model.Params{}, fmt.Errorf("decode preset %q: %w", name, err)
	}
	return p, nil
}

// ListPresets returns the names of all preset files sorted ascending.
func (d *DirPresetStore) ListPresets(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), presetExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), presetExt)
		if ValidatePresetName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeletePreset removes a preset file.
func (d *DirPresetStore) DeletePreset(_ context.Context, name string) error {
	if ValidatePresetName(name) != nil {
		return ErrNotFound
	}
	err := os.Remove(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	return nil
}

// MarshalPresetYAML encodes params as a flat YAML mapping of the
// model.ParamKeys keys.
func MarshalPresetYAML(p model.Params) ([]byte, error) {
	data, err := yaml.Marshal(p.ToMap())
	if err != nil {
		return nil, fmt.Errorf("encode preset: %w", err)
	}
	return data, nil
}

// UnmarshalPresetYAML decodes a flat YAML mapping into params. Missing
// optional keys take their defaults.
func UnmarshalPresetYAML(data []byte) (model.Params, error) {
	var m map[string]float64
	if err := yaml.Unmarshal(data, &m); err != nil {
		return model.Params{}, fmt.Errorf("parse preset: %w", err)
	}
	return model.ParamsFromMap(m)
}

// Presets routes preset operations to a separate PresetStore while runs stay
// in the wrapped Store.
type Presets struct {
	Store
	presets PresetStore
}

// WithPresets returns a Store whose preset methods are served by p.
func WithPresets(s Store, p PresetStore) *Presets {
	return &Presets{Store: s, presets: p}
}

func (s *Presets) SavePreset(ctx context.Context, name string, p model.Params) error {
	return s.presets.SavePreset(ctx, name, p)
}

func (s *Presets) GetPreset(ctx context.Context, name string) (model.Params, error) {
	return s.presets.GetPreset(ctx, name)
}

func (s *Presets) ListPresets(ctx context.Context) ([]string, error) {
	return s.presets.ListPresets(ctx)
}

func (s *Presets) DeletePreset(ctx context.Context, name string) error {
	return s.presets.DeletePreset(ctx, name)
}
