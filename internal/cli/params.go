package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// applySets layers key=value assignments over p. Keys are the flat
// parameter names, e.g. transmission_probability=0.3.
func applySets(p model.Params, sets []string) (model.Params, error) {
	if len(sets) == 0 {
		return p, nil
	}
	m := p.ToMap()
	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return model.Params{}, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		if _, known := m[key]; !known {
			return model.Params{}, fmt.Errorf("unknown parameter %q", key)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return model.Params{}, fmt.Errorf("parameter %s: %w", key, err)
		}
		m[key] = v
	}
	return model.ParamsFromMap(m)
}
