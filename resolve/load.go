package resolve

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"
)

// Load reads a sheet from YAML (or JSON). Each top-level key names a
// quantity. Scalars are fixed values; mappings carry either a `formula` or a
// `value` key:
//
//	mass: 12.5
//	volume: "10"
//	density:
//	  formula: "{mass} / {volume}"
func Load(r io.Reader, opts ...Option) (*Sheet, error) {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode sheet: %w", err)
	}

	s := New(opts...)
	for name, entry := range doc {
		m, ok := entry.(map[string]interface{})
		if !ok {
			s.Set(name, entry)
			continue
		}
		if f, ok := m["formula"]; ok {
			expression, err := cast.ToStringE(f)
			if err != nil {
				return nil, fmt.Errorf("quantity %s: formula: %w", name, err)
			}
			s.Define(name, expression)
			continue
		}
		if v, ok := m["value"]; ok {
			s.Set(name, v)
			continue
		}
		return nil, fmt.Errorf("quantity %s: expected a formula or a value", name)
	}
	return s, nil
}
