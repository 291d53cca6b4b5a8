package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults is the process-wide option set loaded once at startup from a
// YAML document (spec's ambient stack: a YAML-driven config layer,
// grounded on the teacher's own funxy.yaml loading in internal/ext).
type Defaults struct {
	Bool   map[string]bool    `yaml:"bool,omitempty"`
	Float  map[string]float64 `yaml:"float,omitempty"`
	Int    map[string]int64   `yaml:"int,omitempty"`
	String map[string]string  `yaml:"string,omitempty"`
}

// LoadDefaults reads and parses a YAML defaults document from path,
// mirroring the teacher's ext.LoadConfig(path)/ext.ParseConfig(data,
// path) split.
func LoadDefaults(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading option defaults %s: %w", path, err)
	}
	return ParseDefaults(data, path)
}

// ParseDefaults parses a YAML defaults document from bytes. path is used
// only for error messages.
func ParseDefaults(data []byte, path string) (*Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &d, nil
}

// Bag materializes the parsed defaults into a fresh option Bag, the
// initial option set a new Container is seeded with.
func (d *Defaults) Bag() *Bag {
	b := New()
	for k, v := range d.Bool {
		b.SetOptionB(k, v)
	}
	for k, v := range d.Float {
		b.SetOptionD(k, v)
	}
	for k, v := range d.Int {
		b.SetOptionI(k, v)
	}
	for k, v := range d.String {
		b.SetOptionS(k, v)
	}
	return b
}
