// Package config implements spec.md §9's "union opt_t": a dynamically
// typed option bag with one stored entry per name, tagged by which of
// bool/float/int/string it holds (spec §6.1 "set_option_{b,d,i,s}").
package config

import (
	"github.com/reshop/reshop/internal/rherr"
)

// Kind tags which variant an Option currently holds.
type Kind int

const (
	Bool Kind = iota
	Float
	Int
	String
)

// Option is one tagged value in the bag; only the field matching Kind is
// meaningful (spec §9: "Tagged enum with variants; setter API retains one
// entry per type").
type Option struct {
	Kind Kind
	B    bool
	D    float64
	I    int64
	S    string
}

// Bag is a named collection of options, e.g. "the current process's
// default option set" or a per-Container override set.
type Bag struct {
	entries map[string]Option
}

// New returns an empty option bag.
func New() *Bag {
	return &Bag{entries: make(map[string]Option)}
}

// SetOptionB sets name to a boolean value, replacing whatever kind it
// held before.
func (b *Bag) SetOptionB(name string, val bool) {
	b.entries[name] = Option{Kind: Bool, B: val}
}

// SetOptionD sets name to a float value.
func (b *Bag) SetOptionD(name string, val float64) {
	b.entries[name] = Option{Kind: Float, D: val}
}

// SetOptionI sets name to an integer value.
func (b *Bag) SetOptionI(name string, val int64) {
	b.entries[name] = Option{Kind: Int, I: val}
}

// SetOptionS sets name to a string value (spec: "String values are
// borrowed" in the C original; Go's immutable strings make that
// distinction moot, the value is simply copied).
func (b *Bag) SetOptionS(name string, val string) {
	b.entries[name] = Option{Kind: String, S: val}
}

func (b *Bag) get(name string, want Kind) (Option, error) {
	opt, ok := b.entries[name]
	if !ok {
		return Option{}, rherr.E(rherr.NotFound, "config.Bag.get", "no option named %q", name)
	}
	if opt.Kind != want {
		return Option{}, rherr.E(rherr.InvalidValue, "config.Bag.get", "option %q is a %s, not a %s", name, opt.Kind, want)
	}
	return opt, nil
}

// GetOptionB reads a boolean option, or an error if unset or of a
// different kind.
func (b *Bag) GetOptionB(name string) (bool, error) {
	opt, err := b.get(name, Bool)
	return opt.B, err
}

// GetOptionD reads a float option.
func (b *Bag) GetOptionD(name string) (float64, error) {
	opt, err := b.get(name, Float)
	return opt.D, err
}

// GetOptionI reads an integer option.
func (b *Bag) GetOptionI(name string) (int64, error) {
	opt, err := b.get(name, Int)
	return opt.I, err
}

// GetOptionS reads a string option.
func (b *Bag) GetOptionS(name string) (string, error) {
	opt, err := b.get(name, String)
	return opt.S, err
}

// Has reports whether name has been set, regardless of kind.
func (b *Bag) Has(name string) bool {
	_, ok := b.entries[name]
	return ok
}

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Float:
		return "float"
	case Int:
		return "int"
	case String:
		return "string"
	default:
		return "unknown"
	}
}
