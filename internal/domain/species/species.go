// Package species holds the species trait table and the deterministic
// species-assignment algorithm used by the encounter flow.
package species

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
)

// duelTraits is the fixed set of trait names duels may compare.
var duelTraits = map[string]struct{}{
	"complete.measures":  {},
	"beak.length_culmen": {},
	"beak.length_nares":  {},
	"beak.width":         {},
	"beak.depth":         {},
	"tarsus.length":      {},
	"wing.length":        {},
	"kipps.distance":     {},
	"secondary1":         {},
	"hand-wing.index":    {},
	"tail.length":        {},
	"mass":               {},
}

// Box is an axis-aligned range box in the dataset's coordinate space.
type Box struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// IntersectsCircle reports whether the box touches the circle around
// (x, y) with radius r.
func (b Box) IntersectsCircle(x, y, r float64) bool {
	cx := clamp(x, b.MinX, b.MaxX)
	cy := clamp(y, b.MinY, b.MaxY)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Species is one row of the trait table.
type Species struct {
	// Key names the species; bird records reference it.
	Key string `yaml:"key"`
	// Code is the dataset's species code.
	Code string `yaml:"code"`
	// Density is the relative population density used as sampling weight.
	Density float64 `yaml:"density"`
	// Range bounds where the species lives.
	Range Box `yaml:"range"`
	// Traits is the immutable trait vector.
	Traits map[string]float64 `yaml:"traits"`
}

// Table is the in-memory species trait table. Row order is the dataset
// order and is significant: sampling iterates it deterministically.
type Table struct {
	rows  []Species
	byKey map[string]*Species
}

// NewTable builds a table from rows.
func NewTable(rows []Species) *Table {
	t := &Table{rows: rows, byKey: make(map[string]*Species, len(rows))}
	for i := range t.rows {
		t.byKey[t.rows[i].Key] = &t.rows[i]
	}
	return t
}

// LoadTable reads a YAML dataset file produced by the offline ETL.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var doc struct {
		Species []Species `yaml:"species"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(doc.Species) == 0 {
		return nil, fmt.Errorf("dataset has no species")
	}
	return NewTable(doc.Species), nil
}

// Lookup returns the species row for key.
func (t *Table) Lookup(key string) (*Species, bool) {
	s, ok := t.byKey[key]
	return s, ok
}

// Accepted reports whether trait is a legal duel trait.
func (t *Table) Accepted(trait string) bool {
	_, ok := duelTraits[trait]
	return ok
}

// Value returns the trait value of a species.
func (t *Table) Value(key, trait string) (float64, error) {
	s, ok := t.byKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: species %q", fault.ErrNotFound, key)
	}
	v, ok := s.Traits[trait]
	if !ok {
		return 0, fmt.Errorf("%w: species %q has no trait %q", fault.ErrNotFound, key, trait)
	}
	return v, nil
}

// Vector returns a copy of the species trait vector.
func (t *Table) Vector(key string) (map[string]float64, error) {
	s, ok := t.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: species %q", fault.ErrNotFound, key)
	}
	out := make(map[string]float64, len(s.Traits))
	for k, v := range s.Traits {
		out[k] = v
	}
	return out, nil
}
