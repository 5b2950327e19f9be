package species

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
)

// Default sampling parameters; overridable from configuration.
const (
	defaultEncounterInterval = 120 // seconds per encounter
	defaultVisionRange       = 10  // meters
)

// Observation describes one birdwatching walk, already expressed in the
// dataset's coordinate space.
type Observation struct {
	X        float64 // centroid
	Y        float64
	Radius   float64 // meters around the centroid
	Distance float64 // meters walked
	Timespan int64   // seconds spent
}

// Assigner picks the species for an observation. Implementations must be
// pure functions of (observation, seed): the same pair always yields the
// same species on every re-execution of the log.
type Assigner interface {
	Assign(ctx context.Context, obs Observation, seed int64) (string, error)
}

// Option applies a configuration option to the table assigner.
type Option func(*tableAssigner)

// WithEncounterInterval sets the seconds of walking per encounter draw.
func WithEncounterInterval(seconds int64) Option {
	return func(a *tableAssigner) {
		if seconds > 0 {
			a.encounterInterval = seconds
		}
	}
}

// WithVisionRange sets the observer's vision range in meters.
func WithVisionRange(meters float64) Option {
	return func(a *tableAssigner) {
		if meters > 0 {
			a.visionRange = meters
		}
	}
}

// tableAssigner samples a species from the trait table, weighted by
// density, and registers the least common species drawn.
type tableAssigner struct {
	table             *Table
	encounterInterval int64
	visionRange       float64
}

// NewAssigner builds the density-weighted assigner over a table.
func NewAssigner(table *Table, opts ...Option) Assigner {
	a := &tableAssigner{
		table:             table,
		encounterInterval: defaultEncounterInterval,
		visionRange:       defaultVisionRange,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *tableAssigner) Assign(_ context.Context, obs Observation, seed int64) (string, error) {
	var candidates []*Species
	total := 0.0
	for i := range a.table.rows {
		s := &a.table.rows[i]
		if s.Range.IntersectsCircle(obs.X, obs.Y, obs.Radius) {
			candidates = append(candidates, s)
			total += s.Density
		}
	}
	if len(candidates) == 0 || total <= 0 {
		return "", fmt.Errorf("%w: no species live in the observed region", fault.ErrNotFound)
	}

	encounters := obs.Timespan / a.encounterInterval
	if encounters <= 0 {
		return "", fmt.Errorf("%w: timespan too short for an encounter", fault.ErrInvalidInput)
	}

	rng := rand.New(rand.NewSource(seed))
	var chosen *Species
	for i := int64(0); i < encounters; i++ {
		draw := a.draw(rng, candidates, total)
		if chosen == nil || draw.Density < chosen.Density {
			chosen = draw
		}
	}
	return chosen.Key, nil
}

// draw picks one candidate weighted by density.
func (a *tableAssigner) draw(rng *rand.Rand, candidates []*Species, total float64) *Species {
	u := rng.Float64() * total
	acc := 0.0
	for _, s := range candidates {
		acc += s.Density
		if u < acc {
			return s
		}
	}
	return candidates[len(candidates)-1]
}
