// Package repository owns the in-memory registry: every bird,
// ornithologist and live duel, plus the indices over them.
//
// The registry is an explicitly owned store handed to the dispatcher; no
// package-level state. Event processing is strictly sequential, so the
// maps need no locking: single-threaded ownership is the concurrency
// discipline (and per-event atomicity comes for free).
package repository

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
)

// birdNamespace seeds deterministic bird ids: the same creation ordinal
// yields the same id on every replay of the log.
var birdNamespace = uuid.MustParse("8a6c1f5e-90d4-42cb-9c2e-51b3a7e0ff14")

// Registry holds all entity records and their indices. Mutations are
// immediately visible through every index.
type Registry struct {
	birdsByID      map[model.BirdID]*model.Bird
	birdsByToken   map[string]*model.Bird // decimal token id -> bird
	ornithologists map[model.Account]*model.Ornithologist
	duels          map[model.DuelKey]*model.Duel

	// encounters counts birds ever created per species key.
	encounters map[string]int

	// birdSeq is the creation ordinal feeding id allocation.
	birdSeq uint64
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{
		birdsByID:      make(map[model.BirdID]*model.Bird),
		birdsByToken:   make(map[string]*model.Bird),
		ornithologists: make(map[model.Account]*model.Ornithologist),
		duels:          make(map[model.DuelKey]*model.Duel),
		encounters:     make(map[string]int),
	}
}

// Ornithologist returns the record for acct, creating it on first
// reference. Never fails.
func (r *Registry) Ornithologist(acct model.Account) *model.Ornithologist {
	if o, ok := r.ornithologists[acct]; ok {
		return o
	}
	o := model.NewOrnithologist(acct)
	r.ornithologists[acct] = o
	return o
}

// FindOrnithologist looks up acct without creating it.
func (r *Registry) FindOrnithologist(acct model.Account) (*model.Ornithologist, bool) {
	o, ok := r.ornithologists[acct]
	return o, ok
}

// CreateBird allocates a bird for owner with the given species, places it
// in-app and registers it in the owner's catalogue and the encounter
// counters.
func (r *Registry) CreateBird(owner model.Account, speciesKey string) *model.Bird {
	r.birdSeq++
	id := model.BirdID(uuid.NewSHA1(birdNamespace, []byte(strconv.FormatUint(r.birdSeq, 10))).String())

	b := &model.Bird{
		ID:       id,
		Species:  speciesKey,
		Location: model.LocationInApp,
		Owner:    owner,
	}
	r.birdsByID[id] = b
	r.encounters[speciesKey]++
	r.Ornithologist(owner).Catalogue[id] = b
	return b
}

// BirdByID looks a bird up by id.
func (r *Registry) BirdByID(id model.BirdID) (*model.Bird, error) {
	b, ok := r.birdsByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: bird %s", fault.ErrNotFound, id)
	}
	return b, nil
}

// BirdByToken looks a bird up by its registered ERC-721 token id.
func (r *Registry) BirdByToken(token *big.Int) (*model.Bird, error) {
	b, ok := r.birdsByToken[token.String()]
	if !ok {
		return nil, fmt.Errorf("%w: no bird registered with token %s", fault.ErrNotFound, token)
	}
	return b, nil
}

// IndexToken adds a bird to the by-token index. The bird's Token field
// must already be set.
func (r *Registry) IndexToken(b *model.Bird) {
	r.birdsByToken[b.Token.String()] = b
}

// DuelByKey looks a live duel up by canonical key.
func (r *Registry) DuelByKey(key model.DuelKey) (*model.Duel, error) {
	d, ok := r.duels[key]
	if !ok {
		return nil, fmt.Errorf("%w: duel %s", fault.ErrNotFound, key)
	}
	return d, nil
}

// PutDuel registers a live duel under its key.
func (r *Registry) PutDuel(d *model.Duel) {
	r.duels[d.Key] = d
}

// DropDuel evicts a duel from the live index.
func (r *Registry) DropDuel(key model.DuelKey) {
	delete(r.duels, key)
}

// LiveDuels returns the number of in-flight duels.
func (r *Registry) LiveDuels() int { return len(r.duels) }

// Birds returns the number of birds ever created.
func (r *Registry) Birds() int { return len(r.birdsByID) }

// EncounterSummary returns birds ever created per species key.
func (r *Registry) EncounterSummary() map[string]int {
	out := make(map[string]int, len(r.encounters))
	for k, v := range r.encounters {
		out[k] = v
	}
	return out
}
