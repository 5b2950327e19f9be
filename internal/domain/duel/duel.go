// Package duel implements the two-party commit-reveal duel protocol:
// initiation, cancellation, responder bird choice, reveal, timeout claim
// and resolution.
package duel

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
	"github.com/prototyp3-dev/ornithologist/pkg/logger"
)

// defaultTimeout is the forfeiture window in seconds after the responder
// bird is chosen.
const defaultTimeout = 600

// keyLength is the truncated length of the canonical duel key, hex chars.
const keyLength = 10

// Registry is the slice of the store the engine needs.
type Registry interface {
	Ornithologist(model.Account) *model.Ornithologist
	BirdByID(model.BirdID) (*model.Bird, error)
	DuelByKey(model.DuelKey) (*model.Duel, error)
	PutDuel(*model.Duel)
	DropDuel(model.DuelKey)
}

// Traits resolves trait values for winner computation.
type Traits interface {
	Accepted(trait string) bool
	Value(speciesKey, trait string) (float64, error)
}

// CanonicalKey derives the order-independent duel key for two accounts:
// SHA-224 over "<lo>-<hi>" of the sorted canonical renderings, truncated.
// A self-pair has no key.
func CanonicalKey(a, b model.Account) (model.DuelKey, error) {
	if a == b {
		return "", fmt.Errorf("%w: can not duel with yourself", fault.ErrInvalidInput)
	}
	pair := []string{a.String(), b.String()}
	sort.Strings(pair)
	sum := sha256.Sum224([]byte(pair[0] + "-" + pair[1]))
	return model.DuelKey(hex.EncodeToString(sum[:])[:keyLength]), nil
}

// Commitment computes the digest a challenger commits to: SHA-512/256
// over "<bird>-<nonce>", hex.
func Commitment(bird model.BirdID, nonce string) string {
	sum := sha512.Sum512_256([]byte(string(bird) + "-" + nonce))
	return hex.EncodeToString(sum[:])
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTimeout sets the forfeiture window in seconds.
func WithTimeout(seconds int64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.timeout = seconds
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine drives duels against the registry. It holds no duel state of its
// own; every transition reads and writes registry records.
type Engine struct {
	reg     Registry
	traits  Traits
	timeout int64
	log     logger.Logger
}

// NewEngine builds a duel engine.
func NewEngine(reg Registry, traits Traits, opts ...Option) *Engine {
	e := &Engine{
		reg:     reg,
		traits:  traits,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initiate proposes a duel from challenger to opponent. The commitment
// hides the challenger's bird until reveal. At most one live duel exists
// per unordered pair; initiation is idempotent on the pair regardless of
// which party would call first.
func (e *Engine) Initiate(ts int64, challenger, opponent model.Account, commitment, trait string, compareGreater bool) (*model.Duel, error) {
	key, err := CanonicalKey(challenger, opponent)
	if err != nil {
		return nil, err
	}
	if !e.traits.Accepted(trait) {
		return nil, fmt.Errorf("%w: trait %q not accepted for duels", fault.ErrInvalidInput, trait)
	}
	if len(e.reg.Ornithologist(challenger).Catalogue) == 0 {
		return nil, fmt.Errorf("%w: sender ornithologist bird catalogue is empty", fault.ErrInvalidState)
	}
	if len(e.reg.Ornithologist(opponent).Catalogue) == 0 {
		return nil, fmt.Errorf("%w: opponent ornithologist bird catalogue is empty", fault.ErrInvalidState)
	}
	if _, err := e.reg.DuelByKey(key); err == nil {
		return nil, fmt.Errorf("%w: duel already happening", fault.ErrInvalidState)
	}

	d := &model.Duel{
		Key:            key,
		Challenger:     challenger,
		Opponent:       opponent,
		Commitment:     commitment,
		Trait:          trait,
		CompareGreater: compareGreater,
		Timestamp:      ts,
	}
	e.reg.PutDuel(d)
	e.reg.Ornithologist(challenger).LiveDuels[key] = d
	e.reg.Ornithologist(opponent).LiveDuels[key] = d
	return d, nil
}

// Cancel withdraws a proposed duel entirely, with no history recorded.
// Only legal while the opponent has not chosen a bird.
func (e *Engine) Cancel(d *model.Duel) error {
	if d.Bird2 != "" {
		return fmt.Errorf("%w: can not cancel after ornithologist 2 has chosen a bird", fault.ErrInvalidState)
	}
	e.evict(d)
	return nil
}

// ChooseResponderBird records the opponent's bird and starts the reveal
// window.
func (e *Engine) ChooseResponderBird(d *model.Duel, ts int64, birdID model.BirdID) error {
	if d.Bird2 != "" {
		return fmt.Errorf("%w: opponent bird already chosen", fault.ErrInvalidState)
	}
	bird, err := e.reg.BirdByID(birdID)
	if err != nil {
		return err
	}
	if bird.Location != model.LocationInApp {
		return fmt.Errorf("%w: bird %s is not in the dapp", fault.ErrInvalidState, birdID)
	}
	d.Bird2 = bird.ID
	d.Timestamp = ts
	return nil
}

// Reveal opens the challenger's commitment. A digest mismatch, an unknown
// bird or a bird outside the dapp forfeits the duel to the opponent
// without erroring: a bad-faith reveal still resolves.
func (e *Engine) Reveal(ctx context.Context, d *model.Duel, ts int64, birdID model.BirdID, nonce string) error {
	if d.Bird2 == "" {
		return fmt.Errorf("%w: opponent has not chosen a bird yet", fault.ErrInvalidState)
	}
	if !e.checkReveal(ctx, d, birdID, nonce) {
		e.resolve(d, ts, d.Bird2)
		return nil
	}
	d.Bird1 = birdID
	winner, err := e.winner(d)
	if err != nil {
		return err
	}
	e.resolve(d, ts, winner)
	return nil
}

// ClaimTimeout forfeits the duel to the opponent when the challenger sat
// on the reveal past the timeout window. Purely data-driven: ts comes
// from event metadata, never from a clock.
func (e *Engine) ClaimTimeout(d *model.Duel, ts int64) error {
	if d.Bird2 == "" {
		return fmt.Errorf("%w: can not claim timeout before choosing a bird", fault.ErrInvalidState)
	}
	if d.Bird1 != "" {
		return fmt.Errorf("%w: can not claim timeout after the challenger revealed", fault.ErrInvalidState)
	}
	if ts < d.Timestamp+e.timeout {
		return fmt.Errorf("%w: can not claim timeout yet", fault.ErrInvalidState)
	}
	e.resolve(d, ts, d.Bird2)
	return nil
}

// checkReveal verifies the commitment and the revealed bird.
func (e *Engine) checkReveal(ctx context.Context, d *model.Duel, birdID model.BirdID, nonce string) bool {
	committed, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(d.Commitment), "0x"))
	if err != nil {
		return false
	}
	sum := sha512.Sum512_256([]byte(string(birdID) + "-" + nonce))
	if !bytes.Equal(sum[:], committed) {
		return false
	}

	bird, err := e.reg.BirdByID(birdID)
	if err != nil {
		if e.log != nil {
			e.log.Warn(ctx, "revealed bird not found", logger.String("duel", string(d.Key)), logger.String("bird", string(birdID)))
		}
		return false
	}
	if bird.Location != model.LocationInApp {
		if e.log != nil {
			e.log.Warn(ctx, "revealed bird not in dapp", logger.String("duel", string(d.Key)), logger.String("bird", string(birdID)))
		}
		return false
	}
	return true
}

// winner compares the named trait of both birds under the stored
// direction. Equal values are a draw: no winner is recorded.
func (e *Engine) winner(d *model.Duel) (model.BirdID, error) {
	bird1, err := e.reg.BirdByID(d.Bird1)
	if err != nil {
		return "", err
	}
	bird2, err := e.reg.BirdByID(d.Bird2)
	if err != nil {
		return "", err
	}
	v1, err := e.traits.Value(bird1.Species, d.Trait)
	if err != nil {
		return "", err
	}
	v2, err := e.traits.Value(bird2.Species, d.Trait)
	if err != nil {
		return "", err
	}

	switch {
	case v1 == v2:
		return "", nil
	case (d.CompareGreater && v1 > v2) || (!d.CompareGreater && v1 < v2):
		return bird1.ID, nil
	default:
		return bird2.ID, nil
	}
}

// resolve finishes the duel: records the winner (empty id on a draw),
// appends the record to the histories and evicts it from every live
// index. The eviction makes a second resolution unreachable.
func (e *Engine) resolve(d *model.Duel, ts int64, winner model.BirdID) {
	d.Timestamp = ts
	d.Resolved = true
	d.Winner = winner
	if winner != "" {
		if bird, err := e.reg.BirdByID(winner); err == nil {
			d.WinnerAccount = bird.Owner
		}
	}

	if d.Bird1 != "" && d.Bird2 != "" {
		if b1, err := e.reg.BirdByID(d.Bird1); err == nil {
			b1.Duels = append(b1.Duels, d)
		}
		if b2, err := e.reg.BirdByID(d.Bird2); err == nil {
			b2.Duels = append(b2.Duels, d)
		}
	}

	challenger := e.reg.Ornithologist(d.Challenger)
	opponent := e.reg.Ornithologist(d.Opponent)
	challenger.Duels = append(challenger.Duels, d)
	opponent.Duels = append(opponent.Duels, d)

	e.evict(d)
}

// evict removes the duel from both live maps and the global index.
func (e *Engine) evict(d *model.Duel) {
	delete(e.reg.Ornithologist(d.Challenger).LiveDuels, d.Key)
	delete(e.reg.Ornithologist(d.Opponent).LiveDuels, d.Key)
	e.reg.DropDuel(d.Key)
}
