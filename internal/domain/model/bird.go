package model

import "math/big"

// Location is the custody location of a bird.
type Location uint8

const (
	// LocationInApp means the bird is owned and playable inside the dapp.
	LocationInApp Location = iota + 1
	// LocationOnBaseLayer means the bird was withdrawn and is tracked by
	// the external asset ledger.
	LocationOnBaseLayer
)

func (l Location) String() string {
	switch l {
	case LocationInApp:
		return "in_app"
	case LocationOnBaseLayer:
		return "on_base_layer"
	default:
		return "unknown"
	}
}

// MarshalText renders the location for JSON views.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Bird is an in-app asset. Birds are created by the encounter flow and
// never deleted, only relocated between custody locations.
type Bird struct {
	ID      BirdID
	Species string // key into the species trait table

	Location Location
	Owner    Account  // zero while on the base layer
	Token    *big.Int // ERC-721 token id, nil until registered

	// Duels holds finished duels this bird took part in, chronological.
	Duels []*Duel
}

// Owned reports whether the bird currently has an owning ornithologist.
func (b *Bird) Owned() bool { return !b.Owner.IsZero() }

// Wins counts finished duels this bird won.
func (b *Bird) Wins() int {
	n := 0
	for _, d := range b.Duels {
		if d.Winner == b.ID {
			n++
		}
	}
	return n
}
