// Package model contains domain records passed between layers: accounts,
// birds, ornithologists, duels and the outbound voucher shape.
//
// Identifier kinds are distinct types so a bird id can never be handed to
// a duel lookup by accident.
package model

import (
	"fmt"
	"strings"

	gethCommon "github.com/ethereum/go-ethereum/common"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
)

// Account identifies an ornithologist or a contract by its base-layer
// address. Identity is case-insensitive: parsing canonicalizes, and the
// rendered form is always lowercase hex.
type Account struct {
	addr gethCommon.Address
}

// ParseAccount parses a hex account address.
func ParseAccount(s string) (Account, error) {
	if !gethCommon.IsHexAddress(s) {
		return Account{}, fmt.Errorf("%w: %q is not an account address", fault.ErrInvalidInput, s)
	}
	return Account{addr: gethCommon.HexToAddress(s)}, nil
}

// AccountFromAddress wraps an already-decoded address.
func AccountFromAddress(a gethCommon.Address) Account {
	return Account{addr: a}
}

// Address returns the underlying 20-byte address.
func (a Account) Address() gethCommon.Address { return a.addr }

// String renders the canonical lowercase hex form.
func (a Account) String() string {
	return strings.ToLower(a.addr.Hex())
}

// IsZero reports whether the account is the zero value, used to mark an
// absent owner.
func (a Account) IsZero() bool {
	return a.addr == (gethCommon.Address{})
}

// MarshalText renders the canonical form for JSON views.
func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// BirdID identifies a bird. Allocated by the registry at creation.
type BirdID string

// DuelKey is the canonical, order-independent identifier of a duel
// between two accounts.
type DuelKey string
