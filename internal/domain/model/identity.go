package model

import (
	"fmt"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
)

// Identity is a set-once account configuration value with explicit
// Unset/Set states. Pinning is the only mutation it permits, so the value
// itself enforces the bootstrap-once rule.
type Identity struct {
	set  bool
	acct Account
}

// Pin transitions Unset -> Set. A second pin fails, whatever the account.
func (i *Identity) Pin(acct Account) error {
	if i.set {
		return fmt.Errorf("%w: identity already pinned to %s", fault.ErrInvalidState, i.acct)
	}
	i.set = true
	i.acct = acct
	return nil
}

// Get returns the pinned account, if any.
func (i *Identity) Get() (Account, bool) {
	return i.acct, i.set
}

// Is reports whether the identity is pinned to acct.
func (i *Identity) Is(acct Account) bool {
	return i.set && i.acct == acct
}

// IsSet reports whether the identity has been pinned.
func (i *Identity) IsSet() bool { return i.set }
