package model

import "fmt"

// DuelStatus is derived from which fields of a duel are filled in; the
// record itself never stores a status flag.
type DuelStatus uint8

const (
	// DuelProposed means the responder has not chosen a bird yet.
	DuelProposed DuelStatus = iota + 1
	// DuelAwaitingReveal means the responder bird is chosen and the
	// challenger bird is still hidden behind the commitment.
	DuelAwaitingReveal
	// DuelFinished means the duel resolved; the record only lives in
	// histories from this point on.
	DuelFinished
)

// Duel is a two-party commit-reveal contest over one trait. Participant 1
// (the challenger) committed to a bird; participant 2 (the opponent)
// answers with a bird in the open.
type Duel struct {
	Key        DuelKey
	Challenger Account
	Opponent   Account

	// Commitment is the challenger's digest of "<bird>-<nonce>", hex.
	Commitment string

	Bird1 BirdID // empty until a successful reveal
	Bird2 BirdID // empty until the opponent chooses

	Trait          string
	CompareGreater bool

	// Timestamp is the time of the last state-changing event, from event
	// metadata; timeouts are measured against it.
	Timestamp int64

	Resolved      bool
	Winner        BirdID  // empty on a draw or a cancelled duel
	WinnerAccount Account // zero on a draw or a cancelled duel
}

// Status derives the current protocol state.
func (d *Duel) Status() DuelStatus {
	switch {
	case d.Resolved:
		return DuelFinished
	case d.Bird2 != "":
		return DuelAwaitingReveal
	default:
		return DuelProposed
	}
}

// StatusLine renders the status the way notices report it.
func (d *Duel) StatusLine() string {
	switch d.Status() {
	case DuelFinished:
		return "finished"
	case DuelAwaitingReveal:
		return fmt.Sprintf("waiting ornithologist 1 (%s) reveal", d.Challenger)
	default:
		return fmt.Sprintf("waiting ornithologist 2 (%s) bird", d.Opponent)
	}
}
