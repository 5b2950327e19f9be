package model

// Ornithologist is a player account. Records are created lazily on first
// reference and live for the process lifetime.
type Ornithologist struct {
	Account Account

	// Catalogue maps owned bird ids to birds.
	Catalogue map[BirdID]*Bird

	// LiveDuels maps in-flight duel keys to duels.
	LiveDuels map[DuelKey]*Duel

	// Duels holds finished duels, chronological.
	Duels []*Duel
}

// NewOrnithologist builds an empty record for the account.
func NewOrnithologist(acct Account) *Ornithologist {
	return &Ornithologist{
		Account:   acct,
		Catalogue: make(map[BirdID]*Bird),
		LiveDuels: make(map[DuelKey]*Duel),
	}
}

// Wins counts finished duels this ornithologist won.
func (o *Ornithologist) Wins() int {
	n := 0
	for _, d := range o.Duels {
		if !d.WinnerAccount.IsZero() && d.WinnerAccount == o.Account {
			n++
		}
	}
	return n
}
