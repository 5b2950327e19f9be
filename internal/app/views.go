package app

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
)

// Views render state snapshots as JSON strings for notices and inspect
// reports. Map keys are the public field names queries are written
// against; rendering never fails on well-formed state, so marshal errors
// collapse to an empty object.

func marshalView(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// normalizeQuery canonicalizes an inspect query payload.
func normalizeQuery(payload []byte) string {
	return strings.ToLower(strings.TrimSpace(string(payload)))
}

// birdView renders a bird record with its species trait vector inlined.
func (s *Service) birdView(b *model.Bird) string {
	view := map[string]any{
		"species":  b.Species,
		"id":       string(b.ID),
		"location": b.Location.String(),
		"duels":    len(b.Duels),
		"wins":     b.Wins(),
	}
	if traits, err := s.table.Vector(b.Species); err == nil {
		for k, v := range traits {
			view[k] = v
		}
	}
	if b.Token != nil {
		view["erc721_id"] = b.Token.String()
	} else {
		view["erc721_id"] = nil
	}
	if b.Owned() {
		view["ornithologist"] = b.Owner.String()
	} else {
		view["ornithologist"] = nil
	}
	return marshalView(view)
}

// duelView renders a duel record, live or finished.
func duelView(d *model.Duel) string {
	view := map[string]any{
		"id":              string(d.Key),
		"ornithologist1":  d.Challenger.String(),
		"ornithologist2":  d.Opponent.String(),
		"trait":           d.Trait,
		"compare_greater": d.CompareGreater,
		"timestamp":       d.Timestamp,
		"status":          d.StatusLine(),
	}
	if d.Bird1 != "" {
		view["bird1_id"] = string(d.Bird1)
	} else {
		view["bird1_id"] = nil
	}
	if d.Bird2 != "" {
		view["bird2_id"] = string(d.Bird2)
	} else {
		view["bird2_id"] = nil
	}
	if d.Resolved && d.Winner != "" {
		view["winner"] = string(d.Winner)
		view["winner_ornithologist"] = d.WinnerAccount.String()
	} else {
		view["winner"] = nil
		view["winner_ornithologist"] = nil
	}
	return marshalView(view)
}

// ornithologistView renders an ornithologist's catalogue and duel record.
func ornithologistView(o *model.Ornithologist) string {
	catalogue := make([]string, 0, len(o.Catalogue))
	for id := range o.Catalogue {
		catalogue = append(catalogue, string(id))
	}
	sort.Strings(catalogue)

	live := make([]string, 0, len(o.LiveDuels))
	for key := range o.LiveDuels {
		live = append(live, string(key))
	}
	sort.Strings(live)

	return marshalView(map[string]any{
		"ornithologist":    o.Account.String(),
		"bird_catalogue":   catalogue,
		"unfinished_duels": live,
		"duels":            len(o.Duels),
		"wins":             o.Wins(),
	})
}

// summaryView renders the per-species encounter counters.
func summaryView(counts map[string]int) string {
	return marshalView(counts)
}
