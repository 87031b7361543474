package view

import (
	"maps"
	"slices"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

type tallied struct {
	player   string
	target   string
	creature creature.Type
}

// Tally counts disclosed creatures per player. UndoSummon disclosures are
// never counted; an undo instead cancels the summon it reverses.
type Tally struct {
	counts  map[string]map[creature.Type]int
	summons []tallied
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[string]map[creature.Type]int)}
}

// Add folds one event into the tally. Events without a player are ignored.
func (t *Tally) Add(evt event.Event) {
	player, ok := evt.Player()
	if !ok {
		return
	}
	name := player.Name()

	if evt.Reason() == reveal.UndoSummon {
		for i := len(t.summons) - 1; i >= 0; i-- {
			s := t.summons[i]
			if s.target == evt.LegionID() && s.creature == evt.Added() {
				t.bump(s.player, s.creature, -1)
				t.summons = append(t.summons[:i:i], t.summons[i+1:]...)
				return
			}
		}
		return
	}
	if !evt.Reason().Counts() {
		return
	}
	for _, c := range reveal.Public(evt) {
		t.bump(name, c, 1)
	}
	if evt.Kind() == event.KindSummon {
		t.summons = append(t.summons, tallied{player: name, target: evt.LegionID(), creature: evt.Added()})
	}
}

func (t *Tally) bump(player string, c creature.Type, delta int) {
	perPlayer, ok := t.counts[player]
	if !ok {
		perPlayer = make(map[creature.Type]int)
		t.counts[player] = perPlayer
	}
	perPlayer[c] += delta
	if perPlayer[c] <= 0 {
		delete(perPlayer, c)
	}
}

// Count returns how many creatures of type c the player disclosed.
func (t *Tally) Count(player string, c creature.Type) int {
	return t.counts[player][c]
}

// Total returns every disclosure counted for the player.
func (t *Tally) Total(player string) int {
	total := 0
	for _, n := range t.counts[player] {
		total += n
	}
	return total
}

// Players returns the players with at least one counted disclosure.
func (t *Tally) Players() []string {
	var out []string
	for _, player := range slices.Sorted(maps.Keys(t.counts)) {
		if len(t.counts[player]) > 0 {
			out = append(out, player)
		}
	}
	return out
}
