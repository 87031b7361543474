// Package legiontest provides in-memory players and legions for tests of
// packages that only need the legion interfaces.
package legiontest

import (
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

// Player is a fixed-score test player.
type Player struct {
	PlayerName  string
	PlayerScore int
}

// Name implements legion.Player.
func (p *Player) Name() string { return p.PlayerName }

// Score implements legion.Player.
func (p *Player) Score() int { return p.PlayerScore }

// Legion is a test legion backed by a creature multiset.
type Legion struct {
	Marker    string
	Owner     *Player
	Creatures creature.Multiset
}

// NewLegion returns a legion owned by owner holding the named creatures.
func NewLegion(marker string, owner *Player, names ...string) *Legion {
	l := &Legion{Marker: marker, Owner: owner}
	for _, name := range names {
		l.Creatures.Add(creature.MustNew(name))
	}
	return l
}

// Player implements legion.Legion.
func (l *Legion) Player() legion.Player {
	if l.Owner == nil {
		return nil
	}
	return l.Owner
}

// MarkerID implements legion.Legion.
func (l *Legion) MarkerID() string { return l.Marker }

// Contains implements legion.Legion.
func (l *Legion) Contains(t creature.Type) bool { return l.Creatures.Contains(t) }

// NumCreature implements legion.Legion.
func (l *Legion) NumCreature(t creature.Type) int { return l.Creatures.Count(t) }

// Height implements legion.Legion.
func (l *Legion) Height() int { return l.Creatures.Len() }
