package game

import (
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

// Legion is a stack of creatures whose contents are concealed from the
// other players.
type Legion struct {
	marker    string
	owner     *Player
	hex       legion.HexLabel
	creatures creature.Multiset
}

// Player implements legion.Legion.
func (l *Legion) Player() legion.Player {
	if l.owner == nil {
		return nil
	}
	return l.owner
}

// Owner returns the owning player.
func (l *Legion) Owner() *Player { return l.owner }

// MarkerID implements legion.Legion.
func (l *Legion) MarkerID() string { return l.marker }

// Contains implements legion.Legion.
func (l *Legion) Contains(t creature.Type) bool { return l.creatures.Contains(t) }

// NumCreature implements legion.Legion.
func (l *Legion) NumCreature(t creature.Type) int { return l.creatures.Count(t) }

// Height implements legion.Legion.
func (l *Legion) Height() int { return l.creatures.Len() }

// Hex returns the master board hex the legion stands on.
func (l *Legion) Hex() legion.HexLabel { return l.hex }

// Creatures returns a copy of the concealed contents.
func (l *Legion) Creatures() creature.Multiset { return l.creatures.Clone() }

var _ legion.Legion = (*Legion)(nil)
var _ legion.Player = (*Player)(nil)
