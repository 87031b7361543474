// Package legion declares the read-only views of players, legions and board
// hexes that actions and events are built from.
//
// The authoritative implementations live in the game package. Consumers of
// actions and events only ever see these interfaces, none of which exposes
// the concealed creature multiset as a whole.
package legion

import (
	"reflect"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
)

// Player is a participant in the game.
type Player interface {
	Name() string
	Score() int
}

// Legion is a player-controlled stack of concealed creatures.
type Legion interface {
	// Player returns the owner, or nil when the legion is unowned.
	Player() Player
	MarkerID() string
	Contains(t creature.Type) bool
	NumCreature(t creature.Type) int
	Height() int
}

// MasterHex is a location on the master board.
type MasterHex interface {
	Label() string
}

// HexLabel is a MasterHex identified only by its label.
type HexLabel string

// Label implements MasterHex.
func (h HexLabel) Label() string {
	return string(h)
}

// PlayerRef is the immutable identity of a player as recorded in history.
// Scores change during play, so events keep the name only.
type PlayerRef struct {
	name string
}

// NewPlayerRef returns a reference to the player with the given name.
func NewPlayerRef(name string) PlayerRef {
	return PlayerRef{name: name}
}

// RefOf captures the identity of p. The second result is false when p is nil.
func RefOf(p Player) (PlayerRef, bool) {
	if p == nil {
		return PlayerRef{}, false
	}
	return PlayerRef{name: p.Name()}, true
}

// Name returns the player name.
func (r PlayerRef) Name() string {
	return r.name
}

// OwnerOf returns the owner identity of l, tolerating a nil legion.
func OwnerOf(l Legion) (PlayerRef, bool) {
	if IsNil(l) {
		return PlayerRef{}, false
	}
	return RefOf(l.Player())
}

// MarkerOf returns the marker of l, or "" for a nil legion.
func MarkerOf(l Legion) string {
	if IsNil(l) {
		return ""
	}
	return l.MarkerID()
}

// IsNil reports whether l is nil, including a typed nil pointer stored in the
// interface.
func IsNil(l Legion) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}
