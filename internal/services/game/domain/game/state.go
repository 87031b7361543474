package game

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

// PendingSummon records a summon that a later undo may reverse.
type PendingSummon struct {
	Target   string
	Donor    string
	Creature creature.Type
}

// State is the full game model. It is not safe for concurrent mutation;
// the engine serialises writers.
type State struct {
	players map[string]*Player
	legions map[string]*Legion
	pending []PendingSummon
	ctx     *Context
}

// NewState creates an empty game.
func NewState() *State {
	return &State{
		players: make(map[string]*Player),
		legions: make(map[string]*Legion),
		ctx:     NewContext(),
	}
}

// Context returns the per-game rules context.
func (s *State) Context() *Context {
	return s.ctx
}

// AddPlayer registers a player.
func (s *State) AddPlayer(name string, score int) (*Player, error) {
	p, err := NewPlayer(name, score)
	if err != nil {
		return nil, err
	}
	if _, ok := s.players[p.name]; ok {
		return nil, fmt.Errorf("add player %q: %w", p.name, ErrDuplicatePlayer)
	}
	s.players[p.name] = p
	return p, nil
}

// AddLegion places a new legion on the board. Its starting contents are
// part of the initial setup, not of the history.
func (s *State) AddLegion(marker, owner string, hex legion.HexLabel, creatures ...creature.Type) (*Legion, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return nil, ErrMarkerRequired
	}
	if _, ok := s.legions[marker]; ok {
		return nil, fmt.Errorf("add legion %q: %w", marker, ErrDuplicateLegion)
	}
	p, ok := s.players[strings.TrimSpace(owner)]
	if !ok {
		return nil, fmt.Errorf("add legion %q owner %q: %w", marker, owner, ErrPlayerNotFound)
	}
	l := &Legion{
		marker:    marker,
		owner:     p,
		hex:       hex,
		creatures: creature.NewMultiset(creatures...),
	}
	s.legions[marker] = l
	return l, nil
}

// Player returns the player with the given name.
func (s *State) Player(name string) (*Player, bool) {
	p, ok := s.players[name]
	return p, ok
}

// Legion returns the legion with the given marker.
func (s *State) Legion(marker string) (*Legion, bool) {
	l, ok := s.legions[marker]
	return l, ok
}

// Players returns every player ordered by name.
func (s *State) Players() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, name := range slices.Sorted(maps.Keys(s.players)) {
		out = append(out, s.players[name])
	}
	return out
}

// Legions returns every legion ordered by marker.
func (s *State) Legions() []*Legion {
	out := make([]*Legion, 0, len(s.legions))
	for _, marker := range slices.Sorted(maps.Keys(s.legions)) {
		out = append(out, s.legions[marker])
	}
	return out
}

// Pending returns the summons that may still be undone, oldest first.
func (s *State) Pending() []PendingSummon {
	return slices.Clone(s.pending)
}

// AddPending appends a summon that a later undo may reverse. It restores
// a saved state; committed summons add their own entries.
func (s *State) AddPending(p PendingSummon) error {
	if _, err := s.lookup(p.Target); err != nil {
		return fmt.Errorf("pending summon target: %w", err)
	}
	if _, err := s.lookup(p.Donor); err != nil {
		return fmt.Errorf("pending summon donor: %w", err)
	}
	if p.Creature.IsZero() {
		return fmt.Errorf("pending summon into %q: %w", p.Target, ErrCreatureMissing)
	}
	s.pending = append(s.pending, p)
	return nil
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		players: make(map[string]*Player, len(s.players)),
		legions: make(map[string]*Legion, len(s.legions)),
		pending: slices.Clone(s.pending),
		ctx:     s.ctx.clone(),
	}
	for name, p := range s.players {
		copied := *p
		out.players[name] = &copied
	}
	for marker, l := range s.legions {
		var owner *Player
		if l.owner != nil {
			owner = out.players[l.owner.name]
		}
		out.legions[marker] = &Legion{
			marker:    l.marker,
			owner:     owner,
			hex:       l.hex,
			creatures: l.creatures.Clone(),
		}
	}
	return out
}

// Equal reports whether two states hold the same players, legions and
// pending summons. The rules context is not compared.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.players) != len(other.players) || len(s.legions) != len(other.legions) {
		return false
	}
	for name, p := range s.players {
		o, ok := other.players[name]
		if !ok || o.score != p.score {
			return false
		}
	}
	for marker, l := range s.legions {
		o, ok := other.legions[marker]
		if !ok || o.hex != l.hex || ownerName(o) != ownerName(l) || !o.creatures.Equal(l.creatures) {
			return false
		}
	}
	return slices.Equal(s.pending, other.pending)
}

func ownerName(l *Legion) string {
	if l.owner == nil {
		return ""
	}
	return l.owner.name
}
