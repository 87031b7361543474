package event

import (
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

// newAddition builds the shared shape of add-creature events attributed to
// the owner of l.
func newAddition(turn int, kind Kind, l legion.Legion, added creature.Type) (Event, error) {
	if turn < 0 {
		return Event{}, ErrTurnNegative
	}
	if legion.IsNil(l) {
		return Event{}, ErrLegionRequired
	}
	if added.IsZero() {
		return Event{}, ErrCreatureRequired
	}
	reason, _ := kind.Reason()
	player, ok := legion.OwnerOf(l)
	return Event{
		turn:      turn,
		player:    player,
		hasPlayer: ok,
		kind:      kind,
		legionID:  l.MarkerID(),
		added:     added,
		reason:    reason,
	}, nil
}

// NewRecruit records the recruitment of recruited into l.
func NewRecruit(turn int, l legion.Legion, recruited, recruiter creature.Type) (Event, error) {
	evt, err := newAddition(turn, KindRecruit, l, recruited)
	if err != nil {
		return Event{}, err
	}
	if recruiter.IsZero() {
		return Event{}, ErrRecruiterRequired
	}
	evt.recruiter = recruiter
	return evt, nil
}

// NewSummon records a summon of t from donor into target.
//
// The event is attributed to the owner of the target legion, not the donor.
// A nil target is tolerated for bootstrap construction and yields an event
// with no player and no legion.
func NewSummon(turn int, target, donor legion.Legion, t creature.Type) (Event, error) {
	if turn < 0 {
		return Event{}, ErrTurnNegative
	}
	if t.IsZero() {
		return Event{}, ErrCreatureRequired
	}
	if legion.IsNil(donor) {
		return Event{}, ErrDonorRequired
	}
	player, ok := legion.OwnerOf(target)
	return Event{
		turn:      turn,
		player:    player,
		hasPlayer: ok,
		kind:      KindSummon,
		legionID:  legion.MarkerOf(target),
		added:     t,
		donorID:   donor.MarkerID(),
		reason:    reveal.Summon,
	}, nil
}

// NewAcquire records the acquisition of t by l.
func NewAcquire(turn int, l legion.Legion, t creature.Type) (Event, error) {
	return newAddition(turn, KindAcquire, l, t)
}

// NewEditAdd records an editor addition of t to l.
func NewEditAdd(turn int, l legion.Legion, t creature.Type) (Event, error) {
	return newAddition(turn, KindEditAdd, l, t)
}

// NewUndoSummon records the reversal of an earlier summon of t into l.
func NewUndoSummon(turn int, l legion.Legion, t creature.Type) (Event, error) {
	return newAddition(turn, KindUndoSummon, l, t)
}

// NewRelocate records a move of l to hex.
func NewRelocate(turn int, l legion.Legion, hex legion.MasterHex) (Event, error) {
	if turn < 0 {
		return Event{}, ErrTurnNegative
	}
	if legion.IsNil(l) {
		return Event{}, ErrLegionRequired
	}
	if hex == nil || hex.Label() == "" {
		return Event{}, ErrHexRequired
	}
	player, ok := legion.OwnerOf(l)
	return Event{
		turn:        turn,
		player:      player,
		hasPlayer:   ok,
		kind:        KindRelocate,
		legionID:    l.MarkerID(),
		destination: hex.Label(),
	}, nil
}

// Record builds the event matching a committed action.
func Record(turn int, act action.Action) (Event, error) {
	switch a := act.(type) {
	case action.Recruitment:
		return NewRecruit(turn, a.Legion(), a.Recruited(), a.Recruiter())
	case action.Summoning:
		return NewSummon(turn, a.Target(), a.Donor(), a.Added())
	case action.Acquisition:
		return NewAcquire(turn, a.Legion(), a.Added())
	case action.EditAddCreature:
		return NewEditAdd(turn, a.Legion(), a.Added())
	case action.SummonUndo:
		return NewUndoSummon(turn, a.Legion(), a.Added())
	case action.RelocateLegion:
		return NewRelocate(turn, a.Legion(), a.Destination())
	case nil:
		return Event{}, fmt.Errorf("record: action is required")
	default:
		return Event{}, fmt.Errorf("record %T: %w", act, ErrUnknownKind)
	}
}
