package game

import (
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

// Apply performs act against the state. Legions are resolved by marker, so
// act may reference any legion.Legion implementation. On error the state is
// left unchanged.
func (s *State) Apply(act action.Action) error {
	switch a := act.(type) {
	case action.Recruitment:
		return s.recruit(legion.MarkerOf(a.Legion()), a.Recruited(), a.Recruiter())
	case action.Summoning:
		return s.summon(legion.MarkerOf(a.Target()), legion.MarkerOf(a.Donor()), a.Added())
	case action.Acquisition:
		return s.add(legion.MarkerOf(a.Legion()), a.Added())
	case action.EditAddCreature:
		return s.add(legion.MarkerOf(a.Legion()), a.Added())
	case action.SummonUndo:
		return s.undoSummon(legion.MarkerOf(a.Legion()), a.Added())
	case action.RelocateLegion:
		return s.relocate(legion.MarkerOf(a.Legion()), legion.HexLabel(a.Destination().Label()))
	case nil:
		return ErrActionRequired
	default:
		return fmt.Errorf("apply %T: %w", act, event.ErrUnknownKind)
	}
}

// Integrate folds a persisted event into the state.
func (s *State) Integrate(evt event.Event) error {
	switch evt.Kind() {
	case event.KindRecruit:
		return s.recruit(evt.LegionID(), evt.Recruited(), evt.Recruiter())
	case event.KindSummon:
		return s.summon(evt.LegionID(), evt.DonorID(), evt.Added())
	case event.KindAcquire, event.KindEditAdd:
		return s.add(evt.LegionID(), evt.Added())
	case event.KindUndoSummon:
		return s.undoSummon(evt.LegionID(), evt.Added())
	case event.KindRelocate:
		return s.relocate(evt.LegionID(), legion.HexLabel(evt.Destination()))
	default:
		return fmt.Errorf("integrate seq %d kind %q: %w", evt.Seq(), evt.Kind(), event.ErrUnknownKind)
	}
}

func (s *State) lookup(marker string) (*Legion, error) {
	l, ok := s.legions[marker]
	if !ok {
		return nil, fmt.Errorf("legion %q: %w", marker, ErrLegionNotFound)
	}
	return l, nil
}

func (s *State) add(marker string, t creature.Type) error {
	l, err := s.lookup(marker)
	if err != nil {
		return err
	}
	l.creatures.Add(t)
	return nil
}

func (s *State) recruit(marker string, recruited, recruiter creature.Type) error {
	l, err := s.lookup(marker)
	if err != nil {
		return err
	}
	if !l.creatures.Contains(recruiter) {
		return fmt.Errorf("recruit %s into %q: recruiter %s: %w", recruited, marker, recruiter, ErrCreatureMissing)
	}
	l.creatures.Add(recruited)
	if l.owner != nil {
		s.ctx.Scores.MarkRecruit(l.owner.name, l.owner.score)
	}
	return nil
}

func (s *State) summon(targetMarker, donorMarker string, t creature.Type) error {
	target, err := s.lookup(targetMarker)
	if err != nil {
		return fmt.Errorf("summon target: %w", err)
	}
	donor, err := s.lookup(donorMarker)
	if err != nil {
		return fmt.Errorf("summon donor: %w", err)
	}
	if !donor.creatures.Remove(t) {
		return fmt.Errorf("summon %s from %q: %w", t, donorMarker, ErrCreatureMissing)
	}
	target.creatures.Add(t)
	s.pending = append(s.pending, PendingSummon{Target: targetMarker, Donor: donorMarker, Creature: t})
	return nil
}

// undoSummon reverses the most recent pending summon of t into the target.
func (s *State) undoSummon(targetMarker string, t creature.Type) error {
	target, err := s.lookup(targetMarker)
	if err != nil {
		return fmt.Errorf("undo summon: %w", err)
	}
	idx := -1
	for i := len(s.pending) - 1; i >= 0; i-- {
		if s.pending[i].Target == targetMarker && s.pending[i].Creature == t {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("undo summon %s into %q: %w", t, targetMarker, ErrUndoMismatch)
	}
	donor, err := s.lookup(s.pending[idx].Donor)
	if err != nil {
		return fmt.Errorf("undo summon donor: %w", err)
	}
	if !target.creatures.Remove(t) {
		return fmt.Errorf("undo summon %s from %q: %w", t, targetMarker, ErrCreatureMissing)
	}
	donor.creatures.Add(t)
	s.pending = append(s.pending[:idx:idx], s.pending[idx+1:]...)
	return nil
}

func (s *State) relocate(marker string, hex legion.HexLabel) error {
	l, err := s.lookup(marker)
	if err != nil {
		return err
	}
	l.hex = hex
	return nil
}
