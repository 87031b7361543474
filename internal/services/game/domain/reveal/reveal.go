// Package reveal is the disclosure protocol: the only channel through which
// the contents of a concealed legion become public.
//
// Every add-creature action and event carries a Reason and answers
// RevealedCreatures by calling Disclose. The table in Disclose is the single,
// explicit per-reason decision; there is no default that reveals everything
// or nothing.
package reveal

import (
	"errors"
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
)

var (
	// ErrUnknownReason indicates a reason outside the disclosure table.
	ErrUnknownReason = errors.New("unknown reveal reason")
	// ErrCreatureRequired indicates a reason that reveals but no added creature.
	ErrCreatureRequired = errors.New("added creature is required")
)

// Reason tags why a creature was added to a legion.
type Reason string

const (
	// Recruited: mustered with the help of a recruiter. Reveals nothing.
	Recruited Reason = "Recruited"
	// Acquire: an angel or archangel gained from points.
	Acquire Reason = "Acquire"
	// Summon: a creature moved in from a donor legion.
	Summon Reason = "Summon"
	// Edit: added by editor tooling.
	Edit Reason = "Edit"
	// UndoSummon: the compensating record for a reverted summon.
	UndoSummon Reason = "UndoSummon"
)

// Reasons lists every reason in the disclosure table.
func Reasons() []Reason {
	return []Reason{Recruited, Acquire, Summon, Edit, UndoSummon}
}

// Valid reports whether r is in the disclosure table.
func (r Reason) Valid() bool {
	switch r {
	case Recruited, Acquire, Summon, Edit, UndoSummon:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Reason) String() string {
	return string(r)
}

// Revealing is implemented by every add-creature action and event.
type Revealing interface {
	Reason() Reason
	// RevealedCreatures returns the creature types that became public as a
	// direct result of this single mutation. Callers own the returned slice.
	RevealedCreatures() []creature.Type
}

// Disclose returns the creature types made public when a creature of type
// added joins a legion for reason r.
func Disclose(r Reason, added creature.Type) ([]creature.Type, error) {
	if added.IsZero() {
		return nil, fmt.Errorf("%s: %w", r, ErrCreatureRequired)
	}
	switch r {
	case Recruited:
		// The recruiter may be shown to prove eligibility but the recruit
		// itself stays hidden.
		return []creature.Type{}, nil
	case Acquire, Summon, Edit, UndoSummon:
		return []creature.Type{added}, nil
	default:
		return nil, fmt.Errorf("%q: %w", string(r), ErrUnknownReason)
	}
}

// MustDisclose is Disclose for callers that already validated r and added.
func MustDisclose(r Reason, added creature.Type) []creature.Type {
	revealed, err := Disclose(r, added)
	if err != nil {
		panic(err)
	}
	return revealed
}

// Counts reports whether the reason represents a lasting addition that
// cumulative disclosure or scoring should count. UndoSummon only compensates
// for an earlier summon.
func (r Reason) Counts() bool {
	return r.Valid() && r != UndoSummon
}

// Public returns the creatures r disclosed as a slice the caller owns. A nil
// r discloses nothing.
func Public(r Revealing) []creature.Type {
	if r == nil {
		return nil
	}
	revealed := r.RevealedCreatures()
	out := make([]creature.Type, len(revealed))
	copy(out, revealed)
	return out
}
