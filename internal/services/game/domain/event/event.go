package event

import (
	"errors"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

var (
	// ErrTurnNegative indicates an event built with a negative turn.
	ErrTurnNegative = errors.New("turn must not be negative")
	// ErrLegionRequired indicates a missing acted-upon legion.
	ErrLegionRequired = errors.New("legion is required")
	// ErrCreatureRequired indicates a missing added creature type.
	ErrCreatureRequired = errors.New("creature type is required")
	// ErrRecruiterRequired indicates a recruit event without a recruiter.
	ErrRecruiterRequired = errors.New("recruiter creature type is required")
	// ErrDonorRequired indicates a summon event without a donor.
	ErrDonorRequired = errors.New("donor legion is required")
	// ErrHexRequired indicates a relocation event without a destination.
	ErrHexRequired = errors.New("destination hex is required")
	// ErrUnknownKind indicates an event kind outside the known set.
	ErrUnknownKind = errors.New("unknown event kind")
	// ErrCorrupt indicates an event whose fields contradict the disclosure
	// table. Replay must stop when it sees one.
	ErrCorrupt = errors.New("history corrupt")
)

// Kind identifies an event variant.
type Kind string

const (
	KindRecruit    Kind = "recruit"
	KindSummon     Kind = "summon"
	KindAcquire    Kind = "acquire"
	KindEditAdd    Kind = "edit_add"
	KindUndoSummon Kind = "undo_summon"
	KindRelocate   Kind = "relocate"
)

// Kinds lists every event kind.
func Kinds() []Kind {
	return []Kind{KindRecruit, KindSummon, KindAcquire, KindEditAdd, KindUndoSummon, KindRelocate}
}

// Reason returns the reveal reason fixed for add-creature kinds. The second
// result is false for kinds that add no creature.
func (k Kind) Reason() (reveal.Reason, bool) {
	switch k {
	case KindRecruit:
		return reveal.Recruited, true
	case KindSummon:
		return reveal.Summon, true
	case KindAcquire:
		return reveal.Acquire, true
	case KindEditAdd:
		return reveal.Edit, true
	case KindUndoSummon:
		return reveal.UndoSummon, true
	}
	return "", false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	if _, ok := k.Reason(); ok {
		return true
	}
	return k == KindRelocate
}

// Event is one committed legion mutation.
type Event struct {
	seq         uint64
	turn        int
	player      legion.PlayerRef
	hasPlayer   bool
	kind        Kind
	legionID    string
	added       creature.Type
	recruiter   creature.Type
	donorID     string
	destination string
	reason      reveal.Reason
}

// Seq returns the 1-based position in history, or 0 before the event has
// been appended.
func (e Event) Seq() uint64 { return e.seq }

// Turn returns the turn the event was committed in.
func (e Event) Turn() int { return e.turn }

// Player returns the player the event is attributed to. The second result is
// false for bootstrap events built without a legion owner.
func (e Event) Player() (legion.PlayerRef, bool) { return e.player, e.hasPlayer }

// Kind returns the event variant.
func (e Event) Kind() Kind { return e.kind }

// LegionID returns the marker of the acted-upon legion (the target for
// summons).
func (e Event) LegionID() string { return e.legionID }

// Added returns the added creature type; zero for relocations.
func (e Event) Added() creature.Type { return e.added }

// Recruited is Added for recruit events.
func (e Event) Recruited() creature.Type { return e.added }

// Recruiter returns the creature type that enabled a recruit.
func (e Event) Recruiter() creature.Type { return e.recruiter }

// DonorID returns the marker of the donor legion of a summon.
func (e Event) DonorID() string { return e.donorID }

// Destination returns the hex label of a relocation.
func (e Event) Destination() string { return e.destination }

// Reason implements reveal.Revealing. Relocations have no reason.
func (e Event) Reason() reveal.Reason { return e.reason }

// AddsCreature reports whether the event adds a creature to its legion.
func (e Event) AddsCreature() bool {
	_, ok := e.kind.Reason()
	return ok
}

// RevealedCreatures implements reveal.Revealing.
func (e Event) RevealedCreatures() []creature.Type {
	if !e.AddsCreature() {
		return []creature.Type{}
	}
	revealed, err := reveal.Disclose(e.reason, e.added)
	if err != nil {
		return []creature.Type{}
	}
	return revealed
}

// WithSeq returns a copy of e stamped with its position in history.
func (e Event) WithSeq(seq uint64) Event {
	e.seq = seq
	return e
}

var _ reveal.Revealing = Event{}
