package action

import (
	"errors"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

var (
	// ErrLegionRequired indicates a missing target legion.
	ErrLegionRequired = errors.New("legion is required")
	// ErrCreatureRequired indicates a missing added creature type.
	ErrCreatureRequired = errors.New("creature type is required")
	// ErrRecruiterRequired indicates a recruitment without a recruiter type.
	ErrRecruiterRequired = errors.New("recruiter creature type is required")
	// ErrDonorRequired indicates a summoning without a donor legion.
	ErrDonorRequired = errors.New("donor legion is required")
	// ErrDonorIsTarget indicates a summoning whose donor is the target.
	ErrDonorIsTarget = errors.New("donor legion must differ from target legion")
	// ErrHexRequired indicates a relocation without a destination.
	ErrHexRequired = errors.New("destination hex is required")
)

// Kind identifies an action variant.
type Kind string

const (
	KindRecruit    Kind = "recruit"
	KindSummon     Kind = "summon"
	KindAcquire    Kind = "acquire"
	KindEditAdd    Kind = "edit_add"
	KindUndoSummon Kind = "undo_summon"
	KindRelocate   Kind = "relocate"
)

// Action is a mutation about to happen to one legion.
//
// The set of variants is closed: only this package implements Action.
type Action interface {
	Kind() Kind
	Legion() legion.Legion
	isAction()
}

// AddCreature is an action that adds exactly one creature to its legion.
type AddCreature interface {
	Action
	reveal.Revealing
	Added() creature.Type
}

// addition is the payload shared by every add-creature variant.
type addition struct {
	legion legion.Legion
	added  creature.Type
	reason reveal.Reason
}

func newAddition(l legion.Legion, added creature.Type, reason reveal.Reason) (addition, error) {
	if legion.IsNil(l) {
		return addition{}, ErrLegionRequired
	}
	if added.IsZero() {
		return addition{}, ErrCreatureRequired
	}
	return addition{legion: l, added: added, reason: reason}, nil
}

func (a addition) isAction() {}

// Legion returns the legion receiving the creature.
func (a addition) Legion() legion.Legion { return a.legion }

// Added returns the type of the creature being added.
func (a addition) Added() creature.Type { return a.added }

// Reason returns the reveal reason of the variant.
func (a addition) Reason() reveal.Reason { return a.reason }

// RevealedCreatures implements reveal.Revealing.
func (a addition) RevealedCreatures() []creature.Type {
	return reveal.MustDisclose(a.reason, a.added)
}
