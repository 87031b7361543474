package action

import (
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

// Recruitment adds a recruited creature. The recruiter type records which
// creature already in the legion made the recruit legal.
type Recruitment struct {
	addition
	recruiter creature.Type
}

// NewRecruitment builds a recruitment of recruited into l enabled by recruiter.
func NewRecruitment(l legion.Legion, recruited, recruiter creature.Type) (Recruitment, error) {
	a, err := newAddition(l, recruited, reveal.Recruited)
	if err != nil {
		return Recruitment{}, err
	}
	if recruiter.IsZero() {
		return Recruitment{}, ErrRecruiterRequired
	}
	return Recruitment{addition: a, recruiter: recruiter}, nil
}

// Kind implements Action.
func (Recruitment) Kind() Kind { return KindRecruit }

// Recruited returns the recruited creature type.
func (r Recruitment) Recruited() creature.Type { return r.added }

// Recruiter returns the creature type that enabled the recruit.
func (r Recruitment) Recruiter() creature.Type { return r.recruiter }

// Summoning moves one creature from a donor legion into the target legion.
type Summoning struct {
	addition
	donor legion.Legion
}

// NewSummoning builds a summon of t from donor into target.
func NewSummoning(target, donor legion.Legion, t creature.Type) (Summoning, error) {
	a, err := newAddition(target, t, reveal.Summon)
	if err != nil {
		return Summoning{}, err
	}
	if legion.IsNil(donor) {
		return Summoning{}, ErrDonorRequired
	}
	if donor.MarkerID() == target.MarkerID() {
		return Summoning{}, ErrDonorIsTarget
	}
	return Summoning{addition: a, donor: donor}, nil
}

// Kind implements Action.
func (Summoning) Kind() Kind { return KindSummon }

// Target returns the legion receiving the summoned creature.
func (s Summoning) Target() legion.Legion { return s.legion }

// Donor returns the legion giving up the creature.
func (s Summoning) Donor() legion.Legion { return s.donor }

// Acquisition adds a creature gained from points, such as an angel.
type Acquisition struct {
	addition
}

// NewAcquisition builds an acquisition of t into l.
func NewAcquisition(l legion.Legion, t creature.Type) (Acquisition, error) {
	a, err := newAddition(l, t, reveal.Acquire)
	if err != nil {
		return Acquisition{}, err
	}
	return Acquisition{addition: a}, nil
}

// Kind implements Action.
func (Acquisition) Kind() Kind { return KindAcquire }

// EditAddCreature adds a creature through editor tooling. It still obeys the
// disclosure table so histories containing edits stay consistent.
type EditAddCreature struct {
	addition
}

// NewEditAddCreature builds an editor addition of t into l.
func NewEditAddCreature(l legion.Legion, t creature.Type) (EditAddCreature, error) {
	a, err := newAddition(l, t, reveal.Edit)
	if err != nil {
		return EditAddCreature{}, err
	}
	return EditAddCreature{addition: a}, nil
}

// Kind implements Action.
func (EditAddCreature) Kind() Kind { return KindEditAdd }

// SummonUndo reverses an earlier summon of t into l. The creature goes back
// to the donor of the summon being reversed.
type SummonUndo struct {
	addition
}

// NewSummonUndo builds the reversal of a summon of t into l.
func NewSummonUndo(l legion.Legion, t creature.Type) (SummonUndo, error) {
	a, err := newAddition(l, t, reveal.UndoSummon)
	if err != nil {
		return SummonUndo{}, err
	}
	return SummonUndo{addition: a}, nil
}

// Kind implements Action.
func (SummonUndo) Kind() Kind { return KindUndoSummon }

// RelocateLegion moves a legion to another master hex. It adds no creature
// and is not part of the disclosure protocol.
type RelocateLegion struct {
	legion legion.Legion
	hex    legion.MasterHex
}

// NewRelocateLegion builds a move of l to hex.
func NewRelocateLegion(l legion.Legion, hex legion.MasterHex) (RelocateLegion, error) {
	if legion.IsNil(l) {
		return RelocateLegion{}, ErrLegionRequired
	}
	if hex == nil || hex.Label() == "" {
		return RelocateLegion{}, ErrHexRequired
	}
	return RelocateLegion{legion: l, hex: hex}, nil
}

func (RelocateLegion) isAction() {}

// Kind implements Action.
func (RelocateLegion) Kind() Kind { return KindRelocate }

// Legion returns the legion being moved.
func (r RelocateLegion) Legion() legion.Legion { return r.legion }

// Destination returns the hex the legion moves to.
func (r RelocateLegion) Destination() legion.MasterHex { return r.hex }

var (
	_ AddCreature = Recruitment{}
	_ AddCreature = Summoning{}
	_ AddCreature = Acquisition{}
	_ AddCreature = EditAddCreature{}
	_ AddCreature = SummonUndo{}
	_ Action      = RelocateLegion{}
)
