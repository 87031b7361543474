package view

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

var (
	// ErrOutOfOrder indicates an event merged out of sequence.
	ErrOutOfOrder = errors.New("event out of order")
	// ErrUnknownLegion indicates an event for a legion the view never saw.
	ErrUnknownLegion = errors.New("unknown legion")
	// ErrDuplicateLegion indicates a second seed for the same marker.
	ErrDuplicateLegion = errors.New("legion already seeded")
	// ErrUndoMismatch indicates an undo the view cannot pair with a summon.
	ErrUndoMismatch = errors.New("undo does not match a known summon")
)

// Legion is the public face of one legion.
type Legion struct {
	Marker string
	Owner  string
	Hex    string
	Height int
	Known  creature.Multiset
}

type summonRecord struct {
	target   string
	donor    string
	creature creature.Type
}

// Public is a client-side view of a game, built only from public facts and
// disclosed creatures.
type Public struct {
	legions map[string]*Legion
	pending []summonRecord
	lastSeq uint64
}

// NewPublic creates an empty view positioned before the first event.
func NewPublic() *Public {
	return &Public{legions: make(map[string]*Legion)}
}

// Seed registers a legion as it stands at game start. known lists the
// creatures that are public from the outset.
func (p *Public) Seed(marker, owner, hex string, height int, known ...creature.Type) error {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return errors.New("legion marker is required")
	}
	if _, ok := p.legions[marker]; ok {
		return fmt.Errorf("seed %q: %w", marker, ErrDuplicateLegion)
	}
	if len(known) > height {
		return fmt.Errorf("seed %q: %d known creatures exceed height %d", marker, len(known), height)
	}
	p.legions[marker] = &Legion{
		Marker: marker,
		Owner:  owner,
		Hex:    hex,
		Height: height,
		Known:  creature.NewMultiset(known...),
	}
	return nil
}

// LastSeq returns the sequence number of the last merged event.
func (p *Public) LastSeq() uint64 {
	return p.lastSeq
}

// Legion returns a copy of the view of one legion.
func (p *Public) Legion(marker string) (Legion, bool) {
	l, ok := p.legions[marker]
	if !ok {
		return Legion{}, false
	}
	out := *l
	out.Known = l.Known.Clone()
	return out, true
}

// Markers returns every known marker in sorted order.
func (p *Public) Markers() []string {
	return slices.Sorted(maps.Keys(p.legions))
}

func (p *Public) lookup(marker string) (*Legion, error) {
	l, ok := p.legions[marker]
	if !ok {
		return nil, fmt.Errorf("legion %q: %w", marker, ErrUnknownLegion)
	}
	return l, nil
}

// Merge folds the next event into the view. Heights change for every
// add-creature event; creatures become known only through
// RevealedCreatures. On error the view is unchanged.
func (p *Public) Merge(evt event.Event) error {
	if want := p.lastSeq + 1; evt.Seq() != want {
		return fmt.Errorf("merge seq %d: %w: want %d", evt.Seq(), ErrOutOfOrder, want)
	}
	if err := event.Validate(evt); err != nil {
		return err
	}

	switch evt.Kind() {
	case event.KindRecruit, event.KindAcquire, event.KindEditAdd:
		l, err := p.lookup(evt.LegionID())
		if err != nil {
			return err
		}
		l.Height++
		for _, c := range reveal.Public(evt) {
			l.Known.Add(c)
		}
	case event.KindSummon:
		target, err := p.lookup(evt.LegionID())
		if err != nil {
			return err
		}
		donor, err := p.lookup(evt.DonorID())
		if err != nil {
			return err
		}
		target.Height++
		donor.Height--
		for _, c := range reveal.Public(evt) {
			target.Known.Add(c)
			donor.Known.Remove(c)
		}
		p.pending = append(p.pending, summonRecord{target: target.Marker, donor: donor.Marker, creature: evt.Added()})
	case event.KindUndoSummon:
		target, err := p.lookup(evt.LegionID())
		if err != nil {
			return err
		}
		idx := p.findSummon(target.Marker, evt.Added())
		if idx < 0 {
			return fmt.Errorf("merge seq %d: %w", evt.Seq(), ErrUndoMismatch)
		}
		donor, err := p.lookup(p.pending[idx].donor)
		if err != nil {
			return err
		}
		target.Height--
		donor.Height++
		for _, c := range reveal.Public(evt) {
			target.Known.Remove(c)
			donor.Known.Add(c)
		}
		p.pending = append(p.pending[:idx:idx], p.pending[idx+1:]...)
	case event.KindRelocate:
		l, err := p.lookup(evt.LegionID())
		if err != nil {
			return err
		}
		l.Hex = evt.Destination()
	}
	p.lastSeq = evt.Seq()
	return nil
}

func (p *Public) findSummon(target string, c creature.Type) int {
	for i := len(p.pending) - 1; i >= 0; i-- {
		if p.pending[i].target == target && p.pending[i].creature == c {
			return i
		}
	}
	return -1
}
