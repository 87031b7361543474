package event

import (
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/reveal"
)

// Validate checks e against the variant table: known kind, the reason fixed
// for that kind, and the payload each kind requires. Failures wrap
// ErrCorrupt.
func Validate(e Event) error {
	if !e.kind.Valid() {
		return fmt.Errorf("%w: kind %q: %w", ErrCorrupt, string(e.kind), ErrUnknownKind)
	}
	if e.turn < 0 {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, e.kind, ErrTurnNegative)
	}

	if e.kind == KindRelocate {
		if e.reason != "" || !e.added.IsZero() {
			return fmt.Errorf("%w: relocate carries a creature", ErrCorrupt)
		}
		if e.legionID == "" {
			return fmt.Errorf("%w: relocate: %w", ErrCorrupt, ErrLegionRequired)
		}
		if e.destination == "" {
			return fmt.Errorf("%w: relocate: %w", ErrCorrupt, ErrHexRequired)
		}
		return nil
	}

	want, _ := e.kind.Reason()
	if e.reason != want {
		return fmt.Errorf("%w: %s event tagged %q, want %q", ErrCorrupt, e.kind, string(e.reason), string(want))
	}
	if _, err := reveal.Disclose(e.reason, e.added); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, e.kind, err)
	}
	if e.destination != "" {
		return fmt.Errorf("%w: %s carries a destination", ErrCorrupt, e.kind)
	}
	switch e.kind {
	case KindRecruit:
		if e.recruiter.IsZero() {
			return fmt.Errorf("%w: recruit: %w", ErrCorrupt, ErrRecruiterRequired)
		}
	case KindSummon:
		if e.donorID == "" {
			return fmt.Errorf("%w: summon: %w", ErrCorrupt, ErrDonorRequired)
		}
		if e.donorID == e.legionID {
			return fmt.Errorf("%w: summon donor %q is the target", ErrCorrupt, e.donorID)
		}
	}
	if e.kind != KindRecruit && !e.recruiter.IsZero() {
		return fmt.Errorf("%w: %s carries a recruiter", ErrCorrupt, e.kind)
	}
	if e.kind != KindSummon && e.donorID != "" {
		return fmt.Errorf("%w: %s carries a donor", ErrCorrupt, e.kind)
	}
	if e.kind != KindSummon && e.legionID == "" {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, e.kind, ErrLegionRequired)
	}
	return nil
}
