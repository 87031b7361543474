package view

import (
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
)

// Resequencer buffers events delivered out of order and releases them
// strictly by sequence number.
type Resequencer struct {
	released uint64
	lastTurn int
	buffered map[uint64]event.Event
}

// NewResequencer starts releasing after afterSeq, whose event had
// afterTurn.
func NewResequencer(afterSeq uint64, afterTurn int) *Resequencer {
	return &Resequencer{
		released: afterSeq,
		lastTurn: afterTurn,
		buffered: make(map[uint64]event.Event),
	}
}

// Push accepts one delivery and returns the events that are now ready, in
// order. Redeliveries of released or buffered events are dropped.
func (r *Resequencer) Push(evt event.Event) ([]event.Event, error) {
	seq := evt.Seq()
	if seq == 0 {
		return nil, fmt.Errorf("push: %w: event without seq", ErrOutOfOrder)
	}
	if seq <= r.released {
		return nil, nil
	}
	if _, ok := r.buffered[seq]; ok {
		return nil, nil
	}
	r.buffered[seq] = evt

	var ready []event.Event
	for {
		next, ok := r.buffered[r.released+1]
		if !ok {
			return ready, nil
		}
		if next.Turn() < r.lastTurn {
			return ready, fmt.Errorf("release seq %d turn %d after turn %d: %w",
				next.Seq(), next.Turn(), r.lastTurn, history.ErrTurnRegression)
		}
		delete(r.buffered, next.Seq())
		r.released = next.Seq()
		r.lastTurn = next.Turn()
		ready = append(ready, next)
	}
}

// Released returns the highest sequence number released so far.
func (r *Resequencer) Released() uint64 {
	return r.released
}

// Buffered returns how many events are waiting for a gap to fill.
func (r *Resequencer) Buffered() int {
	return len(r.buffered)
}

// Missing returns the sequence numbers between the last released event and
// the highest buffered one, for a catch-up request.
func (r *Resequencer) Missing() []uint64 {
	var highest uint64
	for seq := range r.buffered {
		highest = max(highest, seq)
	}
	var missing []uint64
	for seq := r.released + 1; seq < highest; seq++ {
		if _, ok := r.buffered[seq]; !ok {
			missing = append(missing, seq)
		}
	}
	return missing
}
