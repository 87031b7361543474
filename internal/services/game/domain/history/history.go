// Package history holds the append-only, totally ordered event log of one
// game.
//
// A Log has a single writer and any number of readers. Appends copy the
// published slice and swap it atomically, so a reader holding a snapshot
// never sees a partially appended event.
package history

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
)

var (
	// ErrTurnRegression indicates an event whose turn is lower than the
	// turn of the event before it.
	ErrTurnRegression = errors.New("turn regression")
	// ErrSeqConflict indicates an event carrying a sequence number other
	// than the next one.
	ErrSeqConflict = errors.New("sequence conflict")
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrUnknownGame indicates a read for a game this log does not hold.
	ErrUnknownGame = errors.New("unknown game")
)

// Log is the in-memory event history of one game.
type Log struct {
	gameID string

	mu     sync.Mutex
	events atomic.Pointer[[]event.Event]
}

// New creates an empty log for gameID.
func New(gameID string) (*Log, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, ErrGameIDRequired
	}
	l := &Log{gameID: gameID}
	empty := []event.Event{}
	l.events.Store(&empty)
	return l, nil
}

// GameID returns the game the log belongs to.
func (l *Log) GameID() string {
	return l.gameID
}

func (l *Log) load() []event.Event {
	if p := l.events.Load(); p != nil {
		return *p
	}
	return nil
}

// Append stamps evt with the next sequence number and publishes it.
//
// An event that already carries a sequence number must carry exactly the
// next one. Events are never edited or removed once appended.
func (l *Log) Append(evt event.Event) (event.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.load()
	next := uint64(len(current)) + 1
	if evt.Seq() != 0 && evt.Seq() != next {
		return event.Event{}, fmt.Errorf("append seq %d: %w: want %d", evt.Seq(), ErrSeqConflict, next)
	}
	if err := event.Validate(evt); err != nil {
		return event.Event{}, err
	}
	if n := len(current); n > 0 && evt.Turn() < current[n-1].Turn() {
		return event.Event{}, fmt.Errorf("append turn %d after turn %d: %w", evt.Turn(), current[n-1].Turn(), ErrTurnRegression)
	}

	stamped := evt.WithSeq(next)
	grown := make([]event.Event, len(current), len(current)+1)
	copy(grown, current)
	grown = append(grown, stamped)
	l.events.Store(&grown)
	return stamped, nil
}

// Restore appends previously persisted events, checking order as Append
// does. It stops at the first bad event and keeps what was appended before.
func (l *Log) Restore(events []event.Event) error {
	for _, evt := range events {
		if evt.Seq() == 0 {
			return fmt.Errorf("restore: %w: event without seq", ErrSeqConflict)
		}
		if _, err := l.Append(evt); err != nil {
			return fmt.Errorf("restore seq %d: %w", evt.Seq(), err)
		}
	}
	return nil
}

// Len returns the number of appended events.
func (l *Log) Len() int {
	return len(l.load())
}

// LastSeq returns the sequence number of the newest event, or 0.
func (l *Log) LastSeq() uint64 {
	return uint64(len(l.load()))
}

// LastTurn returns the turn of the newest event, or 0 when the log is empty.
func (l *Log) LastTurn() int {
	current := l.load()
	if len(current) == 0 {
		return 0
	}
	return current[len(current)-1].Turn()
}

// Snapshot returns a copy of every event in commit order.
func (l *Log) Snapshot() []event.Event {
	current := l.load()
	out := make([]event.Event, len(current))
	copy(out, current)
	return out
}

// All iterates the events published at the time of the call.
func (l *Log) All() iter.Seq[event.Event] {
	current := l.load()
	return func(yield func(event.Event) bool) {
		for _, evt := range current {
			if !yield(evt) {
				return
			}
		}
	}
}

// Since returns the events with a sequence number greater than afterSeq.
func (l *Log) Since(afterSeq uint64) []event.Event {
	current := l.load()
	if afterSeq >= uint64(len(current)) {
		return []event.Event{}
	}
	out := make([]event.Event, uint64(len(current))-afterSeq)
	copy(out, current[afterSeq:])
	return out
}

// ListEvents returns up to limit events after afterSeq. A limit of zero or
// less returns every remaining event.
func (l *Log) ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(gameID) != l.gameID {
		return nil, fmt.Errorf("list events for %q: %w", gameID, ErrUnknownGame)
	}
	events := l.Since(afterSeq)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
