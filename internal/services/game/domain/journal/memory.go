// Package journal provides an in-memory event journal for tests and
// single-process games that do not need durable storage.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
)

// ErrGameIDRequired indicates a missing game id.
var ErrGameIDRequired = errors.New("game id is required")

type entry struct {
	evt       event.Event
	chainHash string
}

// Memory keeps the events of many games in append order and links each one
// to its predecessor by chain hash.
type Memory struct {
	mu    sync.Mutex
	games map[string][]entry
}

// NewMemory creates an empty journal.
func NewMemory() *Memory {
	return &Memory{games: make(map[string][]entry)}
}

// AppendEvent stores evt as the next event of the game and returns it with
// its sequence number. A non-zero seq must be the next one.
func (m *Memory) AppendEvent(ctx context.Context, gameID string, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return event.Event{}, ErrGameIDRequired
	}
	if err := event.Validate(evt); err != nil {
		return event.Event{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.games[gameID]
	next := uint64(len(entries)) + 1
	prevHash := ""
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		if evt.Turn() < last.evt.Turn() {
			return event.Event{}, fmt.Errorf("turn %d after turn %d: %w", evt.Turn(), last.evt.Turn(), history.ErrTurnRegression)
		}
		prevHash = last.chainHash
	}
	if evt.Seq() != 0 && evt.Seq() != next {
		return event.Event{}, fmt.Errorf("seq %d, next is %d: %w", evt.Seq(), next, history.ErrSeqConflict)
	}
	evt = evt.WithSeq(next)

	chainHash, err := event.ChainHash(evt, prevHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute chain hash: %w", err)
	}
	m.games[gameID] = append(entries, entry{evt: evt, chainHash: chainHash})
	return evt, nil
}

// ListEvents returns up to limit events after afterSeq. A limit of zero or
// less lists all remaining events.
func (m *Memory) ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.games[gameID]
	if afterSeq >= uint64(len(entries)) {
		return nil, nil
	}
	entries = entries[afterSeq:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]event.Event, len(entries))
	for i, e := range entries {
		out[i] = e.evt
	}
	return out, nil
}

// ChainHead returns the chain hash of the newest event of the game, or ""
// before the first event.
func (m *Memory) ChainHead(gameID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.games[strings.TrimSpace(gameID)]
	if len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1].chainHash
}
