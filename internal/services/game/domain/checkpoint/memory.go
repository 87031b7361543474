// Package checkpoint stores replay positions and state snapshots.
package checkpoint

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/replay"
)

var (
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrStoreRequired indicates a nil store.
	ErrStoreRequired = errors.New("checkpoint store is required")
)

// Memory stores checkpoints in memory.
type Memory struct {
	mu          sync.Mutex
	checkpoints map[string]replay.Checkpoint
	states      map[string]*game.State
}

// NewMemory creates a new in-memory checkpoint store.
func NewMemory() *Memory {
	return &Memory{
		checkpoints: make(map[string]replay.Checkpoint),
		states:      make(map[string]*game.State),
	}
}

func (m *Memory) begin(ctx context.Context, gameID string) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	if m == nil {
		return "", ErrStoreRequired
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return "", ErrGameIDRequired
	}
	return gameID, nil
}

// Get retrieves a checkpoint by game id.
func (m *Memory) Get(ctx context.Context, gameID string) (replay.Checkpoint, error) {
	gameID, err := m.begin(ctx, gameID)
	if err != nil {
		return replay.Checkpoint{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint, ok := m.checkpoints[gameID]
	if !ok {
		return replay.Checkpoint{}, replay.ErrCheckpointNotFound
	}
	return checkpoint, nil
}

// Save persists a checkpoint.
func (m *Memory) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	gameID, err := m.begin(ctx, checkpoint.GameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint.GameID = gameID
	m.checkpoints[gameID] = checkpoint
	return nil
}

// GetState retrieves a copy of the latest state snapshot and its sequence.
func (m *Memory) GetState(ctx context.Context, gameID string) (any, uint64, error) {
	gameID, err := m.begin(ctx, gameID)
	if err != nil {
		return nil, 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.states[gameID]
	if !ok {
		return nil, 0, replay.ErrCheckpointNotFound
	}
	checkpoint, ok := m.checkpoints[gameID]
	if !ok {
		return nil, 0, replay.ErrCheckpointNotFound
	}
	return snapshot.Clone(), checkpoint.LastSeq, nil
}

// SaveState persists a copy of a *game.State snapshot taken at lastSeq.
// Other state types are ignored.
func (m *Memory) SaveState(ctx context.Context, gameID string, lastSeq uint64, state any) error {
	gameID, err := m.begin(ctx, gameID)
	if err != nil {
		return err
	}
	snapshot, ok := state.(*game.State)
	if !ok || snapshot == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint := replay.Checkpoint{
		GameID:    gameID,
		LastSeq:   lastSeq,
		UpdatedAt: time.Now().UTC(),
	}
	if previous, ok := m.checkpoints[gameID]; ok && previous.LastSeq == lastSeq {
		checkpoint.LastTurn = previous.LastTurn
	}
	m.states[gameID] = snapshot.Clone()
	m.checkpoints[gameID] = checkpoint
	return nil
}
