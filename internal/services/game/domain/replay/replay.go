// Package replay rebuilds game state from a persisted history.
//
// Replay reads events page by page, checks that sequence numbers are
// contiguous and turns never decrease, validates each event against the
// disclosure table and folds it into the state. Any violation stops the
// replay: a corrupt history is never skipped over.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrCheckpointStoreRequired indicates a missing checkpoint store.
	ErrCheckpointStoreRequired = errors.New("checkpoint store is required")
	// ErrStateRequired indicates a missing starting state.
	ErrStateRequired = errors.New("state is required")
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrCheckpointNotFound indicates no checkpoint exists yet.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	// ErrSequenceGap indicates a missing or repeated sequence number.
	ErrSequenceGap = errors.New("event sequence gap")
)

// EventStore lists events for replay.
type EventStore interface {
	ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// CheckpointStore manages replay checkpoints.
type CheckpointStore interface {
	Get(ctx context.Context, gameID string) (Checkpoint, error)
	Save(ctx context.Context, checkpoint Checkpoint) error
}

// StateStore loads state snapshots saved alongside checkpoints.
type StateStore interface {
	GetState(ctx context.Context, gameID string) (any, uint64, error)
}

// Checkpoint captures the last applied sequence for a game.
type Checkpoint struct {
	GameID  string
	LastSeq uint64
	// LastTurn is the turn of the event at LastSeq when known. Zero is
	// always a safe lower bound.
	LastTurn  int
	UpdatedAt time.Time
}

// Options configures replay behavior.
type Options struct {
	AfterSeq uint64
	// AfterTurn is the turn of the event at AfterSeq, used to check that
	// turns never decrease across the resume point.
	AfterTurn int
	UntilSeq  uint64
	PageSize  int
	// History, when set, receives every replayed event so the caller can
	// resume committing on top of it.
	History *history.Log
}

// Result captures replay outcomes.
type Result struct {
	State    *game.State
	LastSeq  uint64
	LastTurn int
	Applied  int
}

// Replay folds events after the checkpoint into state, saving a checkpoint
// after each one. state must already reflect every event up to the
// checkpoint.
func Replay(ctx context.Context, store EventStore, checkpoints CheckpointStore, gameID string, state *game.State, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrEventStoreRequired
	}
	if checkpoints == nil {
		return Result{}, ErrCheckpointStoreRequired
	}
	if state == nil {
		return Result{}, ErrStateRequired
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return Result{}, ErrGameIDRequired
	}

	lastSeq := options.AfterSeq
	lastTurn := options.AfterTurn
	checkpoint, err := checkpoints.Get(ctx, gameID)
	if err != nil {
		if !errors.Is(err, ErrCheckpointNotFound) {
			return Result{}, err
		}
	} else if checkpoint.LastSeq > lastSeq {
		lastSeq = checkpoint.LastSeq
		lastTurn = checkpoint.LastTurn
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{State: state, LastSeq: lastSeq, LastTurn: lastTurn}
	for {
		events, err := store.ListEvents(ctx, gameID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq() > options.UntilSeq {
				return result, nil
			}
			if err := step(&result, evt, options.History); err != nil {
				return result, err
			}
			if err := checkpoints.Save(ctx, Checkpoint{
				GameID:    gameID,
				LastSeq:   result.LastSeq,
				LastTurn:  result.LastTurn,
				UpdatedAt: time.Now().UTC(),
			}); err != nil {
				return result, err
			}
		}
	}
}

// step checks evt against the replay position and folds it into the state.
func step(result *Result, evt event.Event, log *history.Log) error {
	expectedSeq := result.LastSeq + 1
	if evt.Seq() != expectedSeq {
		return fmt.Errorf("%w: expected %d got %d", ErrSequenceGap, expectedSeq, evt.Seq())
	}
	if evt.Turn() < result.LastTurn {
		return fmt.Errorf("seq %d turn %d after turn %d: %w", evt.Seq(), evt.Turn(), result.LastTurn, history.ErrTurnRegression)
	}
	if err := event.Validate(evt); err != nil {
		return fmt.Errorf("seq %d: %w", evt.Seq(), err)
	}
	if err := result.State.Integrate(evt); err != nil {
		return fmt.Errorf("integrate seq %d: %w", evt.Seq(), err)
	}
	if log != nil {
		if _, err := log.Append(evt); err != nil {
			return fmt.Errorf("restore history seq %d: %w", evt.Seq(), err)
		}
	}
	result.LastSeq = evt.Seq()
	result.LastTurn = evt.Turn()
	result.Applied++
	return nil
}

// Resume starts from the newest saved snapshot when one exists, otherwise
// from base, and replays the remaining events. base is not modified.
func Resume(ctx context.Context, store EventStore, checkpoints CheckpointStore, snapshots StateStore, gameID string, base *game.State, options Options) (Result, error) {
	if checkpoints == nil {
		return Result{}, ErrCheckpointStoreRequired
	}
	if base == nil {
		return Result{}, ErrStateRequired
	}
	state := base.Clone()
	if snapshots != nil && options.History == nil {
		snapshot, seq, err := snapshots.GetState(ctx, gameID)
		switch {
		case err == nil:
			if restored, ok := snapshot.(*game.State); ok && restored != nil && seq > options.AfterSeq {
				state = restored
				options.AfterSeq = seq
				if checkpoint, err := checkpoints.Get(ctx, gameID); err == nil && checkpoint.LastSeq == seq {
					options.AfterTurn = checkpoint.LastTurn
				}
			}
		case !errors.Is(err, ErrCheckpointNotFound):
			return Result{}, err
		}
	}
	return Replay(ctx, store, noCheckpoint{checkpoints}, gameID, state, options)
}

// noCheckpoint forwards saves but hides stored checkpoints, so Resume
// replays from the position it chose rather than from the last checkpoint.
type noCheckpoint struct {
	CheckpointStore
}

func (noCheckpoint) Get(context.Context, string) (Checkpoint, error) {
	return Checkpoint{}, ErrCheckpointNotFound
}
