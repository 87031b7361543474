package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/replay"
)

// Get returns the replay checkpoint of a game.
func (s *Store) Get(ctx context.Context, gameID string) (replay.Checkpoint, error) {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return replay.Checkpoint{}, err
	}

	var (
		checkpoint = replay.Checkpoint{GameID: gameID}
		lastSeq    int64
		updatedAt  int64
	)
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT last_seq, last_turn, updated_at FROM checkpoints WHERE game_id = ?`, gameID,
	).Scan(&lastSeq, &checkpoint.LastTurn, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return replay.Checkpoint{}, replay.ErrCheckpointNotFound
	}
	if err != nil {
		return replay.Checkpoint{}, fmt.Errorf("get checkpoint: %w", err)
	}
	checkpoint.LastSeq = uint64(lastSeq)
	checkpoint.UpdatedAt = fromMillis(updatedAt)
	return checkpoint, nil
}

// Save stores the replay checkpoint of a game, replacing the previous one.
func (s *Store) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	gameID, err := s.begin(ctx, checkpoint.GameID)
	if err != nil {
		return err
	}
	updatedAt := checkpoint.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	if _, err := s.sqlDB.ExecContext(ctx, `INSERT INTO checkpoints (game_id, last_seq, last_turn, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (game_id) DO UPDATE SET
    last_seq = excluded.last_seq,
    last_turn = excluded.last_turn,
    updated_at = excluded.updated_at`,
		gameID, int64(checkpoint.LastSeq), checkpoint.LastTurn, toMillis(updatedAt),
	); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
