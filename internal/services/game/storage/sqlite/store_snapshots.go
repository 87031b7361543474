package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/replay"
)

// snapshotRecord is a full game state after some event: the board, the
// summons that may still be undone and each player's score at their last
// recruit.
type snapshotRecord struct {
	Board   rosterRecord    `json:"board"`
	Pending []pendingRecord `json:"pending,omitempty"`
	Marks   []markRecord    `json:"marks,omitempty"`
}

type pendingRecord struct {
	Target   string `json:"target"`
	Donor    string `json:"donor"`
	Creature string `json:"creature"`
}

type markRecord struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// SaveState stores a state snapshot taken after lastSeq, replacing the
// previous snapshot of the game.
func (s *Store) SaveState(ctx context.Context, gameID string, lastSeq uint64, state any) error {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return err
	}
	snapshot, ok := state.(*game.State)
	if !ok || snapshot == nil {
		return ErrStateRequired
	}

	record := snapshotRecord{Board: newRosterRecord(snapshot)}
	for _, p := range snapshot.Pending() {
		record.Pending = append(record.Pending, pendingRecord{
			Target:   p.Target,
			Donor:    p.Donor,
			Creature: p.Creature.Name(),
		})
	}
	for _, p := range snapshot.Players() {
		if score, ok := snapshot.Context().Scores.Marked(p.Name()); ok {
			record.Marks = append(record.Marks, markRecord{Player: p.Name(), Score: score})
		}
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if _, err := s.sqlDB.ExecContext(ctx, `INSERT INTO snapshots (game_id, last_seq, state_json, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (game_id) DO UPDATE SET
    last_seq = excluded.last_seq,
    state_json = excluded.state_json,
    updated_at = excluded.updated_at`,
		gameID, int64(lastSeq), payload, toMillis(s.now()),
	); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// GetState returns the newest snapshot of a game as a *game.State and the
// sequence it was taken after. A game without a snapshot reports
// replay.ErrCheckpointNotFound.
func (s *Store) GetState(ctx context.Context, gameID string) (any, uint64, error) {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return nil, 0, err
	}

	var (
		lastSeq int64
		payload []byte
	)
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT last_seq, state_json FROM snapshots WHERE game_id = ?`, gameID,
	).Scan(&lastSeq, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, replay.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get snapshot: %w", err)
	}

	var record snapshotRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	state, err := record.Board.restore()
	if err != nil {
		return nil, 0, err
	}
	for _, p := range record.Pending {
		t, err := creature.New(p.Creature)
		if err != nil {
			return nil, 0, fmt.Errorf("restore pending summon: %w", err)
		}
		if err := state.AddPending(game.PendingSummon{Target: p.Target, Donor: p.Donor, Creature: t}); err != nil {
			return nil, 0, fmt.Errorf("restore snapshot: %w", err)
		}
	}
	for _, m := range record.Marks {
		state.Context().Scores.MarkRecruit(m.Player, m.Score)
	}
	return state, uint64(lastSeq), nil
}
