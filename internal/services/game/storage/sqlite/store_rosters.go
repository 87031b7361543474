package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/cleka/colossus-titan-sub015/internal/platform/errors"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

var (
	// ErrRosterNotFound indicates a game without a stored roster.
	ErrRosterNotFound = apperrors.New(apperrors.CodeRosterNotFound, "roster not found")
	// ErrRosterExists indicates a second roster for the same game.
	ErrRosterExists = errors.New("roster already stored")
	// ErrStateRequired indicates a missing state passed to SaveRoster or
	// SaveState.
	ErrStateRequired = errors.New("state is required")
)

// rosterRecord is the setup of a game before its first event: who plays and
// which legions stand where. The history starts from it.
type rosterRecord struct {
	Players []playerRecord `json:"players"`
	Legions []legionRecord `json:"legions"`
}

type playerRecord struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type legionRecord struct {
	Marker    string   `json:"marker"`
	Owner     string   `json:"owner"`
	Hex       string   `json:"hex,omitempty"`
	Creatures []string `json:"creatures"`
}

func newRosterRecord(state *game.State) rosterRecord {
	var record rosterRecord
	for _, p := range state.Players() {
		record.Players = append(record.Players, playerRecord{Name: p.Name(), Score: p.Score()})
	}
	for _, l := range state.Legions() {
		owner := ""
		if p := l.Owner(); p != nil {
			owner = p.Name()
		}
		record.Legions = append(record.Legions, legionRecord{
			Marker:    l.MarkerID(),
			Owner:     owner,
			Hex:       string(l.Hex()),
			Creatures: creature.Names(expand(l.Creatures())),
		})
	}
	return record
}

func (r rosterRecord) restore() (*game.State, error) {
	state := game.NewState()
	for _, p := range r.Players {
		if _, err := state.AddPlayer(p.Name, p.Score); err != nil {
			return nil, fmt.Errorf("restore roster: %w", err)
		}
	}
	for _, l := range r.Legions {
		creatures, err := creature.ParseNames(l.Creatures)
		if err != nil {
			return nil, fmt.Errorf("restore legion %s: %w", l.Marker, err)
		}
		if _, err := state.AddLegion(l.Marker, l.Owner, legion.HexLabel(l.Hex), creatures...); err != nil {
			return nil, fmt.Errorf("restore roster: %w", err)
		}
	}
	return state, nil
}

// SaveRoster stores the setup of a game. A game has exactly one roster.
func (s *Store) SaveRoster(ctx context.Context, gameID string, state *game.State) error {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrStateRequired
	}

	record := newRosterRecord(state)
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO rosters (game_id, roster_json, created_at) VALUES (?, ?, ?)`,
		gameID, payload, toMillis(s.now()),
	); err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("game %s: %w", gameID, ErrRosterExists)
		}
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}

// expand lists every creature of the bag, repeating types by their count.
func expand(bag creature.Multiset) []creature.Type {
	var out []creature.Type
	for _, t := range bag.Types() {
		for range bag.Count(t) {
			out = append(out, t)
		}
	}
	return out
}

// LoadRoster rebuilds the setup state of a game.
func (s *Store) LoadRoster(ctx context.Context, gameID string) (*game.State, error) {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT roster_json FROM rosters WHERE game_id = ?`, gameID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrRosterNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	var record rosterRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return record.restore()
}

// Games lists the ids of every game with a stored roster.
func (s *Store) Games(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, ErrStoreNotConfigured
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT game_id FROM rosters ORDER BY created_at, game_id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read games: %w", err)
	}
	return ids, nil
}
