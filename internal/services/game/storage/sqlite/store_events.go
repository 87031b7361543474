package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/storage/integrity"
)

// AppendEvent stores evt as the next event of the game and returns it with
// its sequence number. A non-zero seq must be the next one.
func (s *Store) AppendEvent(ctx context.Context, gameID string, evt event.Event) (stored event.Event, err error) {
	gameID, err = s.begin(ctx, gameID)
	if err != nil {
		return event.Event{}, err
	}

	ctx, span := s.tracer.Start(ctx, "sqlite.AppendEvent", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("event.kind", string(evt.Kind())),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int64("event.seq", int64(stored.Seq())))
		}
		span.End()
	}()

	if err := event.Validate(evt); err != nil {
		return event.Event{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		lastSeq   uint64
		lastTurn  int
		prevChain string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT seq, turn, chain_hash FROM events WHERE game_id = ? ORDER BY seq DESC LIMIT 1`,
		gameID,
	).Scan(&lastSeq, &lastTurn, &prevChain)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, fmt.Errorf("load last event: %w", err)
	}

	next := lastSeq + 1
	if evt.Seq() != 0 && evt.Seq() != next {
		return event.Event{}, fmt.Errorf("seq %d, next is %d: %w", evt.Seq(), next, history.ErrSeqConflict)
	}
	if evt.Turn() < lastTurn {
		return event.Event{}, fmt.Errorf("turn %d after turn %d: %w", evt.Turn(), lastTurn, history.ErrTurnRegression)
	}
	evt = evt.WithSeq(next)

	link, err := s.keyring.Seal(gameID, evt, prevChain)
	if err != nil {
		return event.Event{}, err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("marshal envelope: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO events (
    game_id, seq, turn, kind, envelope_json,
    event_hash, prev_chain_hash, chain_hash, signature_key_id, signature, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, int64(next), evt.Turn(), string(evt.Kind()), payload,
		link.EventHash, link.PrevHash, link.ChainHash, link.SignatureKeyID, link.Signature,
		toMillis(s.now()),
	); err != nil {
		if isConstraintError(err) {
			return event.Event{}, fmt.Errorf("append seq %d: %w", next, history.ErrSeqConflict)
		}
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit: %w", err)
	}
	return evt, nil
}

type eventRow struct {
	seq     uint64
	payload []byte
	link    integrity.Link
}

func (r eventRow) decode() (event.Event, error) {
	var evt event.Event
	if err := json.Unmarshal(r.payload, &evt); err != nil {
		return event.Event{}, fmt.Errorf("decode seq %d: %w", r.seq, err)
	}
	if evt.Seq() != r.seq {
		return event.Event{}, fmt.Errorf("seq %d stored as %d: %w", evt.Seq(), r.seq, event.ErrCorrupt)
	}
	return evt, nil
}

const listEventsSQL = `SELECT seq, envelope_json, event_hash, prev_chain_hash, chain_hash, signature_key_id, signature
FROM events WHERE game_id = ? AND seq > ? ORDER BY seq LIMIT ?`

func (s *Store) listRows(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]eventRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx, listEventsSQL, gameID, int64(afterSeq), limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []eventRow
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(
			&row.seq, &row.payload,
			&row.link.EventHash, &row.link.PrevHash, &row.link.ChainHash,
			&row.link.SignatureKeyID, &row.link.Signature,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return out, nil
}

// ListEvents returns up to limit events after afterSeq in sequence order.
// Every event is decoded against the disclosure table and its signed hash is
// verified; a limit of zero or less lists all remaining events.
func (s *Store) ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error) {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rows, err := s.listRows(ctx, gameID, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		evt, err := row.decode()
		if err != nil {
			return nil, err
		}
		if err := s.keyring.Check(gameID, evt, row.link); err != nil {
			return nil, fmt.Errorf("seq %d: %w: %v", row.seq, ErrChainBroken, err)
		}
		events = append(events, evt)
	}
	return events, nil
}

// VerifyChain walks the whole journal of a game and checks that sequence
// numbers are contiguous, every event is intact and each link names the
// chain hash of its predecessor. It returns the number of events verified.
func (s *Store) VerifyChain(ctx context.Context, gameID string) (int, error) {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return 0, err
	}
	rows, err := s.listRows(ctx, gameID, 0, 0)
	if err != nil {
		return 0, err
	}

	prevChain := ""
	for i, row := range rows {
		if row.seq != uint64(i+1) {
			return i, fmt.Errorf("expected seq %d got %d: %w", i+1, row.seq, ErrChainBroken)
		}
		if row.link.PrevHash != prevChain {
			return i, fmt.Errorf("seq %d does not link to its predecessor: %w", row.seq, ErrChainBroken)
		}
		evt, err := row.decode()
		if err != nil {
			return i, err
		}
		if err := s.keyring.Check(gameID, evt, row.link); err != nil {
			return i, fmt.Errorf("seq %d: %w: %v", row.seq, ErrChainBroken, err)
		}
		prevChain = row.link.ChainHash
	}
	return len(rows), nil
}

// LastSeq returns the sequence number of the newest stored event, or zero.
func (s *Store) LastSeq(ctx context.Context, gameID string) (uint64, error) {
	gameID, err := s.begin(ctx, gameID)
	if err != nil {
		return 0, err
	}
	var seq sql.NullInt64
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM events WHERE game_id = ?`, gameID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return uint64(seq.Int64), nil
}
