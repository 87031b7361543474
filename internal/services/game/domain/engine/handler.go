package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

const tracerName = "github.com/cleka/colossus-titan-sub015/engine"

var (
	// ErrStateRequired indicates a missing game state.
	ErrStateRequired = errors.New("game state is required")
	// ErrHistoryRequired indicates a missing history log.
	ErrHistoryRequired = errors.New("history is required")
)

// EventJournal persists committed events.
type EventJournal interface {
	AppendEvent(ctx context.Context, gameID string, evt event.Event) (event.Event, error)
}

// SnapshotStore saves state snapshots for faster replay.
type SnapshotStore interface {
	SaveState(ctx context.Context, gameID string, lastSeq uint64, state any) error
}

// Listener observes committed events in commit order.
type Listener func(evt event.Event)

// Option configures a Handler.
type Option func(*Handler)

// WithJournal persists every committed event before it is published.
func WithJournal(journal EventJournal) Option {
	return func(h *Handler) { h.journal = journal }
}

// WithSnapshots saves a state snapshot every n committed events.
func WithSnapshots(store SnapshotStore, every uint64) Option {
	return func(h *Handler) {
		h.snapshots = store
		h.snapshotEvery = every
	}
}

// WithListener registers a commit listener.
func WithListener(fn Listener) Option {
	return func(h *Handler) {
		if fn != nil {
			h.listeners = append(h.listeners, fn)
		}
	}
}

// WithTurn sets the starting turn, e.g. when resuming a saved game.
func WithTurn(turn int) Option {
	return func(h *Handler) { h.turn = turn }
}

// WithTracer overrides the tracer used for commit spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(h *Handler) { h.tracer = tracer }
}

// Handler commits actions for one game.
type Handler struct {
	mu sync.Mutex

	state         *game.State
	history       *history.Log
	journal       EventJournal
	snapshots     SnapshotStore
	snapshotEvery uint64
	listeners     []Listener
	turn          int
	tracer        trace.Tracer
}

// NewHandler builds a handler over state and its history. The history may
// already hold events the state absorbed, as after a replay; the starting
// turn then defaults to the last recorded turn.
func NewHandler(state *game.State, hist *history.Log, opts ...Option) (*Handler, error) {
	if state == nil {
		return nil, ErrStateRequired
	}
	if hist == nil {
		return nil, ErrHistoryRequired
	}
	h := &Handler{
		state:   state,
		history: hist,
		turn:    hist.LastTurn(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.turn < 0 {
		return nil, event.ErrTurnNegative
	}
	if h.turn < hist.LastTurn() {
		return nil, fmt.Errorf("start turn %d: %w", h.turn, history.ErrTurnRegression)
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer(tracerName)
	}
	return h, nil
}

// GameID returns the id of the game.
func (h *Handler) GameID() string {
	return h.history.GameID()
}

// History returns the append-only log. Readers may use it concurrently with
// commits.
func (h *Handler) History() *history.Log {
	return h.history
}

// Turn returns the current turn.
func (h *Handler) Turn() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.turn
}

// AdvanceTurn moves to the next turn and returns it.
func (h *Handler) AdvanceTurn() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turn++
	return h.turn
}

// Snapshot returns a copy of the current state.
func (h *Handler) Snapshot() *game.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Clone()
}

// Read calls fn with the live state while holding the commit lock. fn must
// not retain the state or mutate it.
func (h *Handler) Read(fn func(*game.State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.state)
}

// Commit applies act and returns the event it appended to history.
func (h *Handler) Commit(ctx context.Context, act action.Action) (event.Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, span := h.tracer.Start(ctx, "engine.Commit", trace.WithAttributes(
		attribute.String("game.id", h.history.GameID()),
		attribute.Int("game.turn", h.turn),
	))
	defer span.End()

	evt, err := h.commit(ctx, act)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("commit game=%s turn=%d: %v", h.history.GameID(), h.turn, err)
		return event.Event{}, err
	}
	span.SetAttributes(
		attribute.String("event.kind", string(evt.Kind())),
		attribute.Int64("event.seq", int64(evt.Seq())),
		attribute.String("event.legion", evt.LegionID()),
	)
	return evt, nil
}

func (h *Handler) commit(ctx context.Context, act action.Action) (event.Event, error) {
	if act == nil {
		return event.Event{}, coded("commit", nil, game.ErrActionRequired)
	}
	metadata := map[string]string{
		"kind":   string(act.Kind()),
		"turn":   strconv.Itoa(h.turn),
		"legion": markerOf(act),
	}

	evt, err := event.Record(h.turn, act)
	if err != nil {
		return event.Event{}, coded("record event", metadata, err)
	}
	if err := event.Validate(evt); err != nil {
		return event.Event{}, coded("validate event", metadata, err)
	}

	// Dry run on a copy so a rejected action never reaches the journal.
	if err := h.state.Clone().Apply(act); err != nil {
		return event.Event{}, coded("apply action", metadata, err)
	}

	evt = evt.WithSeq(h.history.LastSeq() + 1)
	if h.journal != nil {
		stored, err := h.journal.AppendEvent(ctx, h.history.GameID(), evt)
		if err != nil {
			return event.Event{}, coded("append journal", metadata, err)
		}
		evt = stored
	}

	if err := h.state.Apply(act); err != nil {
		return event.Event{}, wrapNonRetryable(coded("apply action after journal", metadata, err))
	}
	appended, err := h.history.Append(evt)
	if err != nil {
		return event.Event{}, wrapNonRetryable(coded("append history", metadata, err))
	}

	if h.snapshots != nil && h.snapshotEvery > 0 && appended.Seq()%h.snapshotEvery == 0 {
		if err := h.snapshots.SaveState(ctx, h.history.GameID(), appended.Seq(), h.state.Clone()); err != nil {
			log.Printf("save snapshot game=%s seq=%d: %v", h.history.GameID(), appended.Seq(), err)
		}
	}
	for _, fn := range h.listeners {
		fn(appended)
	}
	return appended, nil
}

func markerOf(act action.Action) string {
	if s, ok := act.(action.Summoning); ok {
		return fmt.Sprintf("%s<-%s", legion.MarkerOf(s.Target()), legion.MarkerOf(s.Donor()))
	}
	return legion.MarkerOf(act.Legion())
}
