package engine

import (
	"context"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/cleka/colossus-titan-sub015/internal/platform/errors"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
)

var (
	titan   = creature.MustNew("Titan")
	centaur = creature.MustNew("Centaur")
	ogre    = creature.MustNew("Ogre")
	troll   = creature.MustNew("Troll")
	angel   = creature.MustNew("Angel")
)

type fakeJournal struct {
	events []event.Event
	err    error
}

func (j *fakeJournal) AppendEvent(_ context.Context, gameID string, evt event.Event) (event.Event, error) {
	if j.err != nil {
		return event.Event{}, j.err
	}
	j.events = append(j.events, evt)
	return evt, nil
}

type fakeSnapshots struct {
	seqs []uint64
}

func (s *fakeSnapshots) SaveState(_ context.Context, _ string, lastSeq uint64, _ any) error {
	s.seqs = append(s.seqs, lastSeq)
	return nil
}

type fixture struct {
	handler *Handler
	state   *game.State
	rd01    *game.Legion
	rd02    *game.Legion
	bu01    *game.Legion
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	state := game.NewState()
	for _, name := range []string{"Alice", "Bob"} {
		if _, err := state.AddPlayer(name, 0); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	rd01, _ := state.AddLegion("Rd01", "Alice", "A1", titan, centaur, centaur)
	rd02, _ := state.AddLegion("Rd02", "Bob", "A2", troll, angel)
	bu01, _ := state.AddLegion("Bu01", "Bob", "A3", titan)

	hist, err := history.New("game-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	h, err := NewHandler(state, hist, opts...)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return fixture{handler: h, state: state, rd01: rd01, rd02: rd02, bu01: bu01}
}

func TestNewHandlerRequiresDependencies(t *testing.T) {
	hist, _ := history.New("game-1")
	if _, err := NewHandler(nil, hist); !errors.Is(err, ErrStateRequired) {
		t.Fatalf("err = %v, want %v", err, ErrStateRequired)
	}
	if _, err := NewHandler(game.NewState(), nil); !errors.Is(err, ErrHistoryRequired) {
		t.Fatalf("err = %v, want %v", err, ErrHistoryRequired)
	}
	if _, err := NewHandler(game.NewState(), hist, WithTurn(-1)); !errors.Is(err, event.ErrTurnNegative) {
		t.Fatalf("err = %v, want %v", err, event.ErrTurnNegative)
	}
}

func TestCommitRecruitAtTurnFive(t *testing.T) {
	f := newFixture(t, WithTurn(5))
	recruit, _ := action.NewRecruitment(f.rd01, ogre, centaur)

	evt, err := f.handler.Commit(context.Background(), recruit)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if evt.Seq() != 1 || evt.Turn() != 5 {
		t.Fatalf("seq/turn = %d/%d, want 1/5", evt.Seq(), evt.Turn())
	}
	player, ok := evt.Player()
	if !ok || player.Name() != "Alice" {
		t.Fatalf("player = %q, want Alice", player.Name())
	}
	if len(evt.RevealedCreatures()) != 0 {
		t.Fatalf("revealed = %v, want none", evt.RevealedCreatures())
	}
	if f.rd01.Height() != 4 {
		t.Fatalf("height = %d, want 4", f.rd01.Height())
	}
	if f.handler.History().Len() != 1 {
		t.Fatalf("history len = %d, want 1", f.handler.History().Len())
	}
}

func TestCommitSummonAtTurnSeven(t *testing.T) {
	f := newFixture(t, WithTurn(7))
	summon, _ := action.NewSummoning(f.bu01, f.rd02, troll)

	evt, err := f.handler.Commit(context.Background(), summon)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	player, _ := evt.Player()
	if player.Name() != "Bob" {
		t.Fatalf("player = %q, want Bob", player.Name())
	}
	revealed := evt.RevealedCreatures()
	if len(revealed) != 1 || revealed[0] != troll {
		t.Fatalf("revealed = %v, want [Troll]", revealed)
	}
	if f.bu01.Height() != 2 || f.rd02.Height() != 1 {
		t.Fatalf("heights = %d/%d, want 2/1", f.bu01.Height(), f.rd02.Height())
	}
}

func TestCommitRejectedActionLeavesStateUntouched(t *testing.T) {
	journal := &fakeJournal{}
	f := newFixture(t, WithJournal(journal))
	before := f.handler.Snapshot()

	undo, _ := action.NewSummonUndo(f.rd01, angel)
	_, err := f.handler.Commit(context.Background(), undo)
	if !errors.Is(err, game.ErrUndoMismatch) {
		t.Fatalf("err = %v, want %v", err, game.ErrUndoMismatch)
	}
	if apperrors.CodeOf(err) != apperrors.CodeUndoMismatch {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeUndoMismatch)
	}
	if f.handler.History().Len() != 0 || len(journal.events) != 0 {
		t.Fatalf("history/journal = %d/%d, want 0/0", f.handler.History().Len(), len(journal.events))
	}
	if !f.handler.Snapshot().Equal(before) {
		t.Fatal("state changed after rejected commit")
	}
}

func TestCommitJournalFailureLeavesStateUntouched(t *testing.T) {
	journal := &fakeJournal{err: errors.New("disk full")}
	f := newFixture(t, WithJournal(journal))

	acquire, _ := action.NewAcquisition(f.rd01, angel)
	if _, err := f.handler.Commit(context.Background(), acquire); err == nil {
		t.Fatal("expected journal error")
	}
	if f.rd01.Height() != 3 {
		t.Fatalf("height = %d, want 3", f.rd01.Height())
	}
	if f.handler.History().Len() != 0 {
		t.Fatalf("history len = %d, want 0", f.handler.History().Len())
	}
}

func TestCommitWritesJournalBeforeListeners(t *testing.T) {
	journal := &fakeJournal{}
	var seen []uint64
	f := newFixture(t, WithJournal(journal), WithListener(func(evt event.Event) {
		seen = append(seen, evt.Seq())
		if len(journal.events) < int(evt.Seq()) {
			t.Errorf("listener saw seq %d before journal", evt.Seq())
		}
	}))

	summon, _ := action.NewSummoning(f.bu01, f.rd02, angel)
	undo, _ := action.NewSummonUndo(f.bu01, angel)
	for _, act := range []action.Action{summon, undo} {
		if _, err := f.handler.Commit(context.Background(), act); err != nil {
			t.Fatalf("commit %s: %v", act.Kind(), err)
		}
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("listener seqs = %v, want [1 2]", seen)
	}
	if journal.events[1].Kind() != event.KindUndoSummon {
		t.Fatalf("journal kind = %s, want %s", journal.events[1].Kind(), event.KindUndoSummon)
	}
	if f.bu01.Height() != 1 || f.rd02.Height() != 2 {
		t.Fatalf("heights = %d/%d, want 1/2", f.bu01.Height(), f.rd02.Height())
	}
}

func TestAdvanceTurnStampsLaterEvents(t *testing.T) {
	f := newFixture(t)
	acquire, _ := action.NewAcquisition(f.rd01, angel)

	first, err := f.handler.Commit(context.Background(), acquire)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := f.handler.AdvanceTurn(); got != 1 {
		t.Fatalf("advance = %d, want 1", got)
	}
	second, err := f.handler.Commit(context.Background(), acquire)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if first.Turn() != 0 || second.Turn() != 1 {
		t.Fatalf("turns = %d/%d, want 0/1", first.Turn(), second.Turn())
	}
	if f.handler.Turn() != 1 {
		t.Fatalf("turn = %d, want 1", f.handler.Turn())
	}
}

func TestNewHandlerResumesAtLastTurn(t *testing.T) {
	f := newFixture(t, WithTurn(4))
	acquire, _ := action.NewAcquisition(f.rd01, angel)
	if _, err := f.handler.Commit(context.Background(), acquire); err != nil {
		t.Fatalf("commit: %v", err)
	}

	resumed, err := NewHandler(f.state, f.handler.History())
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Turn() != 4 {
		t.Fatalf("turn = %d, want 4", resumed.Turn())
	}
	if _, err := NewHandler(f.state, f.handler.History(), WithTurn(3)); !errors.Is(err, history.ErrTurnRegression) {
		t.Fatalf("err = %v, want %v", err, history.ErrTurnRegression)
	}
}

func TestCommitSavesSnapshots(t *testing.T) {
	snapshots := &fakeSnapshots{}
	f := newFixture(t, WithSnapshots(snapshots, 2))
	acquire, _ := action.NewAcquisition(f.rd01, angel)
	for i := 0; i < 5; i++ {
		if _, err := f.handler.Commit(context.Background(), acquire); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	if len(snapshots.seqs) != 2 || snapshots.seqs[0] != 2 || snapshots.seqs[1] != 4 {
		t.Fatalf("snapshot seqs = %v, want [2 4]", snapshots.seqs)
	}
}

func TestCommitNilAction(t *testing.T) {
	f := newFixture(t)
	if _, err := f.handler.Commit(context.Background(), nil); !errors.Is(err, game.ErrActionRequired) {
		t.Fatalf("err = %v, want %v", err, game.ErrActionRequired)
	}
}

func TestCommitRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f := newFixture(t, WithTracer(provider.Tracer("test")))

	acquire, _ := action.NewAcquisition(f.rd01, angel)
	if _, err := f.handler.Commit(context.Background(), acquire); err != nil {
		t.Fatalf("commit: %v", err)
	}
	undo, _ := action.NewSummonUndo(f.rd01, angel)
	if _, err := f.handler.Commit(context.Background(), undo); err == nil {
		t.Fatal("expected undo mismatch")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].Name() != "engine.Commit" {
		t.Fatalf("span name = %q, want engine.Commit", spans[0].Name())
	}
	if len(spans[1].Events()) == 0 {
		t.Fatal("expected recorded error on failed commit span")
	}
}

func TestIsNonRetryable(t *testing.T) {
	base := errors.New("boom")
	if IsNonRetryable(base) {
		t.Fatal("plain error must be retryable")
	}
	wrapped := wrapNonRetryable(base)
	if !IsNonRetryable(wrapped) || !errors.Is(wrapped, base) {
		t.Fatalf("wrapped = %v, want non-retryable wrapping base", wrapped)
	}
	if wrapNonRetryable(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestCodeClassifiesDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		want apperrors.Code
	}{
		{action.ErrDonorIsTarget, apperrors.CodeDonorIsTarget},
		{event.ErrTurnNegative, apperrors.CodeTurnNegative},
		{history.ErrTurnRegression, apperrors.CodeTurnRegression},
		{game.ErrCreatureMissing, apperrors.CodeCreatureMissing},
		{errors.New("other"), apperrors.CodeUnknown},
	}
	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Fatalf("Code(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
