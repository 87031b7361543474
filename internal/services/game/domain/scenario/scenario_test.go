package scenario

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/checkpoint"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/engine"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/history"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/journal"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/replay"
)

func newBuilder(t *testing.T) Builder {
	t.Helper()
	return func(state *game.State) (*engine.Handler, error) {
		hist, err := history.New("scenario")
		if err != nil {
			return nil, err
		}
		return engine.NewHandler(state, hist)
	}
}

func TestLoadFileNamesScenarioAfterFile(t *testing.T) {
	sc, err := LoadFile(filepath.Join("testdata", "recruit.lua"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "recruit" {
		t.Fatalf("name = %q, want recruit", sc.Name)
	}
	if sc.Steps[0].Kind != stepPlayer || sc.Steps[0].Args["score"] != 120 {
		t.Fatalf("first step = %+v, want player with score 120", sc.Steps[0])
	}
	creatures := stringsArg(sc.Steps[1], "creatures")
	if len(creatures) != 3 || creatures[0] != "Titan" {
		t.Fatalf("creatures = %v, want [Titan Centaur Centaur]", creatures)
	}
}

func TestRunSummonUndoScenario(t *testing.T) {
	sc, err := LoadFile(filepath.Join("testdata", "summon_undo.lua"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	handler, err := Run(context.Background(), sc, newBuilder(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	events := handler.History().Snapshot()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	summon := events[0]
	player, _ := summon.Player()
	if summon.Turn() != 7 || player.Name() != "Bob" {
		t.Fatalf("summon turn/player = %d/%s, want 7/Bob", summon.Turn(), player.Name())
	}
	revealed := summon.RevealedCreatures()
	if len(revealed) != 1 || revealed[0] != creature.MustNew("Troll") {
		t.Fatalf("revealed = %v, want [Troll]", revealed)
	}
	if events[1].Kind() != event.KindUndoSummon {
		t.Fatalf("second kind = %s, want %s", events[1].Kind(), event.KindUndoSummon)
	}
}

func TestRunRecruitScenario(t *testing.T) {
	sc, err := LoadFile(filepath.Join("testdata", "recruit.lua"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	handler, err := Run(context.Background(), sc, newBuilder(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	events := handler.History().Snapshot()
	if len(events) != 4 {
		t.Fatalf("events = %d, want 4 committed", len(events))
	}
	recruit := events[0]
	if recruit.Turn() != 5 || len(recruit.RevealedCreatures()) != 0 {
		t.Fatalf("recruit turn/revealed = %d/%v, want 5/[]", recruit.Turn(), recruit.RevealedCreatures())
	}
	if handler.Turn() != 6 {
		t.Fatalf("turn = %d, want 6", handler.Turn())
	}

	snapshot := handler.Snapshot()
	alice, _ := snapshot.Player("Alice")
	if alice.Score() != 150 {
		t.Fatalf("score = %d, want 150", alice.Score())
	}
	if got, ok := snapshot.Context().Scores.Marked("Alice"); !ok || got != 150 {
		t.Fatalf("marked score = %d, %v; want 150, true", got, ok)
	}
	rd01, _ := snapshot.Legion("Rd01")
	if rd01.Hex() != "B7" {
		t.Fatalf("hex = %q, want B7", rd01.Hex())
	}
}

func TestRunFailedExpectation(t *testing.T) {
	sc, err := LoadFile(filepath.Join("testdata", "broken.lua"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Run(context.Background(), sc, newBuilder(t)); !errors.Is(err, ErrExpectation) {
		t.Fatalf("err = %v, want %v", err, ErrExpectation)
	}
}

func TestRunRejectsSetupAfterAction(t *testing.T) {
	sc, err := LoadString(`
local s = Scenario.new("late setup")
s:player("Alice")
s:legion("Rd01", { owner = "Alice", creatures = { "Titan" } })
s:acquire("Rd01", "Angel")
s:player("Bob")
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Run(context.Background(), sc, newBuilder(t)); !errors.Is(err, ErrSetupAfterAction) {
		t.Fatalf("err = %v, want %v", err, ErrSetupAfterAction)
	}
}

func TestRunRejectsScoreAfterAction(t *testing.T) {
	sc, err := LoadString(`
local s = Scenario.new("late score")
s:player("Alice", { score = 120 })
s:legion("Rd01", { owner = "Alice", creatures = { "Titan", "Centaur", "Centaur" } })
s:recruit("Rd01", "Ogre", "Centaur")
s:score("Alice", 30)
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Run(context.Background(), sc, newBuilder(t)); !errors.Is(err, ErrSetupAfterAction) {
		t.Fatalf("err = %v, want %v", err, ErrSetupAfterAction)
	}
}

func TestRunUnexpectedSuccessFails(t *testing.T) {
	sc, err := LoadString(`
local s = Scenario.new()
s:player("Alice")
s:legion("Rd01", { owner = "Alice", creatures = { "Titan" } })
s:acquire("Rd01", "Angel", { expect_error = "UNDO_MISMATCH" })
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Run(context.Background(), sc, newBuilder(t)); !errors.Is(err, ErrExpectation) {
		t.Fatalf("err = %v, want %v", err, ErrExpectation)
	}
}

func TestRunTurnCannotGoBack(t *testing.T) {
	sc, err := LoadString(`
local s = Scenario.new()
s:turn(4)
s:turn(2)
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Run(context.Background(), sc, newBuilder(t)); err == nil {
		t.Fatal("expected error for turn going back")
	}
}

func TestLoadStringErrors(t *testing.T) {
	if _, err := LoadString(`return 42`); !errors.Is(err, ErrNoScenario) {
		t.Fatalf("err = %v, want %v", err, ErrNoScenario)
	}
	if _, err := LoadString(`error("boom")`); err == nil {
		t.Fatal("expected runtime error")
	}
	if _, err := LoadString(`local s = `); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestRunRequiresArguments(t *testing.T) {
	if _, err := Run(context.Background(), nil, newBuilder(t)); !errors.Is(err, ErrNoScenario) {
		t.Fatalf("err = %v, want %v", err, ErrNoScenario)
	}
	if _, err := Run(context.Background(), &Scenario{}, nil); !errors.Is(err, ErrBuilderRequired) {
		t.Fatalf("err = %v, want %v", err, ErrBuilderRequired)
	}
	handler, err := Run(context.Background(), &Scenario{}, newBuilder(t))
	if err != nil || handler == nil {
		t.Fatalf("empty scenario = %v, %v; want handler", handler, err)
	}
}

func TestRecordedScenarioReplaysFromJournal(t *testing.T) {
	for _, file := range []string{"summon_undo.lua", "recruit.lua"} {
		t.Run(file, func(t *testing.T) {
			sc, err := LoadFile(filepath.Join("testdata", file))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			mem := journal.NewMemory()
			var base *game.State
			build := func(state *game.State) (*engine.Handler, error) {
				base = state.Clone()
				hist, err := history.New("scenario")
				if err != nil {
					return nil, err
				}
				return engine.NewHandler(state, hist, engine.WithJournal(mem))
			}
			handler, err := Run(context.Background(), sc, build)
			if err != nil {
				t.Fatalf("run: %v", err)
			}

			result, err := replay.Replay(context.Background(), mem, checkpoint.NewMemory(), "scenario", base, replay.Options{})
			if err != nil {
				t.Fatalf("replay: %v", err)
			}
			if result.Applied != handler.History().Len() {
				t.Fatalf("applied = %d, want %d", result.Applied, handler.History().Len())
			}
			var live *game.State
			handler.Read(func(s *game.State) { live = s.Clone() })
			if !result.State.Equal(live) {
				t.Fatal("replayed state differs from the scenario's final state")
			}
			for _, p := range live.Players() {
				want, wantOK := live.Context().Scores.Marked(p.Name())
				got, gotOK := result.State.Context().Scores.Marked(p.Name())
				if got != want || gotOK != wantOK {
					t.Fatalf("%s marked score = %d, %v; want %d, %v", p.Name(), got, gotOK, want, wantOK)
				}
			}
		})
	}
}
