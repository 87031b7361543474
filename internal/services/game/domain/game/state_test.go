package game

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

var (
	titan   = creature.MustNew("Titan")
	angel   = creature.MustNew("Angel")
	centaur = creature.MustNew("Centaur")
	ogre    = creature.MustNew("Ogre")
	troll   = creature.MustNew("Troll")
)

// newTwoLegionGame sets up Rd01 (Titan, Centaur, Centaur) and Rd02 (Angel,
// Troll) for Alice.
func newTwoLegionGame(t *testing.T) (*State, *Legion, *Legion) {
	t.Helper()
	s := NewState()
	if _, err := s.AddPlayer("Alice", 0); err != nil {
		t.Fatalf("add player: %v", err)
	}
	rd01, err := s.AddLegion("Rd01", "Alice", "A1", titan, centaur, centaur)
	if err != nil {
		t.Fatalf("add legion: %v", err)
	}
	rd02, err := s.AddLegion("Rd02", "Alice", "B2", angel, troll)
	if err != nil {
		t.Fatalf("add legion: %v", err)
	}
	return s, rd01, rd02
}

func TestAddPlayerAndLegionValidation(t *testing.T) {
	s := NewState()
	if _, err := s.AddPlayer(" ", 0); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("err = %v, want %v", err, ErrNameRequired)
	}
	if _, err := s.AddPlayer("Alice", 0); err != nil {
		t.Fatalf("add player: %v", err)
	}
	if _, err := s.AddPlayer("Alice", 0); !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("err = %v, want %v", err, ErrDuplicatePlayer)
	}
	if _, err := s.AddLegion("", "Alice", "A1"); !errors.Is(err, ErrMarkerRequired) {
		t.Fatalf("err = %v, want %v", err, ErrMarkerRequired)
	}
	if _, err := s.AddLegion("Rd01", "Bob", "A1"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrPlayerNotFound)
	}
	if _, err := s.AddLegion("Rd01", "Alice", "A1"); err != nil {
		t.Fatalf("add legion: %v", err)
	}
	if _, err := s.AddLegion("Rd01", "Alice", "A1"); !errors.Is(err, ErrDuplicateLegion) {
		t.Fatalf("err = %v, want %v", err, ErrDuplicateLegion)
	}
}

func TestApplyAddsOneCreature(t *testing.T) {
	s, rd01, _ := newTwoLegionGame(t)

	recruit, _ := action.NewRecruitment(rd01, ogre, centaur)
	acquire, _ := action.NewAcquisition(rd01, angel)
	edit, _ := action.NewEditAddCreature(rd01, troll)

	for i, act := range []action.Action{recruit, acquire, edit} {
		if err := s.Apply(act); err != nil {
			t.Fatalf("apply %s: %v", act.Kind(), err)
		}
		if rd01.Height() != 4+i {
			t.Fatalf("height after %s = %d, want %d", act.Kind(), rd01.Height(), 4+i)
		}
	}
	if rd01.NumCreature(ogre) != 1 || !rd01.Contains(angel) || !rd01.Contains(troll) {
		t.Fatalf("contents = %v", rd01.Creatures().Types())
	}
}

func TestApplyRecruitRequiresRecruiter(t *testing.T) {
	s, rd01, _ := newTwoLegionGame(t)
	recruit, _ := action.NewRecruitment(rd01, ogre, troll)
	if err := s.Apply(recruit); !errors.Is(err, ErrCreatureMissing) {
		t.Fatalf("err = %v, want %v", err, ErrCreatureMissing)
	}
	if rd01.Height() != 3 {
		t.Fatalf("height = %d, want unchanged 3", rd01.Height())
	}
}

func TestApplyRecruitMarksScore(t *testing.T) {
	s, rd01, _ := newTwoLegionGame(t)
	alice, _ := s.Player("Alice")
	alice.AddScore(120)

	recruit, _ := action.NewRecruitment(rd01, ogre, centaur)
	if err := s.Apply(recruit); err != nil {
		t.Fatalf("apply: %v", err)
	}
	alice.AddScore(30)

	if got := s.Context().Scores.ScoreSince("Alice", alice.Score()); got != 30 {
		t.Fatalf("score since recruit = %d, want 30", got)
	}
	if marked, ok := s.Context().Scores.Marked("Alice"); !ok || marked != 120 {
		t.Fatalf("marked = %d (%v), want 120", marked, ok)
	}
}

func TestContextsAreIsolatedPerGame(t *testing.T) {
	first, rd01, _ := newTwoLegionGame(t)
	second, _, _ := newTwoLegionGame(t)

	recruit, _ := action.NewRecruitment(rd01, ogre, centaur)
	if err := first.Apply(recruit); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := second.Context().Scores.Marked("Alice"); ok {
		t.Fatal("recruit in one game leaked into another")
	}
}

func TestSummonAndUndoRestoreComposition(t *testing.T) {
	s, rd01, rd02 := newTwoLegionGame(t)
	before := s.Clone()

	summon, err := action.NewSummoning(rd01, rd02, angel)
	if err != nil {
		t.Fatalf("summoning: %v", err)
	}
	if err := s.Apply(summon); err != nil {
		t.Fatalf("apply summon: %v", err)
	}
	if rd01.Height() != 4 || rd02.Height() != 1 {
		t.Fatalf("heights = %d/%d, want 4/1", rd01.Height(), rd02.Height())
	}
	if len(s.Pending()) != 1 {
		t.Fatalf("pending = %v, want one summon", s.Pending())
	}

	undo, _ := action.NewSummonUndo(rd01, angel)
	if err := s.Apply(undo); err != nil {
		t.Fatalf("apply undo: %v", err)
	}
	if !s.Equal(before) {
		t.Fatal("summon then undo did not restore the state")
	}
}

func TestAddPendingLetsUndoReverseRestoredSummon(t *testing.T) {
	s, rd01, rd02 := newTwoLegionGame(t)
	if err := s.AddPending(PendingSummon{Target: "Rd01", Donor: "Rd02", Creature: titan}); err != nil {
		t.Fatalf("add pending: %v", err)
	}
	undo, _ := action.NewSummonUndo(rd01, titan)
	if err := s.Apply(undo); err != nil {
		t.Fatalf("apply undo: %v", err)
	}
	if rd01.Height() != 2 || rd02.NumCreature(titan) != 1 {
		t.Fatalf("heights = %d/%d, want titan moved to Rd02", rd01.Height(), rd02.Height())
	}
	if len(s.Pending()) != 0 {
		t.Fatalf("pending = %v, want none", s.Pending())
	}

	tests := []struct {
		name    string
		pending PendingSummon
		want    error
	}{
		{"unknown target", PendingSummon{Target: "Zz99", Donor: "Rd02", Creature: angel}, ErrLegionNotFound},
		{"unknown donor", PendingSummon{Target: "Rd01", Donor: "Zz99", Creature: angel}, ErrLegionNotFound},
		{"no creature", PendingSummon{Target: "Rd01", Donor: "Rd02"}, ErrCreatureMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.AddPending(tt.pending); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUndoWithoutSummonIsMismatch(t *testing.T) {
	s, rd01, _ := newTwoLegionGame(t)
	undo, _ := action.NewSummonUndo(rd01, titan)
	err := s.Apply(undo)
	if !errors.Is(err, ErrUndoMismatch) {
		t.Fatalf("err = %v, want %v", err, ErrUndoMismatch)
	}
	if rd01.Height() != 3 {
		t.Fatalf("height = %d, want unchanged 3", rd01.Height())
	}
}

func TestUndoMatchesCreatureType(t *testing.T) {
	s, rd01, rd02 := newTwoLegionGame(t)
	summon, _ := action.NewSummoning(rd01, rd02, angel)
	if err := s.Apply(summon); err != nil {
		t.Fatalf("apply summon: %v", err)
	}
	undo, _ := action.NewSummonUndo(rd01, troll)
	if err := s.Apply(undo); !errors.Is(err, ErrUndoMismatch) {
		t.Fatalf("err = %v, want %v", err, ErrUndoMismatch)
	}
}

func TestSummonRequiresDonorCreature(t *testing.T) {
	s, rd01, rd02 := newTwoLegionGame(t)
	summon, _ := action.NewSummoning(rd01, rd02, ogre)
	if err := s.Apply(summon); !errors.Is(err, ErrCreatureMissing) {
		t.Fatalf("err = %v, want %v", err, ErrCreatureMissing)
	}
	if rd01.Height() != 3 || rd02.Height() != 2 {
		t.Fatalf("heights = %d/%d, want unchanged 3/2", rd01.Height(), rd02.Height())
	}
}

func TestApplyUnknownLegion(t *testing.T) {
	s, _, _ := newTwoLegionGame(t)
	other := NewState()
	if _, err := other.AddPlayer("Bob", 0); err != nil {
		t.Fatalf("add player: %v", err)
	}
	stray, _ := other.AddLegion("Bk09", "Bob", "C3", titan)

	acquire, _ := action.NewAcquisition(stray, angel)
	if err := s.Apply(acquire); !errors.Is(err, ErrLegionNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrLegionNotFound)
	}
	if err := s.Apply(nil); !errors.Is(err, ErrActionRequired) {
		t.Fatalf("err = %v, want %v", err, ErrActionRequired)
	}
}

func TestRelocate(t *testing.T) {
	s, rd01, _ := newTwoLegionGame(t)
	move, _ := action.NewRelocateLegion(rd01, legion.HexLabel("D4"))
	if err := s.Apply(move); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if rd01.Hex() != "D4" {
		t.Fatalf("hex = %q, want D4", rd01.Hex())
	}
}

func TestIntegrateReproducesApply(t *testing.T) {
	live, rd01, rd02 := newTwoLegionGame(t)
	replayed := live.Clone()

	recruit, _ := action.NewRecruitment(rd01, ogre, centaur)
	summon, _ := action.NewSummoning(rd01, rd02, angel)
	undo, _ := action.NewSummonUndo(rd01, angel)
	acquire, _ := action.NewAcquisition(rd02, angel)
	move, _ := action.NewRelocateLegion(rd02, legion.HexLabel("E5"))

	for turn, act := range []action.Action{recruit, summon, undo, acquire, move} {
		if err := live.Apply(act); err != nil {
			t.Fatalf("apply %s: %v", act.Kind(), err)
		}
		evt, err := event.Record(turn, act)
		if err != nil {
			t.Fatalf("record %s: %v", act.Kind(), err)
		}
		if err := replayed.Integrate(evt); err != nil {
			t.Fatalf("integrate %s: %v", evt.Kind(), err)
		}
	}
	if !live.Equal(replayed) {
		t.Fatal("integrated state differs from applied state")
	}
}

func TestIntegrateNilTargetSummonFails(t *testing.T) {
	s, _, rd02 := newTwoLegionGame(t)
	evt, err := event.NewSummon(0, nil, rd02, angel)
	if err != nil {
		t.Fatalf("new summon: %v", err)
	}
	if err := s.Integrate(evt); !errors.Is(err, ErrLegionNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrLegionNotFound)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s, rd01, _ := newTwoLegionGame(t)
	clone := s.Clone()

	acquire, _ := action.NewAcquisition(rd01, angel)
	if err := s.Apply(acquire); err != nil {
		t.Fatalf("apply: %v", err)
	}
	cloned, _ := clone.Legion("Rd01")
	if cloned.Height() != 3 {
		t.Fatalf("clone height = %d, want 3", cloned.Height())
	}
	if s.Equal(clone) {
		t.Fatal("states should differ after apply")
	}
	if cloned.Owner() == rd01.Owner() {
		t.Fatal("clone shares owner pointer")
	}
}

func TestScenarioHeights(t *testing.T) {
	s := NewState()
	s.AddPlayer("Alice", 0)
	s.AddPlayer("Bob", 0)
	rd01, _ := s.AddLegion("Rd01", "Alice", "A1", titan, centaur, centaur)
	bobTarget, _ := s.AddLegion("Bu01", "Bob", "B1", titan)
	bobDonor, _ := s.AddLegion("Bu02", "Bob", "B2", troll, troll)

	recruit, _ := action.NewRecruitment(rd01, ogre, centaur)
	if err := s.Apply(recruit); err != nil {
		t.Fatalf("apply recruit: %v", err)
	}
	summon, _ := action.NewSummoning(bobTarget, bobDonor, troll)
	if err := s.Apply(summon); err != nil {
		t.Fatalf("apply summon: %v", err)
	}

	if rd01.Height() != 4 {
		t.Fatalf("Rd01 height = %d, want 4", rd01.Height())
	}
	if bobTarget.Height() != 2 || bobDonor.Height() != 1 {
		t.Fatalf("Bob heights = %d/%d, want 2/1", bobTarget.Height(), bobDonor.Height())
	}
}

// Summoning any creature the donor holds and undoing it restores both
// legions exactly.
func TestSummonUndoRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("summon then undo is identity", prop.ForAll(
		func(targetNames, donorNames []string, pick int) bool {
			if len(donorNames) == 0 {
				return true
			}
			s := NewState()
			if _, err := s.AddPlayer("P", 0); err != nil {
				return false
			}
			targetTypes, err := creature.ParseNames(targetNames)
			if err != nil {
				return false
			}
			donorTypes, err := creature.ParseNames(donorNames)
			if err != nil {
				return false
			}
			target, _ := s.AddLegion("T1", "P", "A1", targetTypes...)
			donor, _ := s.AddLegion("D1", "P", "A2", donorTypes...)
			before := s.Clone()

			moved := donorTypes[pick%len(donorTypes)]
			summon, err := action.NewSummoning(target, donor, moved)
			if err != nil || s.Apply(summon) != nil {
				return false
			}
			undo, err := action.NewSummonUndo(target, moved)
			if err != nil || s.Apply(undo) != nil {
				return false
			}
			return s.Equal(before)
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Identifier()),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
