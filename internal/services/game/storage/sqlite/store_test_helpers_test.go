package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/event"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/storage/integrity"
)

var (
	titan   = creature.MustNew("Titan")
	centaur = creature.MustNew("Centaur")
	lion    = creature.MustNew("Lion")
	troll   = creature.MustNew("Troll")
	angel   = creature.MustNew("Angel")
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newKeyring(t *testing.T) *integrity.Keyring {
	t.Helper()
	ring, err := integrity.NewKeyring(map[string][]byte{"v1": []byte("secret")}, "v1")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	return ring
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, newKeyring(t), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

// setup is the roster shared by the store tests: Alice's Rd01 and two of
// Bob's legions, one of them carrying an Angel to summon.
func setup(t *testing.T) *game.State {
	t.Helper()
	state := game.NewState()
	for _, name := range []string{"Alice", "Bob"} {
		if _, err := state.AddPlayer(name, 0); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	mustLegion(t, state, "Rd01", "Alice", "100", titan, centaur, centaur)
	mustLegion(t, state, "Bk01", "Bob", "200", titan, troll)
	mustLegion(t, state, "Bk02", "Bob", "300", angel, troll, troll)
	return state
}

func mustLegion(t *testing.T, state *game.State, marker, owner string, hex string, creatures ...creature.Type) {
	t.Helper()
	if _, err := state.AddLegion(marker, owner, legion.HexLabel(hex), creatures...); err != nil {
		t.Fatalf("add legion %s: %v", marker, err)
	}
}

func legionOf(t *testing.T, state *game.State, marker string) *game.Legion {
	t.Helper()
	l, ok := state.Legion(marker)
	if !ok {
		t.Fatalf("legion %s not found", marker)
	}
	return l
}

// sampleEvents records a recruit at turn 2, a summon at turn 3 and an
// acquire at turn 3 against state.
func sampleEvents(t *testing.T, state *game.State) []event.Event {
	t.Helper()
	rd01 := legionOf(t, state, "Rd01")
	bk01 := legionOf(t, state, "Bk01")
	bk02 := legionOf(t, state, "Bk02")

	recruit, err := event.NewRecruit(2, rd01, lion, centaur)
	if err != nil {
		t.Fatalf("recruit: %v", err)
	}
	summon, err := event.NewSummon(3, bk01, bk02, angel)
	if err != nil {
		t.Fatalf("summon: %v", err)
	}
	acquire, err := event.NewAcquire(3, rd01, angel)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	return []event.Event{recruit, summon, acquire}
}
