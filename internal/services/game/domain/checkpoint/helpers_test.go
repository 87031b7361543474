package checkpoint

import (
	"testing"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

func mustAcquire(t *testing.T, l legion.Legion) action.Acquisition {
	t.Helper()
	acquire, err := action.NewAcquisition(l, creature.MustNew("Angel"))
	if err != nil {
		t.Fatalf("acquisition: %v", err)
	}
	return acquire
}
