package legion

import (
	"testing"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
)

type stubPlayer struct{ name string }

func (p stubPlayer) Name() string { return p.name }
func (p stubPlayer) Score() int { return 0 }

type stubLegion struct {
	marker string
	owner  Player
}

func (l stubLegion) Player() Player { return l.owner }
func (l stubLegion) MarkerID() string { return l.marker }
func (l stubLegion) Contains(creature.Type) bool { return false }
func (l stubLegion) NumCreature(creature.Type) int { return 0 }
func (l stubLegion) Height() int { return 0 }

func TestOwnerOf(t *testing.T) {
	ref, ok := OwnerOf(stubLegion{marker: "Rd01", owner: stubPlayer{name: "Alice"}})
	if !ok {
		t.Fatal("expected owner")
	}
	if ref.Name() != "Alice" {
		t.Fatalf("owner = %q, want Alice", ref.Name())
	}
}

func TestOwnerOfNilLegion(t *testing.T) {
	if _, ok := OwnerOf(nil); ok {
		t.Fatal("expected no owner for nil legion")
	}
	if got := MarkerOf(nil); got != "" {
		t.Fatalf("marker = %q, want empty", got)
	}
}

func TestOwnerOfUnownedLegion(t *testing.T) {
	if _, ok := OwnerOf(stubLegion{marker: "Bk03"}); ok {
		t.Fatal("expected no owner for unowned legion")
	}
}

func TestHexLabel(t *testing.T) {
	var hex MasterHex = HexLabel("A1")
	if hex.Label() != "A1" {
		t.Fatalf("label = %q, want A1", hex.Label())
	}
}

func TestIsNil(t *testing.T) {
	var typed *stubLegion
	if !IsNil(nil) {
		t.Fatal("expected untyped nil")
	}
	if !IsNil(typed) {
		t.Fatal("expected typed nil pointer")
	}
	if IsNil(stubLegion{marker: "Rd01"}) {
		t.Fatal("expected value legion to be non-nil")
	}
}
