package catalog

import (
	"testing"

	"github.com/google/uuid"
)

// forest builds the fixture used across the hierarchy tests:
//
//	a ── b ── d
//	│    └── e
//	└── c
//	f (separate root)
func forest() (map[uuid.UUID]*uuid.UUID, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"a": uuid.New(), "b": uuid.New(), "c": uuid.New(),
		"d": uuid.New(), "e": uuid.New(), "f": uuid.New(),
	}
	a, b := ids["a"], ids["b"]
	parents := map[uuid.UUID]*uuid.UUID{
		ids["a"]: nil,
		ids["b"]: &a,
		ids["c"]: &a,
		ids["d"]: &b,
		ids["e"]: &b,
		ids["f"]: nil,
	}
	return parents, ids
}

func TestDescendantIDs(t *testing.T) {
	parents, ids := forest()

	tests := []struct {
		name string
		root string
		want []string
	}{
		{"full subtree", "a", []string{"b", "c", "d", "e"}},
		{"mid subtree", "b", []string{"d", "e"}},
		{"leaf", "d", nil},
		{"separate root", "f", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescendantIDs(parents, ids[tt.root])
			if len(got) != len(tt.want) {
				t.Fatalf("got %d descendants, want %d", len(got), len(tt.want))
			}
			gotSet := make(map[uuid.UUID]bool, len(got))
			for _, id := range got {
				gotSet[id] = true
			}
			for _, name := range tt.want {
				if !gotSet[ids[name]] {
					t.Errorf("missing descendant %s", name)
				}
			}
		})
	}
}

func TestDescendantIDsUnknownRoot(t *testing.T) {
	parents, _ := forest()

	if got := DescendantIDs(parents, uuid.New()); len(got) != 0 {
		t.Errorf("unknown root: got %d descendants, want 0", len(got))
	}
}

func TestDescendantIDsCycleSafe(t *testing.T) {
	// A corrupted forest with a -> b -> a and a child hanging off b.
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	parents := map[uuid.UUID]*uuid.UUID{
		a: &b,
		b: &a,
		c: &b,
	}

	got := DescendantIDs(parents, a)
	if len(got) != 2 {
		t.Fatalf("got %d descendants, want 2 (b and c, each once)", len(got))
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range got {
		if seen[id] {
			t.Errorf("descendant %s listed twice", id)
		}
		seen[id] = true
	}
}

func TestIsDescendant(t *testing.T) {
	parents, ids := forest()

	tests := []struct {
		name      string
		candidate string
		ancestor  string
		want      bool
	}{
		{"self", "b", "b", true},
		{"direct child", "b", "a", true},
		{"grandchild", "d", "a", true},
		{"sibling", "c", "b", false},
		{"inverse direction", "a", "b", false},
		{"separate roots", "f", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsDescendant(parents, ids[tt.candidate], ids[tt.ancestor])
			if got != tt.want {
				t.Errorf("IsDescendant(%s, %s): got %v, want %v", tt.candidate, tt.ancestor, got, tt.want)
			}
		})
	}
}

func TestIsDescendantUnknownIDs(t *testing.T) {
	parents, ids := forest()

	if IsDescendant(parents, uuid.New(), ids["a"]) {
		t.Error("unknown candidate must not be a descendant")
	}
	if IsDescendant(parents, ids["b"], uuid.New()) {
		t.Error("unknown ancestor must not match")
	}
}

func TestIsDescendantCycleSafe(t *testing.T) {
	// a <-> b loop with x off to the side. Walking up from inside the
	// loop must terminate, and a loop that never reaches the ancestor
	// reads as a descendant so parent moves near corruption stay locked.
	a, b, x := uuid.New(), uuid.New(), uuid.New()
	parents := map[uuid.UUID]*uuid.UUID{
		a: &b,
		b: &a,
		x: nil,
	}

	if !IsDescendant(parents, a, b) {
		t.Error("expected a inside b's loop to read as descendant")
	}
	if !IsDescendant(parents, a, x) {
		t.Error("expected loop walk that never reaches x to read as descendant (locked)")
	}
}
