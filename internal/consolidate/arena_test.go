package consolidate

import "testing"

func TestArenaSingletons(t *testing.T) {
	a := NewArena(3)
	for i := 0; i < 3; i++ {
		if got := a.Find(i); got != i {
			t.Errorf("Find(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestArenaUnionTransitive(t *testing.T) {
	a := NewArena(4)

	if !a.Union(0, 1) {
		t.Error("Union(0, 1) = false, want true")
	}
	if !a.Union(1, 2) {
		t.Error("Union(1, 2) = false, want true")
	}
	if a.Union(0, 2) {
		t.Error("Union(0, 2) = true, want false for already-joined handles")
	}

	if a.Find(0) != a.Find(2) {
		t.Error("Find(0) != Find(2) after transitive unions")
	}
	if a.Find(3) == a.Find(0) {
		t.Error("Find(3) joined cluster it never touched")
	}
}

func TestArenaSetsOrdering(t *testing.T) {
	a := NewArena(5)
	a.Union(3, 1)
	a.Union(4, 2)

	sets := a.Sets()
	if len(sets) != 3 {
		t.Fatalf("Sets() returned %d sets, want 3", len(sets))
	}
	want := [][]int{{0}, {1, 3}, {2, 4}}
	for i, set := range sets {
		if len(set) != len(want[i]) {
			t.Fatalf("set %d = %v, want %v", i, set, want[i])
		}
		for j, handle := range want[i] {
			if set[j] != handle {
				t.Errorf("set %d = %v, want %v", i, set, want[i])
			}
		}
	}
}
