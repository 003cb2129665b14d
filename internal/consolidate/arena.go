package consolidate

// Arena is a disjoint-set forest over integer handles assigned at graph-build
// time. Find applies path compression and Union joins by size, giving
// near-constant amortized cost per operation.
type Arena struct {
	parent []int32
	size   []int32
}

// NewArena creates a forest of n singleton sets.
func NewArena(n int) *Arena {
	a := &Arena{
		parent: make([]int32, n),
		size:   make([]int32, n),
	}
	for i := range a.parent {
		a.parent[i] = int32(i)
		a.size[i] = 1
	}
	return a
}

// Len returns the number of handles in the arena.
func (a *Arena) Len() int {
	return len(a.parent)
}

// Find returns the representative of x's set, compressing the path as it goes.
func (a *Arena) Find(x int) int {
	root := int32(x)
	for a.parent[root] != root {
		root = a.parent[root]
	}
	// Second walk rewrites the chain to point at the root.
	cur := int32(x)
	for a.parent[cur] != root {
		next := a.parent[cur]
		a.parent[cur] = root
		cur = next
	}
	return int(root)
}

// Union joins the sets containing x and y. Returns true when the sets were
// distinct and a merge happened.
func (a *Arena) Union(x, y int) bool {
	rx := int32(a.Find(x))
	ry := int32(a.Find(y))
	if rx == ry {
		return false
	}
	if a.size[rx] < a.size[ry] {
		rx, ry = ry, rx
	}
	a.parent[ry] = rx
	a.size[rx] += a.size[ry]
	return true
}

// Sets groups all handles by representative. Member slices preserve handle
// order; the outer slice is ordered by each set's smallest handle.
func (a *Arena) Sets() [][]int {
	byRoot := make(map[int][]int)
	order := make([]int, 0)
	for i := 0; i < len(a.parent); i++ {
		root := a.Find(i)
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}
	sets := make([][]int, 0, len(order))
	for _, root := range order {
		sets = append(sets, byRoot[root])
	}
	return sets
}
