package consolidate

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"stitch/internal/logging"
	"stitch/internal/nameutil"
	"stitch/internal/observation"
)

// Cluster is a maximal set of nodes evidenced to represent one person.
// Members are sorted by numeric identifier value.
type Cluster struct {
	Members []*observation.Node
}

// SecondaryIDs returns the sorted union of the members' non-empty secondary
// identifiers.
func (c *Cluster) SecondaryIDs() []string {
	seen := make(map[string]struct{})
	for _, member := range c.Members {
		for _, id := range member.SecondaryIDs() {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NameKeys returns the sorted union of the members' normalized name keys.
func (c *Cluster) NameKeys() []string {
	seen := make(map[string]struct{})
	for _, member := range c.Members {
		for _, key := range member.NameKeys() {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the cluster's total observation count.
func (c *Cluster) Count() int {
	total := 0
	for _, member := range c.Members {
		total += member.Count
	}
	return total
}

// AmbiguousPair records a near-threshold score between two clusters that was
// not merged. Surfaced for manual review, never acted on.
type AmbiguousPair struct {
	PrimaryA string
	PrimaryB string
	Score    int
}

// Result carries the converged clusters plus review signals gathered along
// the way.
type Result struct {
	Clusters  []*Cluster
	Ambiguous []AmbiguousPair
	// Passes is the number of grouping iterations run before convergence.
	Passes int
	// CapHit reports that grouping stopped at the iteration cap instead of a
	// fixed point, which indicates a pathological input or configuration.
	CapHit bool
}

// Consolidator computes the cluster partition for one aggregated snapshot.
type Consolidator struct {
	agg       *observation.Aggregate
	matcher   nameutil.Matcher
	maxPasses int
	logger    *slog.Logger

	arena     *Arena
	ambiguous map[[2]string]int
}

// New creates a consolidator over the aggregate. The matcher carries the
// internal threshold and shared-token floor.
func New(agg *observation.Aggregate, matcher nameutil.Matcher, maxPasses int, logger *slog.Logger) *Consolidator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxPasses < 1 {
		maxPasses = 1
	}
	return &Consolidator{
		agg:       agg,
		matcher:   matcher,
		maxPasses: maxPasses,
		logger:    logger,
		arena:     NewArena(len(agg.Nodes)),
		ambiguous: make(map[[2]string]int),
	}
}

// Run executes the three merge passes in order and returns the converged
// partition. The passes mutate only the consolidator's own arena; the
// aggregate is read-only throughout.
func (c *Consolidator) Run(ctx context.Context) (*Result, error) {
	logger := logging.WithContext(ctx, c.logger)

	unions := c.unionCoOccurrence()
	logger.Info("co-occurrence pass complete", logging.Int("unions", unions))

	passes, capHit := c.unionSecondaryGroups(ctx)
	logger.Info("secondary-identifier grouping converged",
		logging.Int("passes", passes),
		logging.Bool("cap_hit", capHit),
	)
	if capHit {
		logger.Warn("grouping stopped at iteration cap before reaching a fixed point",
			logging.Int("max_passes", c.maxPasses),
		)
	}

	unions = c.unionTrailingZero()
	logger.Info("trailing-zero pass complete", logging.Int("unions", unions))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Clusters:  c.clusters(),
		Ambiguous: c.ambiguousPairs(),
		Passes:    passes,
		CapHit:    capHit,
	}
	logger.Info("consolidation complete",
		logging.Int("nodes", len(c.agg.Nodes)),
		logging.Int("clusters", len(result.Clusters)),
		logging.Int("ambiguous_pairs", len(result.Ambiguous)),
	)
	return result, nil
}

// unionCoOccurrence joins identifiers that appeared on the same source
// record. Names play no part here: the record itself is the evidence.
func (c *Consolidator) unionCoOccurrence() int {
	unions := 0
	for _, edge := range c.agg.Edges {
		if c.arena.Union(c.agg.Index[edge[0]], c.agg.Index[edge[1]]) {
			unions++
		}
	}
	return unions
}

// unionSecondaryGroups joins identifiers that share a secondary identifier
// and carry matching names. Repeats until no pass produces a union, so chains
// discovered only after earlier merges (A-B via one identifier, B-C via
// another) still converge. Returns the pass count and whether the cap ended
// the loop early.
func (c *Consolidator) unionSecondaryGroups(ctx context.Context) (int, bool) {
	groups := c.secondaryGroups("")
	for pass := 1; pass <= c.maxPasses; pass++ {
		if ctx.Err() != nil {
			return pass, false
		}
		if c.mergeGroups(groups) == 0 {
			return pass, false
		}
	}
	return c.maxPasses, true
}

// unionTrailingZero joins identifiers whose secondary identifiers are equal
// after stripping trailing zero digits, confirmed by a name match. One pass
// suffices: the grouping keys do not change as clusters merge.
func (c *Consolidator) unionTrailingZero() int {
	return c.mergeGroups(c.secondaryGroups("0"))
}

// secondaryGroups collects node handles per secondary identifier. A non-empty
// trim argument groups by the identifier with those trailing characters
// removed, which implements trailing-zero equivalence.
func (c *Consolidator) secondaryGroups(trim string) [][]int {
	byKey := make(map[string][]int)
	for i, node := range c.agg.Nodes {
		for _, id := range node.SecondaryIDs() {
			key := id
			if trim != "" {
				key = strings.TrimRight(id, trim)
				if key == "" {
					continue
				}
			}
			byKey[key] = append(byKey[key], i)
		}
	}

	keys := make([]string, 0, len(byKey))
	for key, members := range byKey {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	groups := make([][]int, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, byKey[key])
	}
	return groups
}

// mergeGroups runs one grouping pass: within each group, clusters whose name
// sets satisfy the matcher are joined. Near misses inside the ambiguity band
// are recorded for review. Name sets are snapshotted at pass start; unions
// made mid-pass surface their combined names on the next pass, which the
// fixed-point loop guarantees happens.
func (c *Consolidator) mergeGroups(groups [][]int) int {
	names := c.namesByRoot()
	unions := 0
	for _, group := range groups {
		// Distinct clusters currently represented in the group, in first-seen
		// handle order.
		roots := make([]int, 0, len(group))
		seen := make(map[int]struct{}, len(group))
		for _, handle := range group {
			root := c.arena.Find(handle)
			if _, ok := seen[root]; ok {
				continue
			}
			seen[root] = struct{}{}
			roots = append(roots, root)
		}
		if len(roots) < 2 {
			continue
		}

		for i := 0; i < len(roots); i++ {
			for j := i + 1; j < len(roots); j++ {
				ri := c.arena.Find(roots[i])
				rj := c.arena.Find(roots[j])
				if ri == rj {
					continue
				}
				score, outcome := c.bestComparison(names[roots[i]], names[roots[j]])
				switch outcome {
				case nameutil.OutcomeMatch:
					c.arena.Union(ri, rj)
					unions++
				case nameutil.OutcomeAmbiguous:
					c.recordAmbiguous(roots[i], roots[j], score)
				}
			}
		}
	}
	return unions
}

// namesByRoot snapshots every cluster's name-key set in one sweep over the
// node list, keyed by the cluster's current representative.
func (c *Consolidator) namesByRoot() map[int][]string {
	sets := make(map[int]map[string]struct{})
	for i, node := range c.agg.Nodes {
		root := c.arena.Find(i)
		set := sets[root]
		if set == nil {
			set = make(map[string]struct{})
			sets[root] = set
		}
		for _, key := range node.NameKeys() {
			set[key] = struct{}{}
		}
	}
	names := make(map[int][]string, len(sets))
	for root, set := range sets {
		keys := make([]string, 0, len(set))
		for key := range set {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		names[root] = keys
	}
	return names
}

// bestComparison scores every name pair across the two sets and keeps the
// strongest outcome.
func (c *Consolidator) bestComparison(a, b []string) (int, nameutil.Outcome) {
	bestScore := 0
	best := nameutil.OutcomeNoMatch
	for _, nameA := range a {
		for _, nameB := range b {
			score, outcome := c.matcher.Compare(nameA, nameB)
			if outcome == nameutil.OutcomeMatch {
				return score, outcome
			}
			if outcome == nameutil.OutcomeAmbiguous && (best != nameutil.OutcomeAmbiguous || score > bestScore) {
				best = nameutil.OutcomeAmbiguous
				bestScore = score
			}
			if best == nameutil.OutcomeNoMatch && score > bestScore {
				bestScore = score
			}
		}
	}
	return bestScore, best
}

func (c *Consolidator) recordAmbiguous(handleA, handleB int, score int) {
	a := c.agg.Nodes[handleA].PrimaryID
	b := c.agg.Nodes[handleB].PrimaryID
	if b < a {
		a, b = b, a
	}
	key := [2]string{a, b}
	if existing, ok := c.ambiguous[key]; !ok || score > existing {
		c.ambiguous[key] = score
	}
}

func (c *Consolidator) ambiguousPairs() []AmbiguousPair {
	pairs := make([]AmbiguousPair, 0, len(c.ambiguous))
	for key, score := range c.ambiguous {
		pairs = append(pairs, AmbiguousPair{PrimaryA: key[0], PrimaryB: key[1], Score: score})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].PrimaryA != pairs[j].PrimaryA {
			return pairs[i].PrimaryA < pairs[j].PrimaryA
		}
		return pairs[i].PrimaryB < pairs[j].PrimaryB
	})
	return pairs
}

// clusters materializes the partition. Handles are assigned in node order
// (ascending numeric id), so sets and members come out deterministically.
func (c *Consolidator) clusters() []*Cluster {
	sets := c.arena.Sets()
	clusters := make([]*Cluster, 0, len(sets))
	for _, set := range sets {
		members := make([]*observation.Node, 0, len(set))
		for _, handle := range set {
			members = append(members, c.agg.Nodes[handle])
		}
		clusters = append(clusters, &Cluster{Members: members})
	}
	return clusters
}
