package observation

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"stitch/internal/logging"
)

// ErrNoObservations indicates the input stream held no usable rows. An empty
// snapshot is a structural failure, not a per-record one.
var ErrNoObservations = errors.New("no usable observations")

// Aggregate is the reduced view of an observation snapshot: one node per
// distinct primary identifier plus the same-record co-occurrence pairs.
type Aggregate struct {
	// Nodes is sorted by numeric identifier value.
	Nodes []*Node
	// Index maps a primary identifier to its position in Nodes.
	Index map[string]int
	// Edges lists distinct primary-identifier pairs that appeared on the same
	// source record, each pair ordered (smaller, larger) numerically.
	Edges [][2]string
	// MaxPrimary is the largest numeric identifier observed.
	MaxPrimary int64
	// Total counts usable rows; Malformed counts skipped ones.
	Total     int
	Malformed int
}

// shardResult is one worker's partial reduction.
type shardResult struct {
	nodes     map[string]*Node
	sources   map[string]map[string]struct{}
	malformed int
	total     int
}

// Build reduces raw rows to an Aggregate. Work is split into shards joined by
// key; the row order only influences FirstSeen, which is taken from the
// global input index so the result is independent of shard boundaries.
func Build(ctx context.Context, rows []Observation, workers int, logger *slog.Logger) (*Aggregate, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(rows) {
		workers = 1
	}

	results := make([]shardResult, workers)
	var group errgroup.Group
	chunk := (len(rows) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunk
		end := min(start+chunk, len(rows))
		if start >= end {
			continue
		}
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[w] = reduceShard(rows[start:end], start)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	agg := mergeShards(results)
	if len(agg.Nodes) == 0 {
		return nil, ErrNoObservations
	}

	logger.Info("observations aggregated",
		logging.Int("rows", agg.Total),
		logging.Int("malformed", agg.Malformed),
		logging.Int("nodes", len(agg.Nodes)),
		logging.Int("co_occurrence_edges", len(agg.Edges)),
	)
	return agg, nil
}

func reduceShard(rows []Observation, offset int) shardResult {
	res := shardResult{
		nodes:   make(map[string]*Node),
		sources: make(map[string]map[string]struct{}),
	}
	for i, raw := range rows {
		row, ok := normalize(raw)
		if !ok {
			res.malformed++
			continue
		}
		res.total++

		node := res.nodes[row.PrimaryID]
		if node == nil {
			numeric, _ := strconv.ParseInt(row.PrimaryID, 10, 64)
			node = &Node{
				PrimaryID: row.PrimaryID,
				Numeric:   numeric,
				Pairings:  make(map[string]*Pairing),
				FirstSeen: offset + i,
			}
			res.nodes[row.PrimaryID] = node
		}
		node.Count++

		pairing := node.Pairings[row.SecondaryID]
		if pairing == nil {
			pairing = &Pairing{Names: make(map[string]struct{})}
			node.Pairings[row.SecondaryID] = pairing
		}
		pairing.Count++
		if key := nameKey(row.Name); key != "" {
			pairing.Names[key] = struct{}{}
		}

		if row.SourceRef != "" {
			set := res.sources[row.SourceRef]
			if set == nil {
				set = make(map[string]struct{})
				res.sources[row.SourceRef] = set
			}
			set[row.PrimaryID] = struct{}{}
		}
	}
	return res
}

func mergeShards(results []shardResult) *Aggregate {
	nodes := make(map[string]*Node)
	sources := make(map[string]map[string]struct{})
	agg := &Aggregate{Index: make(map[string]int)}

	for _, res := range results {
		agg.Total += res.total
		agg.Malformed += res.malformed
		for id, shardNode := range res.nodes {
			node := nodes[id]
			if node == nil {
				nodes[id] = shardNode
				continue
			}
			node.Count += shardNode.Count
			if shardNode.FirstSeen < node.FirstSeen {
				node.FirstSeen = shardNode.FirstSeen
			}
			for secondary, pairing := range shardNode.Pairings {
				existing := node.Pairings[secondary]
				if existing == nil {
					node.Pairings[secondary] = pairing
					continue
				}
				existing.Count += pairing.Count
				for key := range pairing.Names {
					existing.Names[key] = struct{}{}
				}
			}
		}
		for ref, set := range res.sources {
			existing := sources[ref]
			if existing == nil {
				sources[ref] = set
				continue
			}
			for id := range set {
				existing[id] = struct{}{}
			}
		}
	}

	agg.Nodes = make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		agg.Nodes = append(agg.Nodes, node)
	}
	sort.Slice(agg.Nodes, func(i, j int) bool {
		if agg.Nodes[i].Numeric != agg.Nodes[j].Numeric {
			return agg.Nodes[i].Numeric < agg.Nodes[j].Numeric
		}
		// Distinct raw forms can share a numeric value ("0123" and "123").
		return agg.Nodes[i].PrimaryID < agg.Nodes[j].PrimaryID
	})
	for i, node := range agg.Nodes {
		agg.Index[node.PrimaryID] = i
		if node.Numeric > agg.MaxPrimary {
			agg.MaxPrimary = node.Numeric
		}
	}

	agg.Edges = collectEdges(sources, agg.Index)
	return agg
}

// collectEdges turns each source record's identifier set into deduplicated
// pairs. Pair order and the final edge list are deterministic.
func collectEdges(sources map[string]map[string]struct{}, index map[string]int) [][2]string {
	seen := make(map[[2]string]struct{})
	for _, set := range sources {
		if len(set) < 2 {
			continue
		}
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return index[ids[i]] < index[ids[j]] })
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				seen[[2]string{ids[i], ids[j]}] = struct{}{}
			}
		}
	}

	edges := make([][2]string, 0, len(seen))
	for edge := range seen {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return index[edges[i][0]] < index[edges[j][0]]
		}
		return index[edges[i][1]] < index[edges[j][1]]
	})
	return edges
}
