package observation

import (
	"sort"
	"strconv"
	"strings"

	"stitch/internal/nameutil"
)

// Observation is one raw input row. Rows are read-only once ingested; many
// rows may repeat the same identifier pairing.
type Observation struct {
	PrimaryID   string
	SecondaryID string
	Name        string
	SourceRef   string
}

// Pairing accumulates the evidence tying one primary identifier to one
// secondary identifier: the normalized names seen on those rows and how many
// rows carried the pairing.
type Pairing struct {
	Names map[string]struct{}
	Count int
}

// Node is one distinct primary identifier with everything ever observed
// alongside it.
type Node struct {
	PrimaryID string
	// Numeric is the parsed identifier value, used for deterministic ordering
	// and for seeding the minted-identifier sequence.
	Numeric int64
	// Pairings is keyed by secondary identifier; the empty key collects rows
	// that carried no secondary identifier.
	Pairings map[string]*Pairing
	// Count is the total observation count across all pairings.
	Count int
	// FirstSeen is the input index of the node's earliest observation.
	FirstSeen int
}

// SecondaryIDs returns the node's distinct non-empty secondary identifiers in
// sorted order.
func (n *Node) SecondaryIDs() []string {
	ids := make([]string, 0, len(n.Pairings))
	for id := range n.Pairings {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// NameKeys returns the sorted union of normalized name keys across all
// pairings.
func (n *Node) NameKeys() []string {
	seen := make(map[string]struct{})
	for _, pairing := range n.Pairings {
		for key := range pairing.Names {
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

// normalize validates a raw row and returns its cleaned form. The second
// return is false for rows that cannot join the graph: a missing or
// non-numeric primary identifier leaves nothing to consolidate.
func normalize(row Observation) (Observation, bool) {
	row.PrimaryID = strings.TrimSpace(row.PrimaryID)
	row.SecondaryID = strings.TrimSpace(row.SecondaryID)
	row.SourceRef = strings.TrimSpace(row.SourceRef)
	if row.PrimaryID == "" {
		return row, false
	}
	if _, err := strconv.ParseInt(row.PrimaryID, 10, 64); err != nil {
		return row, false
	}
	return row, true
}

// nameKey is the normalized comparison form stored on pairings. Rows with
// unusable names contribute counts but no name evidence.
func nameKey(raw string) string {
	return nameutil.Key(raw)
}
