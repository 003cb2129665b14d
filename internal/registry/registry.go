package registry

import (
	"sort"
	"strings"

	"stitch/internal/classify"
)

// Entry is one row of the registry extract.
type Entry struct {
	// SecondaryID is the registry's authoritative secondary identifier.
	SecondaryID string
	// Name is the registered full name.
	Name string
	// CrossRefs lists historical identifiers recorded against the entry.
	CrossRefs []string
	// Reference is the registry's own internal reference for the entry.
	Reference string
}

// Index holds the extract in memory, keyed for the two lookups verification
// performs: exact secondary-identifier hits and cross-reference hits.
type Index struct {
	bySecondary map[string][]*Entry
	byCrossRef  map[string][]*Entry
	size        int
}

// NewIndex builds the lookup structures. Cross-reference tokens that classify
// as Invalid under the given rules are dropped; they are placeholders, not
// identifiers.
func NewIndex(entries []Entry, rules classify.Rules) *Index {
	idx := &Index{
		bySecondary: make(map[string][]*Entry, len(entries)),
		byCrossRef:  make(map[string][]*Entry),
		size:        len(entries),
	}
	for i := range entries {
		entry := &entries[i]
		if key := strings.TrimSpace(entry.SecondaryID); key != "" {
			idx.bySecondary[key] = append(idx.bySecondary[key], entry)
		}
		for _, ref := range entry.CrossRefs {
			ref = strings.TrimSpace(ref)
			if ref == "" || rules.Classify(ref) == classify.ClassInvalid {
				continue
			}
			idx.byCrossRef[ref] = append(idx.byCrossRef[ref], entry)
		}
	}
	return idx
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return idx.size
}

// BySecondary returns the entries registered under a secondary identifier,
// ordered by registry reference.
func (idx *Index) BySecondary(id string) []*Entry {
	return ordered(idx.bySecondary[strings.TrimSpace(id)])
}

// ByCrossRef returns the entries whose historical identifiers include id,
// ordered by registry reference.
func (idx *Index) ByCrossRef(id string) []*Entry {
	return ordered(idx.byCrossRef[strings.TrimSpace(id)])
}

func ordered(entries []*Entry) []*Entry {
	if len(entries) < 2 {
		return entries
	}
	out := make([]*Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out
}

// splitCrossRefs parses the pipe-delimited historical-identifier field.
func splitCrossRefs(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, "|")
	refs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			refs = append(refs, part)
		}
	}
	return refs
}
