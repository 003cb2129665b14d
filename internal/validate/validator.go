package validate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"stitch/internal/classify"
	"stitch/internal/consolidate"
	"stitch/internal/logging"
	"stitch/internal/observation"
)

// Member is one primary identifier's share of a group. For intact clusters it
// covers the whole node; when a node had to be divided by secondary
// identifier, each part carries only its own pairings.
type Member struct {
	Node     *observation.Node
	Pairings map[string]*observation.Pairing
}

// wholeMember wraps a node with all of its evidence.
func wholeMember(node *observation.Node) Member {
	pairings := make(map[string]*observation.Pairing, len(node.Pairings))
	for id, pairing := range node.Pairings {
		pairings[id] = pairing
	}
	return Member{Node: node, Pairings: pairings}
}

// SecondaryIDs returns the member's distinct non-empty secondary identifiers,
// sorted.
func (m Member) SecondaryIDs() []string {
	ids := make([]string, 0, len(m.Pairings))
	for id := range m.Pairings {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// NameKeys returns the sorted union of normalized name keys across the
// member's pairings.
func (m Member) NameKeys() []string {
	seen := make(map[string]struct{})
	for _, pairing := range m.Pairings {
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

// Count returns the member's observation count.
func (m Member) Count() int {
	total := 0
	for _, pairing := range m.Pairings {
		total += pairing.Count
	}
	return total
}

// Group is a validated cluster: it satisfies the one-Temporary/one-Permanent
// constraint. FromSplit marks groups carved out of a conflicted cluster.
type Group struct {
	Members   []Member
	FromSplit bool
}

// PrimaryIDs returns the group's member identifiers in member order.
func (g Group) PrimaryIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, member := range g.Members {
		ids = append(ids, member.Node.PrimaryID)
	}
	return ids
}

// NameKeys returns the sorted union of the group's normalized name keys.
func (g Group) NameKeys() []string {
	seen := make(map[string]struct{})
	for _, member := range g.Members {
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

// SecondaryIDs returns the sorted union of the group's secondary identifiers.
func (g Group) SecondaryIDs() []string {
	seen := make(map[string]struct{})
	for _, member := range g.Members {
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

// Count returns the group's total observation count.
func (g Group) Count() int {
	total := 0
	for _, member := range g.Members {
		total += member.Count()
	}
	return total
}

// Flag is a review item raised while validating.
type Flag struct {
	PrimaryIDs []string
	Reason     string
}

// Outcome carries the validated groups plus everything that needs human eyes.
type Outcome struct {
	Groups []Group
	// Unresolved lists clusters that violated the constraint but could not
	// be split; they produce no canonical record.
	Unresolved []Flag
	// LowConfidence lists split assignments that fell back to a positional
	// default because neither names nor secondary identifiers decided them.
	LowConfidence []Flag
	// Conflicts counts clusters that violated the constraint.
	Conflicts int
}

// Validator applies the classification constraint to converged clusters.
type Validator struct {
	rules   classify.Rules
	matcher interface {
		Match(a, b string) bool
	}
	logger *slog.Logger
}

// maxSplitDepth caps recursive splitting. Each level separates one identifier
// class, so two levels suffice for well-formed data; the cap guards against
// pathological inputs.
const maxSplitDepth = 8

// New creates a validator. The matcher carries the internal threshold.
func New(rules classify.Rules, matcher interface{ Match(a, b string) bool }, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Validator{rules: rules, matcher: matcher, logger: logger}
}

// Validate checks every cluster, splitting violators. Valid clusters pass
// through unchanged.
func (v *Validator) Validate(ctx context.Context, clusters []*consolidate.Cluster) *Outcome {
	logger := logging.WithContext(ctx, v.logger)
	outcome := &Outcome{}

	for _, cluster := range clusters {
		members := make([]Member, 0, len(cluster.Members))
		for _, node := range cluster.Members {
			members = append(members, wholeMember(node))
		}

		if v.classCounts(members).valid() {
			outcome.Groups = append(outcome.Groups, Group{Members: members})
			continue
		}

		outcome.Conflicts++
		groups, flags, ok := v.split(members, 0)
		if !ok {
			ids := memberIDs(members)
			logger.Warn("cluster violates classification constraint and cannot be split",
				logging.String("primary_ids", strings.Join(ids, ",")),
			)
			outcome.Unresolved = append(outcome.Unresolved, Flag{
				PrimaryIDs: ids,
				Reason:     "cluster exceeds one temporary or one permanent secondary identifier and no deterministic split exists",
			})
			continue
		}

		logger.Info("conflicted cluster split",
			logging.String("primary_ids", strings.Join(memberIDs(members), ",")),
			logging.Int("sub_clusters", len(groups)),
		)
		for _, group := range groups {
			group.FromSplit = true
			outcome.Groups = append(outcome.Groups, group)
		}
		outcome.LowConfidence = append(outcome.LowConfidence, flags...)
	}

	logger.Info("validation complete",
		logging.Int("clusters", len(clusters)),
		logging.Int("conflicts", outcome.Conflicts),
		logging.Int("groups", len(outcome.Groups)),
		logging.Int("unresolved", len(outcome.Unresolved)),
	)
	return outcome
}

// classTally is the distinct-identifier count per class for one member set.
type classTally struct {
	temporary []string
	permanent []string
}

func (t classTally) valid() bool {
	return len(t.temporary) <= 1 && len(t.permanent) <= 1
}

// classCounts tallies distinct identifiers per class under trailing-zero
// equivalence, so forms the grouping passes merged ("12345678" and
// "123456780") count as one identifier rather than a conflict. Each
// equivalence key is represented by its smallest observed form.
func (v *Validator) classCounts(members []Member) classTally {
	classes := make(map[string]classify.Class)
	reps := make(map[string]string)
	for _, member := range members {
		for _, id := range member.SecondaryIDs() {
			key := secondaryKey(id)
			if rep, ok := reps[key]; !ok || id < rep {
				reps[key] = id
			}
			class := v.rules.Classify(id)
			if class != classify.ClassInvalid {
				classes[key] = class
			}
		}
	}

	var tally classTally
	for key, class := range classes {
		switch class {
		case classify.ClassTemporary:
			tally.temporary = append(tally.temporary, reps[key])
		case classify.ClassPermanent:
			tally.permanent = append(tally.permanent, reps[key])
		}
	}
	sort.Strings(tally.temporary)
	sort.Strings(tally.permanent)
	return tally
}

// secondaryKey folds a secondary identifier to its trailing-zero equivalence
// key. All-zero identifiers keep their raw form so they stay distinct.
func secondaryKey(id string) string {
	key := strings.TrimRight(id, "0")
	if key == "" {
		return id
	}
	return key
}

func memberIDs(members []Member) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(members))
	for _, member := range members {
		if _, ok := seen[member.Node.PrimaryID]; ok {
			continue
		}
		seen[member.Node.PrimaryID] = struct{}{}
		ids = append(ids, member.Node.PrimaryID)
	}
	sort.Strings(ids)
	return ids
}

func sprintSeed(class classify.Class, id string) string {
	return fmt.Sprintf("%s identifier %s", class, id)
}
