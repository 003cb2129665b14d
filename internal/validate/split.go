package validate

import (
	"fmt"
	"sort"

	"stitch/internal/classify"
	"stitch/internal/observation"
)

// split partitions a conflicted member set into groups that each satisfy the
// classification constraint.
//
// Policy: the class with more distinct identifiers seeds the split (ties go
// to Permanent). One bucket is created per seed identifier. Members owning
// exactly one seed follow it; members owning several are divided by pairing,
// since a primary identifier observed against two distinct same-class
// identifiers is exactly the shared-number case the split exists for.
// Seedless members join the bucket whose names match theirs, then the bucket
// sharing a secondary identifier with them, and as a last resort the first
// bucket, which is flagged for review. Buckets still in violation afterwards
// are split again on the remaining class.
func (v *Validator) split(members []Member, depth int) ([]Group, []Flag, bool) {
	tally := v.classCounts(members)
	if tally.valid() {
		return []Group{{Members: members}}, nil, true
	}
	if depth >= maxSplitDepth {
		return nil, nil, false
	}

	seedClass, seeds := chooseSeeds(tally)
	buckets := make([][]Member, len(seeds))
	seedIndex := make(map[string]int, len(seeds))
	for i, seed := range seeds {
		seedIndex[secondaryKey(seed)] = i
	}

	var deferred []Member
	var flags []Flag

	for _, member := range members {
		owned := ownedSeeds(member, seedIndex)
		switch len(owned) {
		case 0:
			deferred = append(deferred, member)
		case 1:
			idx := seedIndex[owned[0]]
			buckets[idx] = append(buckets[idx], member)
		default:
			v.divideMember(member, owned, seedIndex, buckets)
		}
	}

	for _, member := range deferred {
		idx, confident := v.placeSeedless(member, buckets)
		buckets[idx] = append(buckets[idx], member)
		if !confident {
			flags = append(flags, Flag{
				PrimaryIDs: []string{member.Node.PrimaryID},
				Reason: fmt.Sprintf("assigned to sub-cluster of %s by position only",
					sprintSeed(seedClass, seeds[idx])),
			})
		}
	}

	var groups []Group
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		subGroups, subFlags, ok := v.split(bucket, depth+1)
		if !ok {
			return nil, nil, false
		}
		groups = append(groups, subGroups...)
		flags = append(flags, subFlags...)
	}
	if len(groups) < 2 {
		// Splitting must separate people; a single surviving group means the
		// conflict is still intact.
		return nil, nil, false
	}
	return groups, flags, true
}

// chooseSeeds picks the identifier class to split on and its seed values.
func chooseSeeds(tally classTally) (classify.Class, []string) {
	if len(tally.temporary) > len(tally.permanent) {
		return classify.ClassTemporary, tally.temporary
	}
	return classify.ClassPermanent, tally.permanent
}

// ownedSeeds lists the seed equivalence keys a member's secondary
// identifiers resolve to.
func ownedSeeds(member Member, seedIndex map[string]int) []string {
	seen := make(map[string]struct{})
	var owned []string
	for _, id := range member.SecondaryIDs() {
		key := secondaryKey(id)
		if _, ok := seedIndex[key]; !ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		owned = append(owned, key)
	}
	sort.Strings(owned)
	return owned
}

// divideMember carves a member owning several seed identifiers into one piece
// per seed key. Each piece keeps the names and counts observed against its
// seed's equivalent forms; the remaining pairings follow the seed whose names
// they resemble most, with ties and blanks going to the smallest seed.
func (v *Validator) divideMember(member Member, owned []string, seedIndex map[string]int, buckets [][]Member) {
	pieces := make(map[string]Member, len(owned))
	for _, seed := range owned {
		pieces[seed] = Member{
			Node:     member.Node,
			Pairings: make(map[string]*observation.Pairing),
		}
	}

	rest := make([]string, 0, len(member.Pairings))
	for id := range member.Pairings {
		key := secondaryKey(id)
		if piece, ok := pieces[key]; ok {
			piece.Pairings[id] = member.Pairings[id]
			continue
		}
		rest = append(rest, id)
	}
	sort.Strings(rest)

	for _, id := range rest {
		pairing := member.Pairings[id]
		target := owned[0]
		bestScore := -1
		for _, seed := range owned {
			score := 0
			for _, seedPairing := range pieces[seed].Pairings {
				score += v.pairingAffinity(pairing, seedPairing)
			}
			if score > bestScore {
				bestScore = score
				target = seed
			}
		}
		pieces[target].Pairings[id] = pairing
	}

	for _, seed := range owned {
		idx := seedIndex[seed]
		buckets[idx] = append(buckets[idx], pieces[seed])
	}
}

// pairingAffinity scores how strongly two pairings' name evidence agrees.
func (v *Validator) pairingAffinity(a, b *observation.Pairing) int {
	if a == nil || b == nil {
		return 0
	}
	matched := 0
	for nameA := range a.Names {
		for nameB := range b.Names {
			if nameA == nameB || v.matcher.Match(nameA, nameB) {
				matched++
			}
		}
	}
	return matched
}

// placeSeedless picks the bucket for a member owning no seed identifier.
// Returns the bucket index and whether the placement had real evidence
// behind it.
func (v *Validator) placeSeedless(member Member, buckets [][]Member) (int, bool) {
	names := member.NameKeys()

	// Names first: a match against any already-placed member decides it.
	for idx, bucket := range buckets {
		for _, placed := range bucket {
			for _, nameA := range names {
				for _, nameB := range placed.NameKeys() {
					if nameA == nameB || v.matcher.Match(nameA, nameB) {
						return idx, true
					}
				}
			}
		}
	}

	// Then shared non-seed secondary identifiers, if exactly one bucket has
	// any.
	shared := -1
	for idx, bucket := range buckets {
		if sharesSecondary(member, bucket) {
			if shared >= 0 {
				shared = -1
				break
			}
			shared = idx
		}
	}
	if shared >= 0 {
		return shared, true
	}

	return 0, false
}

func sharesSecondary(member Member, bucket []Member) bool {
	mine := make(map[string]struct{})
	for _, id := range member.SecondaryIDs() {
		mine[secondaryKey(id)] = struct{}{}
	}
	for _, placed := range bucket {
		for _, id := range placed.SecondaryIDs() {
			if _, ok := mine[secondaryKey(id)]; ok {
				return true
			}
		}
	}
	return false
}
