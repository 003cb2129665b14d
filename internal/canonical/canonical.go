package canonical

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"stitch/internal/classify"
	"stitch/internal/logging"
	"stitch/internal/validate"
)

// Record is the consolidated output for one person: the surviving primary
// identifier, the best secondary identifier, and the evidence behind them.
type Record struct {
	// PrimaryID is the canonical primary identifier, observed or minted.
	PrimaryID string
	// Minted is true when PrimaryID was issued by the selector because the
	// group's own identifiers were already claimed by another group.
	Minted bool
	// SecondaryID is the canonical secondary identifier: the group's
	// Permanent identifier when present, else its Temporary one, else empty.
	SecondaryID    string
	SecondaryClass classify.Class
	// MemberIDs lists the observed primary identifiers folded into this
	// record, sorted.
	MemberIDs []string
	NameKeys  []string
	Count     int
	FromSplit bool
}

// Mapping records one observed primary identifier's redirection to its
// canonical replacement.
type Mapping struct {
	OldPrimaryID string
	NewPrimaryID string
	Minted       bool
}

// Result carries the selected records and the full old-to-new mapping.
type Result struct {
	Records  []Record
	Mappings []Mapping
	// MintedCount is the number of identifiers the selector issued.
	MintedCount int
	// NextMint is the counter value after the run, for audit output.
	NextMint int64
}

// Selector chooses canonical identifiers for validated groups.
type Selector struct {
	rules classify.Rules
	// mintStart floors the minted-identifier sequence; zero means derive it
	// purely from the observed maximum.
	mintStart int64
	logger    *slog.Logger
}

func New(rules classify.Rules, mintStart int64, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{rules: rules, mintStart: mintStart, logger: logger}
}

// Select picks each group's canonical identifiers. maxObserved is the largest
// primary identifier value seen during aggregation; minted identifiers start
// above it so they can never collide with observed ones.
//
// Groups are processed smallest-constituent first, earliest-observed breaking
// ties, so mint assignment is reproducible run to run.
func (s *Selector) Select(ctx context.Context, groups []validate.Group, maxObserved int64) *Result {
	logger := logging.WithContext(ctx, s.logger)

	ordered := make([]validate.Group, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		ni, fi := groupOrder(ordered[i])
		nj, fj := groupOrder(ordered[j])
		if ni != nj {
			return ni < nj
		}
		return fi < fj
	})

	counter := maxObserved + 1
	if s.mintStart > counter {
		counter = s.mintStart
	}

	result := &Result{}
	claimed := make(map[string]struct{})

	for _, group := range ordered {
		winner := selectWinner(group.Members)
		primary := winner.Node.PrimaryID
		minted := false
		if _, taken := claimed[primary]; taken {
			primary = strconv.FormatInt(counter, 10)
			counter++
			minted = true
			result.MintedCount++
			logger.Info("minted replacement identifier",
				logging.String("observed_id", winner.Node.PrimaryID),
				logging.String("minted_id", primary),
			)
		}
		claimed[primary] = struct{}{}

		secondaryID, secondaryClass := s.selectSecondary(group)
		record := Record{
			PrimaryID:      primary,
			Minted:         minted,
			SecondaryID:    secondaryID,
			SecondaryClass: secondaryClass,
			MemberIDs:      memberIDs(group),
			NameKeys:       group.NameKeys(),
			Count:          group.Count(),
			FromSplit:      group.FromSplit,
		}
		result.Records = append(result.Records, record)

		for _, old := range record.MemberIDs {
			if old == primary {
				continue
			}
			result.Mappings = append(result.Mappings, Mapping{
				OldPrimaryID: old,
				NewPrimaryID: primary,
				Minted:       minted,
			})
		}
	}

	result.NextMint = counter
	logger.Info("canonical selection complete",
		logging.Int("records", len(result.Records)),
		logging.Int("mappings", len(result.Mappings)),
		logging.Int("minted", result.MintedCount),
	)
	return result
}

// selectWinner picks the member carrying the canonical identifier: highest
// observation count, then fewest digits, then smallest value.
func selectWinner(members []validate.Member) validate.Member {
	winner := members[0]
	for _, member := range members[1:] {
		if betterWinner(member, winner) {
			winner = member
		}
	}
	return winner
}

func betterWinner(a, b validate.Member) bool {
	if a.Count() != b.Count() {
		return a.Count() > b.Count()
	}
	if len(a.Node.PrimaryID) != len(b.Node.PrimaryID) {
		return len(a.Node.PrimaryID) < len(b.Node.PrimaryID)
	}
	return a.Node.Numeric < b.Node.Numeric
}

// selectSecondary picks the group's canonical secondary identifier. A
// validated group holds at most one Permanent and one Temporary identifier;
// Permanent wins when both exist.
func (s *Selector) selectSecondary(group validate.Group) (string, classify.Class) {
	var temporary string
	for _, id := range group.SecondaryIDs() {
		switch s.rules.Classify(id) {
		case classify.ClassPermanent:
			return id, classify.ClassPermanent
		case classify.ClassTemporary:
			if temporary == "" {
				temporary = id
			}
		}
	}
	if temporary != "" {
		return temporary, classify.ClassTemporary
	}
	return "", classify.ClassInvalid
}

func memberIDs(group validate.Group) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(group.Members))
	for _, member := range group.Members {
		if _, ok := seen[member.Node.PrimaryID]; ok {
			continue
		}
		seen[member.Node.PrimaryID] = struct{}{}
		ids = append(ids, member.Node.PrimaryID)
	}
	sort.Strings(ids)
	return ids
}

// groupOrder is the deterministic processing key: smallest constituent value,
// then earliest first observation.
func groupOrder(group validate.Group) (int64, int) {
	minNumeric := group.Members[0].Node.Numeric
	minFirst := group.Members[0].Node.FirstSeen
	for _, member := range group.Members[1:] {
		if member.Node.Numeric < minNumeric {
			minNumeric = member.Node.Numeric
		}
		if member.Node.FirstSeen < minFirst {
			minFirst = member.Node.FirstSeen
		}
	}
	return minNumeric, minFirst
}
