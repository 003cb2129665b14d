package registry

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"stitch/internal/canonical"
	"stitch/internal/logging"
	"stitch/internal/nameutil"
)

// Status is the verification outcome for one canonical record.
type Status string

const (
	// StatusVerified means a registry entry matched on identifier and name.
	StatusVerified Status = "verified"
	// StatusIncorrectSecondaryID means an identifier hit whose registered
	// name failed the name check.
	StatusIncorrectSecondaryID Status = "incorrect_secondary_id"
	// StatusMissingSecondaryID means the record carries no secondary
	// identifier and nothing in the registry references it.
	StatusMissingSecondaryID Status = "missing_secondary_id"
	// StatusNotFound means the record's identifiers appear nowhere in the
	// extract.
	StatusNotFound Status = "not_found"
)

// Outcome is one record's verification result.
type Outcome struct {
	PrimaryID   string
	SecondaryID string
	Status      Status
	// Reference is the matched entry's registry reference, set only for
	// StatusVerified.
	Reference string
	// RegisteredName is the name on the entry that decided the outcome, for
	// the review report.
	RegisteredName string
	// Score is the best name score against the deciding entry.
	Score int
}

// Verifier checks canonical records against the indexed extract.
type Verifier struct {
	index       *Index
	matcher     nameutil.Matcher
	concurrency int
	logger      *slog.Logger
}

// NewVerifier builds a verifier. The matcher carries the external
// verification threshold, which is at least as strict as the internal one.
func NewVerifier(index *Index, matcher nameutil.Matcher, concurrency int, logger *slog.Logger) *Verifier {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Verifier{index: index, matcher: matcher, concurrency: concurrency, logger: logger}
}

// Verify checks every record in parallel. Results come back in record order;
// records are never modified.
func (v *Verifier) Verify(ctx context.Context, records []canonical.Record) ([]Outcome, error) {
	logger := logging.WithContext(ctx, v.logger)
	outcomes := make([]Outcome, len(records))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(v.concurrency)
	for i := range records {
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = v.verifyRecord(records[i])
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	tally := make(map[Status]int, 4)
	for _, outcome := range outcomes {
		tally[outcome.Status]++
	}
	logger.Info("verification complete",
		logging.Int("records", len(records)),
		logging.Int("verified", tally[StatusVerified]),
		logging.Int("incorrect", tally[StatusIncorrectSecondaryID]),
		logging.Int("missing", tally[StatusMissingSecondaryID]),
		logging.Int("not_found", tally[StatusNotFound]),
	)
	return outcomes, nil
}

func (v *Verifier) verifyRecord(record canonical.Record) Outcome {
	outcome := Outcome{
		PrimaryID:   record.PrimaryID,
		SecondaryID: record.SecondaryID,
	}

	candidates := v.index.BySecondary(record.SecondaryID)
	if len(candidates) == 0 {
		candidates = v.index.ByCrossRef(record.PrimaryID)
	}
	if len(candidates) == 0 {
		if record.SecondaryID == "" {
			outcome.Status = StatusMissingSecondaryID
		} else {
			outcome.Status = StatusNotFound
		}
		return outcome
	}

	// An identifier hit exists; the name check decides between verified and
	// incorrect. The best-scoring entry is reported either way.
	best := candidates[0]
	bestScore := -1
	for _, entry := range candidates {
		for _, name := range record.NameKeys {
			score, result := v.matcher.Compare(name, entry.Name)
			if score > bestScore {
				best, bestScore = entry, score
			}
			if result == nameutil.OutcomeMatch {
				outcome.Status = StatusVerified
				outcome.Reference = entry.Reference
				outcome.RegisteredName = entry.Name
				outcome.Score = score
				return outcome
			}
		}
	}

	if bestScore < 0 {
		bestScore = 0
	}
	outcome.Status = StatusIncorrectSecondaryID
	outcome.RegisteredName = best.Name
	outcome.Score = bestScore
	return outcome
}
