package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"stitch/internal/canonical"
	"stitch/internal/classify"
	"stitch/internal/config"
	"stitch/internal/consolidate"
	"stitch/internal/ingest"
	"stitch/internal/logging"
	"stitch/internal/nameutil"
	"stitch/internal/observation"
	"stitch/internal/registry"
	"stitch/internal/runerr"
	"stitch/internal/store"
	"stitch/internal/validate"
)

// Options selects the inputs for one run.
type Options struct {
	// ObservationsPath is the CSV export of raw observation rows.
	ObservationsPath string
	// RegistryPath is the registry extract; empty skips verification.
	RegistryPath string
}

// Summary is everything a completed run produced, as handed to the store and
// to report rendering.
type Summary struct {
	Run           store.Run
	Records       []canonical.Record
	Mappings      []canonical.Mapping
	Reviews       []store.ReviewItem
	Verifications []registry.Outcome
	// Passes is the grouping iteration count; CapHit reports that grouping
	// stopped at the cap instead of converging.
	Passes int
	CapHit bool
}

// Engine runs the consolidation pipeline.
type Engine struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// New constructs an engine. The store may be nil for dry runs; nothing is
// persisted then.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{cfg: cfg, store: st, logger: logger}
}

// Run executes the pipeline. Holding the run lock for the duration keeps
// concurrent invocations from interleaving writes to the same database.
func (e *Engine) Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := e.cfg.EnsureDirectories(); err != nil {
		return nil, runerr.Wrap(runerr.ErrConfiguration, "startup", "ensure directories", "", err)
	}

	lock := flock.New(e.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrTransient, "startup", "acquire lock", e.cfg.LockPath(), err)
	}
	if !locked {
		return nil, runerr.Wrap(runerr.ErrConflict, "startup", "acquire lock", "another run is in progress", nil)
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = runerr.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, e.logger)
	started := time.Now().UTC()
	logger.Info("run started",
		logging.String("observations", opts.ObservationsPath),
		logging.String("registry", opts.RegistryPath),
	)

	summary, err := e.runPhases(ctx, opts)
	if err != nil {
		logger.Error("run aborted", logging.Error(err))
		return nil, err
	}

	summary.Run.ID = runID
	summary.Run.StartedAt = started
	summary.Run.FinishedAt = time.Now().UTC()

	if e.store != nil {
		if err := e.persist(ctx, summary); err != nil {
			logger.Error("run aborted", logging.Error(err))
			return nil, err
		}
	}

	logger.Info("run complete",
		logging.Int("records", len(summary.Records)),
		logging.Int("mappings", len(summary.Mappings)),
		logging.Int("review_items", len(summary.Reviews)),
		logging.Duration("elapsed", summary.Run.FinishedAt.Sub(started)),
	)
	return summary, nil
}

func (e *Engine) runPhases(ctx context.Context, opts Options) (*Summary, error) {
	rules := classify.Rules{
		Blacklist:          e.cfg.Classifier.Blacklist,
		MinTemporaryDigits: e.cfg.Classifier.MinTemporaryDigits,
		MaxTemporaryDigits: e.cfg.Classifier.MaxTemporaryDigits,
	}
	internalMatcher := nameutil.Matcher{
		Threshold:        e.cfg.Matching.InternalThreshold,
		SharedTokenFloor: e.cfg.Matching.SharedTokenFloor,
		AmbiguityBand:    e.cfg.Matching.AmbiguityBand,
	}

	ingestCtx := runerr.WithPhase(ctx, "ingest")
	ingested, err := ingest.ReadCSV(opts.ObservationsPath, logging.WithContext(ingestCtx, e.logger))
	if err != nil {
		return nil, err
	}

	aggregateCtx := runerr.WithPhase(ctx, "aggregate")
	agg, err := observation.Build(aggregateCtx, ingested.Rows, e.cfg.Engine.AggregationWorkers, e.logger)
	if err != nil {
		if errors.Is(err, observation.ErrNoObservations) {
			return nil, runerr.Wrap(runerr.ErrNotFound, "aggregate", "build nodes", "", err)
		}
		return nil, err
	}

	consolidateCtx := runerr.WithPhase(ctx, "consolidate")
	result, err := consolidate.New(agg, internalMatcher, e.cfg.Matching.MaxGroupingPasses, e.logger).Run(consolidateCtx)
	if err != nil {
		return nil, err
	}

	validateCtx := runerr.WithPhase(ctx, "validate")
	validator := validate.New(rules, internalMatcher, e.logger)
	outcome := validator.Validate(validateCtx, result.Clusters)

	selectCtx := runerr.WithPhase(ctx, "select")
	selector := canonical.New(rules, e.cfg.Engine.MintStart, e.logger)
	selection := selector.Select(selectCtx, outcome.Groups, agg.MaxPrimary)

	summary := &Summary{
		Records:  selection.Records,
		Mappings: selection.Mappings,
		Reviews:  collectReviews(result, outcome),
		Passes:   result.Passes,
		CapHit:   result.CapHit,
		Run: store.Run{
			ObservationCount: agg.Total,
			MalformedCount:   agg.Malformed + ingested.Skipped,
			ClusterCount:     len(result.Clusters),
			ConflictCount:    outcome.Conflicts,
			RecordCount:      len(selection.Records),
			MintedCount:      selection.MintedCount,
		},
	}

	if opts.RegistryPath != "" {
		verifyCtx := runerr.WithPhase(ctx, "verify")
		verifications, err := e.verify(verifyCtx, opts.RegistryPath, rules, selection.Records)
		if err != nil {
			return nil, err
		}
		summary.Verifications = verifications
		summary.Run.Verified = true
		for _, verification := range verifications {
			if verification.Status != registry.StatusIncorrectSecondaryID {
				continue
			}
			summary.Reviews = append(summary.Reviews, store.ReviewItem{
				Kind:       store.ReviewRegistryMismatch,
				PrimaryIDs: []string{verification.PrimaryID},
				Detail: fmt.Sprintf("registry name %q scored %d against the record",
					verification.RegisteredName, verification.Score),
			})
		}
	}

	return summary, nil
}

func (e *Engine) verify(ctx context.Context, path string, rules classify.Rules, records []canonical.Record) ([]registry.Outcome, error) {
	entries, err := registry.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	matcher := nameutil.Matcher{
		Threshold:        e.cfg.Matching.VerifyThreshold,
		SharedTokenFloor: e.cfg.Matching.SharedTokenFloor,
	}
	index := registry.NewIndex(entries, rules)
	verifier := registry.NewVerifier(index, matcher, e.cfg.Engine.VerifyConcurrency, e.logger)
	return verifier.Verify(ctx, records)
}

// collectReviews folds the pipeline's review signals into store rows.
func collectReviews(result *consolidate.Result, outcome *validate.Outcome) []store.ReviewItem {
	var reviews []store.ReviewItem
	for _, pair := range result.Ambiguous {
		reviews = append(reviews, store.ReviewItem{
			Kind:       store.ReviewAmbiguousMatch,
			PrimaryIDs: []string{pair.PrimaryA, pair.PrimaryB},
			Detail:     fmt.Sprintf("name score %d fell inside the ambiguity band", pair.Score),
		})
	}
	for _, flag := range outcome.Unresolved {
		reviews = append(reviews, store.ReviewItem{
			Kind:       store.ReviewUnresolvedSplit,
			PrimaryIDs: flag.PrimaryIDs,
			Detail:     flag.Reason,
		})
	}
	for _, flag := range outcome.LowConfidence {
		reviews = append(reviews, store.ReviewItem{
			Kind:       store.ReviewLowConfidence,
			PrimaryIDs: flag.PrimaryIDs,
			Detail:     flag.Reason,
		})
	}
	return reviews
}

func (e *Engine) persist(ctx context.Context, summary *Summary) error {
	records := make([]store.CanonicalRecord, 0, len(summary.Records))
	for _, record := range summary.Records {
		records = append(records, store.CanonicalRecord{
			PrimaryID:        record.PrimaryID,
			Minted:           record.Minted,
			SecondaryID:      record.SecondaryID,
			SecondaryClass:   string(record.SecondaryClass),
			MemberIDs:        record.MemberIDs,
			NameKeys:         record.NameKeys,
			ObservationCount: record.Count,
			FromSplit:        record.FromSplit,
		})
	}
	mappings := make([]store.Mapping, 0, len(summary.Mappings))
	for _, mapping := range summary.Mappings {
		mappings = append(mappings, store.Mapping{
			OldPrimaryID: mapping.OldPrimaryID,
			NewPrimaryID: mapping.NewPrimaryID,
			Minted:       mapping.Minted,
		})
	}
	verifications := make([]store.VerificationResult, 0, len(summary.Verifications))
	for _, verification := range summary.Verifications {
		verifications = append(verifications, store.VerificationResult{
			PrimaryID:      verification.PrimaryID,
			SecondaryID:    verification.SecondaryID,
			Status:         string(verification.Status),
			Reference:      verification.Reference,
			RegisteredName: verification.RegisteredName,
			Score:          verification.Score,
		})
	}

	if err := e.store.SaveRun(ctx, summary.Run, records, mappings, summary.Reviews, verifications); err != nil {
		return runerr.Wrap(runerr.ErrTransient, "persist", "save run", summary.Run.ID, err)
	}
	return nil
}
