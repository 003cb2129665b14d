package store

import "time"

// Run is the persisted summary of one engine run.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	ObservationCount int
	MalformedCount   int
	ClusterCount     int
	ConflictCount    int
	RecordCount      int
	MintedCount      int
	// Verified reports whether the run included registry verification.
	Verified bool
}

// Review item kinds. Each kind maps to one way a run can demand human
// attention.
const (
	ReviewAmbiguousMatch   = "ambiguous_match"
	ReviewUnresolvedSplit  = "unresolved_split"
	ReviewLowConfidence    = "low_confidence"
	ReviewRegistryMismatch = "registry_mismatch"
)

// ReviewItem is one entry on the manual-review list.
type ReviewItem struct {
	Kind       string
	PrimaryIDs []string
	Detail     string
}

// CanonicalRecord is the persisted form of a canonical selection.
type CanonicalRecord struct {
	PrimaryID        string
	Minted           bool
	SecondaryID      string
	SecondaryClass   string
	MemberIDs        []string
	NameKeys         []string
	ObservationCount int
	FromSplit        bool
}

// Mapping is one persisted old-to-new identifier redirection.
type Mapping struct {
	OldPrimaryID string
	NewPrimaryID string
	Minted       bool
}

// VerificationResult is the persisted outcome of one record's registry check.
type VerificationResult struct {
	PrimaryID      string
	SecondaryID    string
	Status         string
	Reference      string
	RegisteredName string
	Score          int
}
