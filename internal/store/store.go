package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"stitch/internal/config"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveRun persists a completed run and all of its outputs in one
// transaction.
func (s *Store) SaveRun(
	ctx context.Context,
	run Run,
	records []CanonicalRecord,
	mappings []Mapping,
	reviews []ReviewItem,
	verifications []VerificationResult,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, observation_count, malformed_count,
            cluster_count, conflict_count, record_count, minted_count, verified
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.ObservationCount,
		run.MalformedCount,
		run.ClusterCount,
		run.ConflictCount,
		run.RecordCount,
		run.MintedCount,
		boolToInt(run.Verified),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, record := range records {
		memberIDs, err := json.Marshal(record.MemberIDs)
		if err != nil {
			return fmt.Errorf("marshal member ids: %w", err)
		}
		nameKeys, err := json.Marshal(record.NameKeys)
		if err != nil {
			return fmt.Errorf("marshal name keys: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO canonical_records (
                run_id, primary_id, minted, secondary_id, secondary_class,
                member_ids, name_keys, observation_count, from_split
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			record.PrimaryID,
			boolToInt(record.Minted),
			record.SecondaryID,
			record.SecondaryClass,
			string(memberIDs),
			string(nameKeys),
			record.ObservationCount,
			boolToInt(record.FromSplit),
		)
		if err != nil {
			return fmt.Errorf("insert canonical record %s: %w", record.PrimaryID, err)
		}
	}

	for _, mapping := range mappings {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO id_mappings (run_id, old_primary_id, new_primary_id, minted)
             VALUES (?, ?, ?, ?)`,
			run.ID, mapping.OldPrimaryID, mapping.NewPrimaryID, boolToInt(mapping.Minted),
		)
		if err != nil {
			return fmt.Errorf("insert mapping %s: %w", mapping.OldPrimaryID, err)
		}
	}

	for _, review := range reviews {
		primaryIDs, err := json.Marshal(review.PrimaryIDs)
		if err != nil {
			return fmt.Errorf("marshal review ids: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO review_items (run_id, kind, primary_ids, detail)
             VALUES (?, ?, ?, ?)`,
			run.ID, review.Kind, string(primaryIDs), review.Detail,
		)
		if err != nil {
			return fmt.Errorf("insert review item: %w", err)
		}
	}

	for _, verification := range verifications {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO verification_results (
                run_id, primary_id, secondary_id, status, reference,
                registered_name, score
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			verification.PrimaryID,
			verification.SecondaryID,
			verification.Status,
			verification.Reference,
			verification.RegisteredName,
			verification.Score,
		)
		if err != nil {
			return fmt.Errorf("insert verification result %s: %w", verification.PrimaryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
