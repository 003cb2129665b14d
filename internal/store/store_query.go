package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stitch/internal/runerr"
)

// LatestRun returns the most recently finished run.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, observation_count, malformed_count,
                cluster_count, conflict_count, record_count, minted_count, verified
         FROM runs ORDER BY finished_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, runerr.Wrap(runerr.ErrNotFound, "report", "latest run", "no runs recorded", nil)
	}
	return run, err
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, observation_count, malformed_count,
                cluster_count, conflict_count, record_count, minted_count, verified
         FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, runerr.Wrap(runerr.ErrNotFound, "report", "get run", id, nil)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, observation_count, malformed_count,
                cluster_count, conflict_count, record_count, minted_count, verified
         FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RecordsForRun returns a run's canonical records ordered by primary id.
func (s *Store) RecordsForRun(ctx context.Context, runID string) ([]CanonicalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT primary_id, minted, secondary_id, secondary_class,
                member_ids, name_keys, observation_count, from_split
         FROM canonical_records WHERE run_id = ? ORDER BY primary_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query canonical records: %w", err)
	}
	defer rows.Close()

	var records []CanonicalRecord
	for rows.Next() {
		var record CanonicalRecord
		var minted, fromSplit int
		var memberIDs, nameKeys string
		err := rows.Scan(&record.PrimaryID, &minted, &record.SecondaryID,
			&record.SecondaryClass, &memberIDs, &nameKeys,
			&record.ObservationCount, &fromSplit)
		if err != nil {
			return nil, fmt.Errorf("scan canonical record: %w", err)
		}
		if err := json.Unmarshal([]byte(memberIDs), &record.MemberIDs); err != nil {
			return nil, fmt.Errorf("decode member ids: %w", err)
		}
		if err := json.Unmarshal([]byte(nameKeys), &record.NameKeys); err != nil {
			return nil, fmt.Errorf("decode name keys: %w", err)
		}
		record.Minted = minted != 0
		record.FromSplit = fromSplit != 0
		records = append(records, record)
	}
	return records, rows.Err()
}

// MappingsForRun returns a run's identifier mappings ordered by old id.
func (s *Store) MappingsForRun(ctx context.Context, runID string) ([]Mapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT old_primary_id, new_primary_id, minted
         FROM id_mappings WHERE run_id = ? ORDER BY old_primary_id, new_primary_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	var mappings []Mapping
	for rows.Next() {
		var mapping Mapping
		var minted int
		if err := rows.Scan(&mapping.OldPrimaryID, &mapping.NewPrimaryID, &minted); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		mapping.Minted = minted != 0
		mappings = append(mappings, mapping)
	}
	return mappings, rows.Err()
}

// ReviewItemsForRun returns a run's manual-review list grouped by kind.
func (s *Store) ReviewItemsForRun(ctx context.Context, runID string) ([]ReviewItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, primary_ids, detail
         FROM review_items WHERE run_id = ? ORDER BY kind, primary_ids`, runID)
	if err != nil {
		return nil, fmt.Errorf("query review items: %w", err)
	}
	defer rows.Close()

	var items []ReviewItem
	for rows.Next() {
		var item ReviewItem
		var primaryIDs string
		if err := rows.Scan(&item.Kind, &primaryIDs, &item.Detail); err != nil {
			return nil, fmt.Errorf("scan review item: %w", err)
		}
		if err := json.Unmarshal([]byte(primaryIDs), &item.PrimaryIDs); err != nil {
			return nil, fmt.Errorf("decode review ids: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// VerificationsForRun returns a run's verification outcomes ordered by
// primary id.
func (s *Store) VerificationsForRun(ctx context.Context, runID string) ([]VerificationResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT primary_id, secondary_id, status, reference, registered_name, score
         FROM verification_results WHERE run_id = ? ORDER BY primary_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query verification results: %w", err)
	}
	defer rows.Close()

	var results []VerificationResult
	for rows.Next() {
		var result VerificationResult
		err := rows.Scan(&result.PrimaryID, &result.SecondaryID, &result.Status,
			&result.Reference, &result.RegisteredName, &result.Score)
		if err != nil {
			return nil, fmt.Errorf("scan verification result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var started, finished string
	var verified int
	err := row.Scan(&run.ID, &started, &finished, &run.ObservationCount,
		&run.MalformedCount, &run.ClusterCount, &run.ConflictCount,
		&run.RecordCount, &run.MintedCount, &verified)
	if err != nil {
		return nil, err
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	run.Verified = verified != 0
	return &run, nil
}
