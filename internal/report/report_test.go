package report

import (
	"reflect"
	"testing"
	"time"

	"stitch/internal/store"
)

func TestRunSummary(t *testing.T) {
	run := store.Run{
		ID:               "run-1",
		StartedAt:        time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		FinishedAt:       time.Date(2026, 8, 29, 12, 0, 3, 0, time.UTC),
		ObservationCount: 100,
		RecordCount:      42,
		Verified:         true,
	}

	table := RunSummary(run)

	if table.Title != "Run run-1" {
		t.Errorf("Title = %q", table.Title)
	}
	want := map[string]string{
		"Observations":      "100",
		"Canonical records": "42",
		"Registry verified": "yes",
		"Elapsed":           "3s",
	}
	got := make(map[string]string, len(table.Rows))
	for _, row := range table.Rows {
		got[row[0]] = row[1]
	}
	for field, value := range want {
		if got[field] != value {
			t.Errorf("%s = %q, want %q", field, got[field], value)
		}
	}
}

func TestCanonicalRecordsFlags(t *testing.T) {
	records := []store.CanonicalRecord{
		{PrimaryID: "100", SecondaryID: "34619361", SecondaryClass: "temporary",
			MemberIDs: []string{"100", "200"}, NameKeys: []string{"john smith"}, ObservationCount: 3},
		{PrimaryID: "5000000", Minted: true, FromSplit: true, SecondaryClass: "permanent",
			MemberIDs: []string{"300"}, NameKeys: []string{"mary jones"}, ObservationCount: 1},
	}

	table := CanonicalRecords(records)

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if got := table.Rows[0][6]; got != "" {
		t.Errorf("plain record flags = %q, want empty", got)
	}
	if got := table.Rows[1][6]; got != "minted,split" {
		t.Errorf("minted record flags = %q, want minted,split", got)
	}
	if got := table.Rows[0][3]; got != "100 200" {
		t.Errorf("members = %q, want %q", got, "100 200")
	}
}

func TestVerificationBreakdown(t *testing.T) {
	results := []store.VerificationResult{
		{PrimaryID: "1", Status: "verified"},
		{PrimaryID: "2", Status: "verified"},
		{PrimaryID: "3", Status: "not_found"},
		{PrimaryID: "4", Status: "incorrect_secondary_id"},
	}

	table := VerificationBreakdown(results)

	want := [][]string{
		{"incorrect_secondary_id", "1", "25.0%"},
		{"not_found", "1", "25.0%"},
		{"verified", "2", "50.0%"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("Rows = %v, want %v", table.Rows, want)
	}
}

func TestVerificationFailuresExcludesVerified(t *testing.T) {
	results := []store.VerificationResult{
		{PrimaryID: "1", Status: "verified", Score: 100},
		{PrimaryID: "2", SecondaryID: "999", Status: "not_found"},
	}

	table := VerificationFailures(results)

	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(table.Rows))
	}
	if table.Rows[0][0] != "2" {
		t.Errorf("row = %v", table.Rows[0])
	}
}

func TestMappingsKind(t *testing.T) {
	mappings := []store.Mapping{
		{OldPrimaryID: "200", NewPrimaryID: "100"},
		{OldPrimaryID: "300", NewPrimaryID: "5000000", Minted: true},
	}

	table := Mappings(mappings)

	if table.Rows[0][2] != "merge" || table.Rows[1][2] != "mint" {
		t.Errorf("kinds = %q, %q", table.Rows[0][2], table.Rows[1][2])
	}
}
