package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"stitch/internal/store"
)

// Table is renderer-agnostic tabular data.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// RightAligned lists zero-based column indexes holding numeric data.
	RightAligned []int
}

// RunSummary shapes one run's headline numbers.
func RunSummary(run store.Run) Table {
	verified := "no"
	if run.Verified {
		verified = "yes"
	}
	return Table{
		Title:   "Run " + run.ID,
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Started", run.StartedAt.Format(time.RFC3339)},
			{"Finished", run.FinishedAt.Format(time.RFC3339)},
			{"Elapsed", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()},
			{"Observations", strconv.Itoa(run.ObservationCount)},
			{"Malformed rows", strconv.Itoa(run.MalformedCount)},
			{"Clusters", strconv.Itoa(run.ClusterCount)},
			{"Conflicts", strconv.Itoa(run.ConflictCount)},
			{"Canonical records", strconv.Itoa(run.RecordCount)},
			{"Minted identifiers", strconv.Itoa(run.MintedCount)},
			{"Registry verified", verified},
		},
	}
}

// RunList shapes recent runs, newest first.
func RunList(runs []store.Run) Table {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.FinishedAt.Format(time.RFC3339),
			strconv.Itoa(run.ObservationCount),
			strconv.Itoa(run.RecordCount),
			strconv.Itoa(run.MintedCount),
		})
	}
	return Table{
		Title:        "Runs",
		Headers:      []string{"Run", "Finished", "Observations", "Records", "Minted"},
		Rows:         rows,
		RightAligned: []int{2, 3, 4},
	}
}

// CanonicalRecords shapes a run's canonical output, one row per record.
func CanonicalRecords(records []store.CanonicalRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		flags := make([]string, 0, 2)
		if record.Minted {
			flags = append(flags, "minted")
		}
		if record.FromSplit {
			flags = append(flags, "split")
		}
		rows = append(rows, []string{
			record.PrimaryID,
			record.SecondaryID,
			record.SecondaryClass,
			strings.Join(record.MemberIDs, " "),
			strings.Join(record.NameKeys, "; "),
			strconv.Itoa(record.ObservationCount),
			strings.Join(flags, ","),
		})
	}
	return Table{
		Title:        "Canonical records",
		Headers:      []string{"Primary", "Secondary", "Class", "Members", "Names", "Obs", "Flags"},
		Rows:         rows,
		RightAligned: []int{5},
	}
}

// Mappings shapes a run's identifier redirections.
func Mappings(mappings []store.Mapping) Table {
	rows := make([][]string, 0, len(mappings))
	for _, mapping := range mappings {
		kind := "merge"
		if mapping.Minted {
			kind = "mint"
		}
		rows = append(rows, []string{mapping.OldPrimaryID, mapping.NewPrimaryID, kind})
	}
	return Table{
		Title:   "Identifier mappings",
		Headers: []string{"Old", "New", "Kind"},
		Rows:    rows,
	}
}

// ReviewItems shapes a run's manual-review list.
func ReviewItems(items []store.ReviewItem) Table {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Kind,
			strings.Join(item.PrimaryIDs, " "),
			item.Detail,
		})
	}
	return Table{
		Title:   "Review items",
		Headers: []string{"Kind", "Identifiers", "Detail"},
		Rows:    rows,
	}
}

// VerificationBreakdown shapes per-status counts plus the failing records.
func VerificationBreakdown(results []store.VerificationResult) Table {
	counts := make(map[string]int)
	for _, result := range results {
		counts[result.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		share := float64(counts[status]) / float64(len(results)) * 100
		rows = append(rows, []string{
			status,
			strconv.Itoa(counts[status]),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	return Table{
		Title:        "Verification outcomes",
		Headers:      []string{"Status", "Records", "Share"},
		Rows:         rows,
		RightAligned: []int{1, 2},
	}
}

// VerificationFailures shapes the records that did not verify cleanly.
func VerificationFailures(results []store.VerificationResult) Table {
	rows := make([][]string, 0)
	for _, result := range results {
		if result.Status == "verified" {
			continue
		}
		rows = append(rows, []string{
			result.PrimaryID,
			result.SecondaryID,
			result.Status,
			result.RegisteredName,
			strconv.Itoa(result.Score),
		})
	}
	return Table{
		Title:        "Verification failures",
		Headers:      []string{"Primary", "Secondary", "Status", "Registered name", "Score"},
		Rows:         rows,
		RightAligned: []int{4},
	}
}
