package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"stitch/internal/logging"
	"stitch/internal/observation"
	"stitch/internal/runerr"
)

// observation export column headers.
const (
	columnPrimaryID   = "primary_id"
	columnSecondaryID = "secondary_id"
	columnName        = "name"
	columnSourceRef   = "source_ref"
)

// Result carries the parsed rows plus ingest-level counts for the run
// summary.
type Result struct {
	Rows []observation.Observation
	// Skipped counts rows the CSV layer rejected, distinct from rows the
	// aggregator later classifies as malformed.
	Skipped int
	Total   int
}

// ReadCSV loads an observation export. The header row must name primary_id
// and name; secondary_id and source_ref are optional columns. Structurally
// broken rows are logged and skipped rather than aborting the run.
func ReadCSV(path string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrNotFound, "ingest", "open observations", path, err)
	}
	defer f.Close()

	result, err := readRows(f, logger)
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrMalformedInput, "ingest", "read observations", path, err)
	}
	logger.Info("observations ingested",
		logging.String("path", path),
		logging.Int("rows", len(result.Rows)),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

func readRows(r io.Reader, logger *slog.Logger) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("export is empty")
	}
	if err != nil {
		return nil, err
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	line := 1
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.Skipped++
			logger.Warn("skipping unparseable row",
				logging.Int("line", line),
				logging.Error(err),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Total++
		result.Rows = append(result.Rows, observation.Observation{
			PrimaryID:   field(row, columns.index(columnPrimaryID)),
			SecondaryID: field(row, columns.index(columnSecondaryID)),
			Name:        field(row, columns.index(columnName)),
			SourceRef:   field(row, columns.index(columnSourceRef)),
		})
	}
	return result, nil
}

type columnMap map[string]int

func (c columnMap) index(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

func mapColumns(header []string) (columnMap, error) {
	columns := make(columnMap, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{columnPrimaryID, columnName} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("export header missing %q column", required)
		}
	}
	return columns, nil
}

func field(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
