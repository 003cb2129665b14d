package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"stitch/internal/runerr"
)

// extract column headers. The loader matches by header name so column order
// in the export does not matter.
const (
	columnSecondaryID = "secondary_id"
	columnName        = "full_name"
	columnCrossRefs   = "cross_refs"
	columnReference   = "reference"
)

// LoadCSV reads a registry extract. The file must carry a header row naming
// the secondary_id, full_name, cross_refs and reference columns; cross_refs
// is pipe-delimited. Rows missing both a secondary identifier and
// cross-references carry nothing to match against and are skipped.
func LoadCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrNotFound, "verify", "load registry", path, err)
	}
	defer f.Close()

	entries, err := readExtract(f)
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrMalformedInput, "verify", "load registry", path, err)
	}
	return entries, nil
}

func readExtract(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("extract is empty")
	}
	if err != nil {
		return nil, err
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entry := Entry{
			SecondaryID: field(row, columns.index(columnSecondaryID)),
			Name:        field(row, columns.index(columnName)),
			CrossRefs:   splitCrossRefs(field(row, columns.index(columnCrossRefs))),
			Reference:   field(row, columns.index(columnReference)),
		}
		if entry.SecondaryID == "" && len(entry.CrossRefs) == 0 {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type columnMap map[string]int

// index returns the column position, or -1 for columns the extract omits.
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
	for _, required := range []string{columnSecondaryID, columnName} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("extract header missing %q column", required)
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
