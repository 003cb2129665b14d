package registry

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"stitch/internal/classify"
)

func TestNewIndexFiltersInvalidCrossRefs(t *testing.T) {
	entries := []Entry{
		{
			SecondaryID: "H016310070030",
			Name:        "John Smith",
			CrossRefs:   []string{"34619361", "UNKNOWN", "", "12345678"},
			Reference:   "REG-1",
		},
	}
	idx := NewIndex(entries, classify.DefaultRules())

	if got := idx.ByCrossRef("34619361"); len(got) != 1 {
		t.Errorf("ByCrossRef(34619361) returned %d entries, want 1", len(got))
	}
	if got := idx.ByCrossRef("UNKNOWN"); len(got) != 0 {
		t.Errorf("ByCrossRef(UNKNOWN) returned %d entries, want 0", len(got))
	}
	if got := idx.BySecondary("H016310070030"); len(got) != 1 || got[0].Reference != "REG-1" {
		t.Errorf("BySecondary returned %v, want the REG-1 entry", got)
	}
}

func TestIndexOrdersDuplicateKeysByReference(t *testing.T) {
	entries := []Entry{
		{SecondaryID: "34619361", Name: "B Person", Reference: "REG-2"},
		{SecondaryID: "34619361", Name: "A Person", Reference: "REG-1"},
	}
	idx := NewIndex(entries, classify.DefaultRules())

	got := idx.BySecondary("34619361")
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Reference != "REG-1" || got[1].Reference != "REG-2" {
		t.Errorf("order = [%s %s], want [REG-1 REG-2]", got[0].Reference, got[1].Reference)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.csv")
	content := strings.Join([]string{
		"secondary_id,full_name,cross_refs,reference",
		"H016310070030,John Smith,34619361|UNKNOWN,REG-1",
		"34619362,Mary Jones,,REG-2",
		",No Identifiers,,REG-3",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	want := []Entry{
		{
			SecondaryID: "H016310070030",
			Name:        "John Smith",
			CrossRefs:   []string{"34619361", "UNKNOWN"},
			Reference:   "REG-1",
		},
		{SecondaryID: "34619362", Name: "Mary Jones", Reference: "REG-2"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v, want %+v", entries, want)
	}
}

func TestLoadCSVColumnOrderDoesNotMatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.csv")
	content := strings.Join([]string{
		"reference,full_name,secondary_id",
		"REG-1,John Smith,H016310070030",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].SecondaryID != "H016310070030" || entries[0].Reference != "REG-1" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestLoadCSVRejectsMissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.csv")
	if err := os.WriteFile(path, []byte("id,name\n1,x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCSV(path); err == nil {
		t.Fatal("LoadCSV accepted an extract without the required columns")
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("LoadCSV succeeded on a missing file")
	}
}
