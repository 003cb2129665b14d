package observation

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func sampleRows() []Observation {
	return []Observation{
		{PrimaryID: "123", SecondaryID: "34619361", Name: "John Smith", SourceRef: "PAY-001"},
		{PrimaryID: "456", SecondaryID: "34619361", Name: "Smith, John", SourceRef: "PAY-001"},
		{PrimaryID: "123", SecondaryID: "34619361", Name: "J Smith", SourceRef: "PAY-002"},
		{PrimaryID: "789", SecondaryID: "H016310070030", Name: "Mary Jones", SourceRef: "PAY-003"},
		{PrimaryID: "", SecondaryID: "11112222", Name: "No Primary", SourceRef: "PAY-004"},
		{PrimaryID: "12X", SecondaryID: "11112222", Name: "Bad Primary", SourceRef: "PAY-005"},
	}
}

func TestBuildAggregatesNodes(t *testing.T) {
	agg, err := Build(context.Background(), sampleRows(), 2, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if agg.Total != 4 {
		t.Errorf("Total = %d, want 4", agg.Total)
	}
	if agg.Malformed != 2 {
		t.Errorf("Malformed = %d, want 2", agg.Malformed)
	}
	if len(agg.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(agg.Nodes))
	}

	// Nodes sorted by numeric value.
	gotOrder := []string{agg.Nodes[0].PrimaryID, agg.Nodes[1].PrimaryID, agg.Nodes[2].PrimaryID}
	if want := []string{"123", "456", "789"}; !reflect.DeepEqual(gotOrder, want) {
		t.Errorf("node order = %v, want %v", gotOrder, want)
	}

	node := agg.Nodes[agg.Index["123"]]
	if node.Count != 2 {
		t.Errorf("node 123 count = %d, want 2", node.Count)
	}
	wantNames := []string{"j smith", "john smith"}
	if got := node.NameKeys(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("node 123 names = %v, want %v", got, wantNames)
	}
	if agg.MaxPrimary != 789 {
		t.Errorf("MaxPrimary = %d, want 789", agg.MaxPrimary)
	}
}

func TestBuildCollectsCoOccurrenceEdges(t *testing.T) {
	agg, err := Build(context.Background(), sampleRows(), 1, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := [][2]string{{"123", "456"}}
	if !reflect.DeepEqual(agg.Edges, want) {
		t.Errorf("Edges = %v, want %v", agg.Edges, want)
	}
}

func TestBuildShardBoundaryIndependent(t *testing.T) {
	rows := sampleRows()

	single, err := Build(context.Background(), rows, 1, nil)
	if err != nil {
		t.Fatalf("Build(1): %v", err)
	}

	for _, workers := range []int{2, 3, 4} {
		sharded, err := Build(context.Background(), rows, workers, nil)
		if err != nil {
			t.Fatalf("Build(%d): %v", workers, err)
		}
		if len(sharded.Nodes) != len(single.Nodes) {
			t.Fatalf("workers=%d: %d nodes, want %d", workers, len(sharded.Nodes), len(single.Nodes))
		}
		for i, node := range sharded.Nodes {
			ref := single.Nodes[i]
			if node.PrimaryID != ref.PrimaryID || node.Count != ref.Count || node.FirstSeen != ref.FirstSeen {
				t.Errorf("workers=%d node %s: count=%d first=%d, want count=%d first=%d",
					workers, node.PrimaryID, node.Count, node.FirstSeen, ref.Count, ref.FirstSeen)
			}
			if !reflect.DeepEqual(node.NameKeys(), ref.NameKeys()) {
				t.Errorf("workers=%d node %s names differ", workers, node.PrimaryID)
			}
		}
		if !reflect.DeepEqual(sharded.Edges, single.Edges) {
			t.Errorf("workers=%d edges = %v, want %v", workers, sharded.Edges, single.Edges)
		}
	}
}

func TestBuildEmptyInput(t *testing.T) {
	_, err := Build(context.Background(), nil, 4, nil)
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("err = %v, want ErrNoObservations", err)
	}

	onlyMalformed := []Observation{{PrimaryID: "", Name: "x"}}
	_, err = Build(context.Background(), onlyMalformed, 4, nil)
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("err = %v, want ErrNoObservations", err)
	}
}

func TestRowsWithoutSecondaryUseEmptyPairing(t *testing.T) {
	rows := []Observation{
		{PrimaryID: "123", Name: "John Smith", SourceRef: "PAY-001"},
		{PrimaryID: "123", SecondaryID: "34619361", Name: "John Smith", SourceRef: "PAY-002"},
	}
	agg, err := Build(context.Background(), rows, 1, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	node := agg.Nodes[0]
	if got := node.SecondaryIDs(); !reflect.DeepEqual(got, []string{"34619361"}) {
		t.Errorf("SecondaryIDs = %v, want [34619361]", got)
	}
	if node.Pairings[""] == nil || node.Pairings[""].Count != 1 {
		t.Error("missing empty-key pairing for the row without a secondary identifier")
	}
}

func TestBuildOrdersEqualNumericByIdentifier(t *testing.T) {
	rows := []Observation{
		{PrimaryID: "123", SecondaryID: "34619361", Name: "John Smith", SourceRef: "PAY-001"},
		{PrimaryID: "0123", SecondaryID: "11112222", Name: "Mary Jones", SourceRef: "PAY-002"},
	}

	for iter := 0; iter < 20; iter++ {
		agg, err := Build(context.Background(), rows, 2, nil)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		gotOrder := []string{agg.Nodes[0].PrimaryID, agg.Nodes[1].PrimaryID}
		if want := []string{"0123", "123"}; !reflect.DeepEqual(gotOrder, want) {
			t.Fatalf("node order = %v, want %v", gotOrder, want)
		}
	}
}
