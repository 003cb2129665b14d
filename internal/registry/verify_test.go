package registry

import (
	"context"
	"testing"

	"stitch/internal/canonical"
	"stitch/internal/classify"
	"stitch/internal/nameutil"
)

func testVerifier(entries []Entry) *Verifier {
	idx := NewIndex(entries, classify.DefaultRules())
	matcher := nameutil.Matcher{Threshold: 85, SharedTokenFloor: 2}
	return NewVerifier(idx, matcher, 4, nil)
}

func TestVerifyOutcomes(t *testing.T) {
	entries := []Entry{
		{
			SecondaryID: "H016310070030",
			Name:        "John Smith",
			CrossRefs:   []string{"34619361"},
			Reference:   "REG-1",
		},
		{SecondaryID: "44556677", Name: "Mary Jones", Reference: "REG-2"},
	}
	v := testVerifier(entries)

	tests := []struct {
		name   string
		record canonical.Record
		want   Status
	}{
		{
			name: "exact hit with matching name",
			record: canonical.Record{
				PrimaryID:   "1001",
				SecondaryID: "H016310070030",
				NameKeys:    []string{"john smith"},
			},
			want: StatusVerified,
		},
		{
			name: "hit with wrong name is never verified",
			record: canonical.Record{
				PrimaryID:   "1002",
				SecondaryID: "H016310070030",
				NameKeys:    []string{"peter wilson"},
			},
			want: StatusIncorrectSecondaryID,
		},
		{
			name: "cross reference hit on primary identifier",
			record: canonical.Record{
				PrimaryID: "34619361",
				NameKeys:  []string{"john smith"},
			},
			want: StatusVerified,
		},
		{
			name: "unknown identifier",
			record: canonical.Record{
				PrimaryID:   "1003",
				SecondaryID: "99999999",
				NameKeys:    []string{"ann other"},
			},
			want: StatusNotFound,
		},
		{
			name: "no secondary identifier and no candidate",
			record: canonical.Record{
				PrimaryID: "1004",
				NameKeys:  []string{"ann other"},
			},
			want: StatusMissingSecondaryID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes, err := v.Verify(context.Background(), []canonical.Record{tt.record})
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if outcomes[0].Status != tt.want {
				t.Errorf("Status = %q, want %q", outcomes[0].Status, tt.want)
			}
		})
	}
}

func TestVerifyAttachesReference(t *testing.T) {
	v := testVerifier([]Entry{
		{SecondaryID: "H016310070030", Name: "John Smith", Reference: "REG-1"},
	})
	record := canonical.Record{
		PrimaryID:   "1001",
		SecondaryID: "H016310070030",
		NameKeys:    []string{"smith john"},
	}

	outcomes, err := v.Verify(context.Background(), []canonical.Record{record})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	outcome := outcomes[0]
	if outcome.Status != StatusVerified {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusVerified)
	}
	if outcome.Reference != "REG-1" {
		t.Errorf("Reference = %q, want REG-1", outcome.Reference)
	}
	if outcome.Score != 100 {
		t.Errorf("Score = %d, want 100 for token-order-insensitive match", outcome.Score)
	}
}

func TestVerifyPreservesRecordOrder(t *testing.T) {
	v := testVerifier([]Entry{
		{SecondaryID: "H016310070030", Name: "John Smith", Reference: "REG-1"},
	})
	records := make([]canonical.Record, 50)
	for i := range records {
		records[i] = canonical.Record{
			PrimaryID:   "1000",
			SecondaryID: "H016310070030",
			NameKeys:    []string{"john smith"},
		}
	}

	outcomes, err := v.Verify(context.Background(), records)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(outcomes) != len(records) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(records))
	}
	for i, outcome := range outcomes {
		if outcome.Status != StatusVerified {
			t.Fatalf("outcome %d status = %q, want %q", i, outcome.Status, StatusVerified)
		}
	}
}
