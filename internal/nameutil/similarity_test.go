package nameutil

import "testing"

func TestScoreSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"John Smith", "Smith, John"},
		{"John Smith", "Jon Smith"},
		{"María García", "Maria Garcia Lopez"},
		{"", "John Smith"},
	}

	for _, pair := range pairs {
		ab := Score(pair[0], pair[1])
		ba := Score(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Score(%q, %q) = %d but Score(%q, %q) = %d", pair[0], pair[1], ab, pair[1], pair[0], ba)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "John Smith", "John Smith", 100},
		{"token order ignored", "Smith, John", "John Smith", 100},
		{"diacritics folded", "José Muñoz", "Jose Munoz", 100},
		{"empty", "", "John Smith", 0},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.a, tt.b); got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScoreNearMiss(t *testing.T) {
	got := Score("John Smith", "Jon Smith")
	if got < 80 || got >= 100 {
		t.Errorf("Score(John Smith, Jon Smith) = %d, want within [80, 100)", got)
	}
}

func TestMatcherSharedTokenFloor(t *testing.T) {
	m := Matcher{Threshold: 80, SharedTokenFloor: 2}

	// Reordered full name must match.
	if !m.Match("John Smith", "Smith, John") {
		t.Error("Match(John Smith, Smith John) = false, want true")
	}

	// A single shared surname must not match, whatever the score.
	if m.Match("Smith", "Smith") {
		t.Error("Match(Smith, Smith) = true, want false with shared-token floor 2")
	}
}

func TestMatcherCompareOutcomes(t *testing.T) {
	m := Matcher{Threshold: 80, SharedTokenFloor: 2, AmbiguityBand: 5}

	tests := []struct {
		name string
		a    string
		b    string
		want Outcome
	}{
		{"exact", "John Smith", "John Smith", OutcomeMatch},
		{"reordered", "Smith, John", "John Smith", OutcomeMatch},
		{"disjoint", "John Smith", "Mary Jones", OutcomeNoMatch},
		{"floor blocks single token", "Ann Smith", "Bob Smith", OutcomeNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, outcome := m.Compare(tt.a, tt.b)
			if outcome != tt.want {
				t.Errorf("Compare(%q, %q) = (%d, %v), want outcome %v", tt.a, tt.b, score, outcome, tt.want)
			}
		})
	}
}

func TestMatcherAmbiguityBand(t *testing.T) {
	// Force a score just below the threshold by raising the threshold above
	// the known near-miss score.
	score := Score("John Richard Smith", "Jon Richard Smith")
	m := Matcher{Threshold: score + 1, SharedTokenFloor: 2, AmbiguityBand: 5}

	got, outcome := m.Compare("John Richard Smith", "Jon Richard Smith")
	if got != score {
		t.Fatalf("Compare score = %d, want %d", got, score)
	}
	if outcome != OutcomeAmbiguous {
		t.Errorf("Compare outcome = %v, want %v", outcome, OutcomeAmbiguous)
	}
}
