package nameutil

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "John Smith", []string{"john", "smith"}},
		{"comma separated", "Smith, John", []string{"smith", "john"}},
		{"punctuation", "O'Brien-Smith, J.", []string{"o", "brien", "smith", "j"}},
		{"diacritics", "José Muñoz", []string{"jose", "munoz"}},
		{"collapsed whitespace", "  John   Smith ", []string{"john", "smith"}},
		{"empty", "", nil},
		{"punctuation only", "..,-", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyOrderInsensitive(t *testing.T) {
	if Key("Smith, John") != Key("John Smith") {
		t.Errorf("Key(%q) = %q, Key(%q) = %q; want equal",
			"Smith, John", Key("Smith, John"), "John Smith", Key("John Smith"))
	}
}

func TestSharedTokens(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "John Smith", "John Smith", 2},
		{"reordered", "Smith, John", "John Smith", 2},
		{"surname only", "John Smith", "Mary Smith", 1},
		{"disjoint", "John Smith", "Mary Jones", 0},
		{"duplicate token counted once", "John John Smith", "John Smith", 2},
		{"empty side", "", "John Smith", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SharedTokens(tt.a, tt.b); got != tt.want {
				t.Errorf("SharedTokens(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
