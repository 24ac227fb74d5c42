package textutil

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"Hello, world!", []string{"Hello", ",", "world", "!"}},
		{"Don't stop.", []string{"Don", "'", "t", "stop", "."}},
		{"user_name", []string{"user_name"}},
		{"", nil},
		{"  spaces  ", []string{"spaces"}},
		{"café résumé", []string{"café", "résumé"}},
		{"a--b", []string{"a", "-", "-", "b"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCharClass(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", ClassAlpha},
		{"Größe", ClassAlpha},
		{"2024", ClassNumeric},
		{"...", ClassPunct},
		{"«", ClassPunct},
		{"3,5", ClassMixed},
		{"n't", ClassMixed},
		{"", ClassEmpty},
	}
	for _, tt := range tests {
		got := CharClass(tt.input)
		if got != tt.want {
			t.Errorf("CharClass(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "lower"},
		{"Hello", "title"},
		{"NATO", "upper"},
		{"iPhone", "mixed"},
		{"McDonald", "mixed"},
		{"42", "none"},
		{"", "none"},
	}
	for _, tt := range tests {
		got := Shape(tt.input)
		if got != tt.want {
			t.Errorf("Shape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsPunct(t *testing.T) {
	if !IsPunct(",") || !IsPunct(`"`) || !IsPunct("-") {
		t.Error("expected punctuation")
	}
	if IsPunct("a") || IsPunct("") || IsPunct("n't") {
		t.Error("unexpected punctuation")
	}
}

func TestNumberPattern(t *testing.T) {
	tests := []struct {
		input string
		ratio float64
		want  string
	}{
		{"12345", 0.3, "XXXXX"},
		{"abc123", 0.3, "CCCXXX"},
		{"abc", 0.3, ""},
		{"", 0.3, ""},
		{"12-34", 0.3, "XX-XX"},
		{"3,5", 0.3, "X,X"},
	}
	for _, tt := range tests {
		got := NumberPattern(tt.input, tt.ratio)
		if got != tt.want {
			t.Errorf("NumberPattern(%q, %v) = %q, want %q", tt.input, tt.ratio, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate = %q, want %q", got, "hé")
	}
	if got := Truncate("ab", 5); got != "ab" {
		t.Errorf("Truncate = %q, want %q", got, "ab")
	}
}
