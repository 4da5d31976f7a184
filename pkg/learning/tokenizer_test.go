package learning

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewTokenizer(t *testing.T) {
	tests := []struct {
		language string
		wantErr  bool
	}{
		{"english", false},
		{" English ", false},
		{"russian", false},
		{"klingon", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			tok, err := NewTokenizer(tt.language)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLanguage) {
					t.Fatalf("Expected ErrUnsupportedLanguage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tok.Language() == "" {
				t.Error("Language should not be empty")
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tok, err := NewTokenizer("english")
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "Spam-like text",
			text:     "Buy VIAGRA now!!!",
			expected: []string{"buy", "viagra", "now"},
		},
		{
			name:     "Stemming",
			text:     "meeting notes attached",
			expected: []string{"meet", "note", "attach"},
		},
		{
			name:     "Duplicates are kept",
			text:     "free free FREE",
			expected: []string{"free", "free", "free"},
		},
		{
			name:     "Inflections share a token",
			text:     "running runs",
			expected: []string{"run", "run"},
		},
		{
			name:     "Numbers are words",
			text:     "2024 deals",
			expected: []string{"2024", "deal"},
		},
		{
			name:     "Empty text",
			text:     "",
			expected: nil,
		},
		{
			name:     "Only punctuation and spaces",
			text:     "  ...!!! -- ?? ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestTokenizeCaseFoldsNonLatin(t *testing.T) {
	tok, err := NewTokenizer("russian")
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}

	upper := tok.Tokenize("ПРИВЕТ мир")
	lower := tok.Tokenize("привет МИР")

	if len(upper) != 2 {
		t.Fatalf("Expected 2 tokens, got %v", upper)
	}
	if diff := cmp.Diff(lower, upper); diff != "" {
		t.Errorf("Case folding mismatch (-lower +upper):\n%s", diff)
	}
}

func TestSupportedLanguagesAreAccepted(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		if _, err := NewTokenizer(lang); err != nil {
			t.Errorf("NewTokenizer(%q) failed: %v", lang, err)
		}
	}
}
