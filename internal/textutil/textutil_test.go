package textutil

import (
	"strings"
	"testing"
)

const persian = "آابپتثجچحخدذرزژسشصضطظعغفقکگلمنوهی"

func TestCountScriptRunes(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		alphabet string
		want     int
	}{
		{"persian only", "سلام دنیا", persian, 8},
		{"mixed latin ignored", "hello سلام 123", persian, 4},
		{"empty", "", persian, 0},
		{"decomposed madda", "\u0627\u0653ب", persian, 2},
		{"no alphabet counts letters", "ab, c!", "", 3},
		{"no alphabet skips emoji and symbols", "سلام 🎬✨ €5 ©™", "", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountScriptRunes(tt.text, tt.alphabet); got != tt.want {
				t.Fatalf("CountScriptRunes(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountScriptRunesThreshold(t *testing.T) {
	text49 := strings.Repeat("ب", 49)
	if got := CountScriptRunes(text49, persian); got != 49 {
		t.Fatalf("expected 49, got %d", got)
	}
	if got := CountScriptRunes(text49+"ب", persian); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestAgentIDFromHandle(t *testing.T) {
	if got := AgentIDFromHandle("@Real.Estate_Pro ", 1700000000); got != "real-estate-pro-1700000000" {
		t.Fatalf("unexpected agent id %q", got)
	}
}

func TestDisplayNameFromHandle(t *testing.T) {
	tests := map[string]string{
		"john.doe_re": "John Doe Re",
		"@amlak__x":   "Amlak X",
		"":            "",
	}
	for input, want := range tests {
		if got := DisplayNameFromHandle(input); got != want {
			t.Errorf("DisplayNameFromHandle(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestContainsAllWords(t *testing.T) {
	required := []string{"املاک", "ویژه", "شماره"}
	if !ContainsAllWords("املاک ویژه شماره ۵", required) {
		t.Fatal("expected all words to match")
	}
	if ContainsAllWords("املاک ویژه", required) {
		t.Fatal("expected missing word to fail")
	}
	if ContainsAllWords("anything", nil) {
		t.Fatal("empty list must not match")
	}
}

func TestPrefix(t *testing.T) {
	if got := Prefix("آپارتمان", 3); got != "آپا" {
		t.Fatalf("unexpected prefix %q", got)
	}
	if got := Prefix("ab", 10); got != "ab" {
		t.Fatalf("unexpected prefix %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(" a/b:c? "); got != "a-b-c" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}
