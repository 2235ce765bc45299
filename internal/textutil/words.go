package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Words splits text on whitespace after NFC normalization.
func Words(text string) []string {
	return strings.Fields(norm.NFC.String(text))
}

// ContainsAllWords reports whether every word in required occurs in text as
// a substring. An empty required list never matches.
func ContainsAllWords(text string, required []string) bool {
	if len(required) == 0 {
		return false
	}
	text = norm.NFC.String(text)
	for _, word := range required {
		if !strings.Contains(text, norm.NFC.String(word)) {
			return false
		}
	}
	return true
}

// Prefix returns at most n runes from the start of text.
func Prefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
