package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CountScriptRunes counts the runes of text that appear in alphabet.
// An empty alphabet counts every letter rune.
func CountScriptRunes(text, alphabet string) int {
	text = norm.NFC.String(text)
	alphabet = norm.NFC.String(alphabet)
	count := 0
	for _, r := range text {
		if alphabet == "" {
			if unicode.IsLetter(r) {
				count++
			}
			continue
		}
		if strings.ContainsRune(alphabet, r) {
			count++
		}
	}
	return count
}
