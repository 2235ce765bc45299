package textutil

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeHandle trims whitespace and a leading "@" and lowercases the handle.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// AgentIDFromHandle builds a stable agent identifier: dots and underscores
// become dashes and the creation epoch is appended.
func AgentIDFromHandle(handle string, epoch int64) string {
	slug := strings.NewReplacer(".", "-", "_", "-").Replace(NormalizeHandle(handle))
	return slug + "-" + strconv.FormatInt(epoch, 10)
}

var titleCaser = cases.Title(language.Und)

// DisplayNameFromHandle derives a readable name when the profile carries no
// full name: "john.doe_re" becomes "John Doe Re".
func DisplayNameFromHandle(handle string) string {
	spaced := strings.NewReplacer(".", " ", "_", " ").Replace(NormalizeHandle(handle))
	return titleCaser.String(strings.Join(strings.Fields(spaced), " "))
}
