package feed

import (
	"regexp"
	"strings"
)

var (
	mentionPattern = regexp.MustCompile(`(?:^|[^\w@])@([A-Za-z0-9_](?:[A-Za-z0-9_.]*[A-Za-z0-9_])?)`)
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{M}\p{N}_]+)`)
)

// ExtractMentions returns the distinct @handles in caption order, without
// the leading "@" and with a trailing dot removed.
func ExtractMentions(caption string) []string {
	return distinctMatches(mentionPattern, caption, strings.ToLower)
}

// ExtractHashtags returns the distinct #tags in caption order without "#".
func ExtractHashtags(caption string) []string {
	return distinctMatches(hashtagPattern, caption, nil)
}

func distinctMatches(re *regexp.Regexp, text string, fold func(string) string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		value := m[1]
		key := value
		if fold != nil {
			key = fold(value)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}
