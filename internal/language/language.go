package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-3 / 639-2T
	alt3    []string // bibliographic or legacy 3-letter codes
	display string
	words   []string
}

var languages = []entry{
	{"fa", "fas", []string{"per"}, "Persian", []string{"persian", "farsi"}},
	{"en", "eng", nil, "English", []string{"english"}},
	{"ar", "ara", nil, "Arabic", []string{"arabic"}},
	{"tr", "tur", nil, "Turkish", []string{"turkish"}},
	{"ur", "urd", nil, "Urdu", []string{"urdu"}},
	{"ps", "pus", nil, "Pashto", []string{"pashto"}},
	{"ku", "kur", nil, "Kurdish", []string{"kurdish"}},
	{"az", "aze", nil, "Azerbaijani", []string{"azerbaijani", "azeri"}},
	{"ru", "rus", nil, "Russian", []string{"russian"}},
	{"de", "deu", []string{"ger"}, "German", []string{"german"}},
	{"fr", "fra", []string{"fre"}, "French", []string{"french"}},
	{"es", "spa", nil, "Spanish", []string{"spanish"}},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		m[e.code2] = e
		m[e.code3] = e
		for _, alt := range e.alt3 {
			m[alt] = e
		}
		for _, w := range e.words {
			m[w] = e
		}
	}
	return m
}()

func normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	// Accept BCP 47 tags such as "fa-IR".
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

// ToISO2 converts a recognized code or word to ISO 639-1. Unknown two-letter
// codes pass through; anything else yields "".
func ToISO2(code string) string {
	code = normalize(code)
	if e, ok := index[code]; ok {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts a recognized code or word to ISO 639-3. Unknown three-letter
// codes pass through; anything else yields "".
func ToISO3(code string) string {
	code = normalize(code)
	if e, ok := index[code]; ok {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable name, "Auto" for empty input, or the
// uppercased code when unrecognized.
func DisplayName(code string) string {
	code = normalize(code)
	if code == "" {
		return "Auto"
	}
	if e, ok := index[code]; ok {
		return e.display
	}
	return strings.ToUpper(code)
}

// Known reports whether the code or word maps to a listed language.
func Known(code string) bool {
	_, ok := index[normalize(code)]
	return ok
}
