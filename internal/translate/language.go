package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// isAuto reports whether code asks the back-end to detect the language.
func isAuto(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || strings.EqualFold(code, "auto")
}

// canonical returns the BCP 47 form of code ("pt-br" -> "pt-BR").
// Codes that do not parse are returned trimmed but otherwise untouched.
func canonical(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}

// baseCode returns only the language subtag ("pt-BR" -> "pt").
func baseCode(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// displayName returns an English name for prompts, e.g. "Brazilian Portuguese".
func displayName(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
