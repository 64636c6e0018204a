// Package i18n provides the localized strings of reports and diagnostics.
//
// A Localizer is built once at startup from the caller's locale preferences
// and passed to whatever renders text. There is no global state.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Localizer formats messages in one language, falling back to English for
// keys the language does not translate.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

var (
	builtCatalog = buildCatalog()
	supported    = builtCatalog.Languages()
	matcher      = language.NewMatcher(supported)
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	// Every language carries every key; untranslated ones use English.
	for _, tag := range []language.Tag{language.English, nynorsk} {
		for key, en := range catalogs[language.English] {
			msg, ok := catalogs[tag][key]
			if !ok {
				msg = en
			}
			if err := b.SetString(tag, key, msg); err != nil {
				panic("i18n: " + err.Error())
			}
		}
	}
	return b
}

// New returns a Localizer for the best supported match of prefs. With no
// usable preference it is English.
func New(prefs ...language.Tag) *Localizer {
	tag := language.English
	if len(prefs) > 0 {
		_, idx, conf := matcher.Match(prefs...)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builtCatalog)),
	}
}

// English is the default Localizer.
func English() *Localizer { return New(language.English) }

// FromEnv selects a Localizer from LC_ALL, LC_MESSAGES and LANG, in that
// order of precedence.
func FromEnv(getenv func(string) string) *Localizer {
	return New(PreferencesFromEnv(getenv)...)
}

// PreferencesFromEnv parses POSIX locale variables into language tags.
// Encodings and modifiers are dropped; "C" and "POSIX" are ignored.
func PreferencesFromEnv(getenv func(string) string) []language.Tag {
	var prefs []language.Tag
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := getenv(name)
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		v = strings.ReplaceAll(strings.TrimSpace(v), "_", "-")
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		tag, err := language.Parse(v)
		if err != nil {
			continue
		}
		prefs = append(prefs, tag)
	}
	return prefs
}

// Language is the selected language.
func (l *Localizer) Language() language.Tag { return l.tag }

// T formats the message for key with args.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Direction returns the label of a direction name ("generate" or "analyze").
func (l *Localizer) Direction(dir string) string {
	if dir == "analyze" {
		return l.T(DirectionAnalyze)
	}
	return l.T(DirectionGenerate)
}
