package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestPreferencesFromEnv(t *testing.T) {
	prefs := PreferencesFromEnv(envOf(map[string]string{
		"LC_ALL":      "",
		"LC_MESSAGES": "nn_NO.UTF-8",
		"LANG":        "en_US.UTF-8@euro",
	}))
	if len(prefs) != 2 {
		t.Fatalf("expected 2 preferences, got %v", prefs)
	}
	if base, _ := prefs[0].Base(); base.String() != "nn" {
		t.Fatalf("expected nn first, got %v", prefs[0])
	}
	if base, _ := prefs[1].Base(); base.String() != "en" {
		t.Fatalf("expected en second, got %v", prefs[1])
	}
}

func TestPreferencesFromEnv_IgnoresPOSIXLocales(t *testing.T) {
	prefs := PreferencesFromEnv(envOf(map[string]string{"LC_ALL": "C", "LANG": "POSIX"}))
	if len(prefs) != 0 {
		t.Fatalf("expected no preferences, got %v", prefs)
	}
}

func TestFromEnv_SelectsNynorsk(t *testing.T) {
	l := FromEnv(envOf(map[string]string{"LANG": "nn_NO.UTF-8"}))
	if got := l.T(ReportPass); got != "OK" {
		t.Fatalf("expected Nynorsk label, got %q", got)
	}
	if got := l.T(ReportTotal, 3, 2, 1); got != "Totalt: 3, Bestått: 2, Feila: 1" {
		t.Fatalf("unexpected total line %q", got)
	}
}

func TestNew_FallsBackToEnglish(t *testing.T) {
	l := New(language.MustParse("de-DE"))
	if l.Language() != language.English {
		t.Fatalf("expected English, got %v", l.Language())
	}
	if got := l.T(ReportTotal, 2, 2, 0); got != "Total: 2, Passed: 2, Failed: 0" {
		t.Fatalf("unexpected total line %q", got)
	}
}

func TestNynorskFallsBackPerKey(t *testing.T) {
	l := New(language.MustParse("nn"))
	// Not translated: the English format is used.
	if got := l.T(TestListItem, 1, "Nouns (Lexical/Generation)"); got != "1: Nouns (Lexical/Generation)" {
		t.Fatalf("unexpected list item %q", got)
	}
}

func TestDirectionLabels(t *testing.T) {
	l := English()
	if got := l.Direction("generate"); got != "Lexical/Generation" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := l.Direction("analyze"); got != "Surface/Analysis" {
		t.Fatalf("unexpected label %q", got)
	}
}
