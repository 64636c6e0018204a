package i18n

import "golang.org/x/text/language"

// Message keys. Values are printf formats looked up per language.
const (
	DirectionGenerate = "direction-generate"
	DirectionAnalyze  = "direction-analyze"

	AvailableTests        = "available-tests"
	TestListItem          = "test-list-item"
	ErrTestNotFound       = "error-test-not-found"
	ErrInvalidTestNumber  = "error-invalid-test-number"
	ErrNoTestsAfterFilter = "error-no-tests-after-filter"
	ErrValidationFailed   = "error-validation-failed"
	ErrConflictingFlags   = "error-conflicting-flags"
	ReportTitle           = "report-title"
	ReportSuite           = "report-suite"
	ReportTotal           = "report-total"
	ReportExpectations    = "report-expectations"
	ReportPass            = "report-pass"
	ReportFail            = "report-fail"
	ReportInput           = "report-input"
	ReportExpected        = "report-expected"
	ReportActual          = "report-actual"
	ReportMissing         = "report-missing"
	ReportUnexpected      = "report-unexpected"
	ReportError           = "report-error"
	ReportSuiteLine       = "report-suite-line"
	ReportGeneratedAt     = "report-generated-at"
	ModeAll               = "mode-all"
	ModeGenerateOnly      = "mode-generate-only"
	ModeAnalyzeOnly       = "mode-analyze-only"
	InfoStartingTests     = "info-starting-tests"
	InfoFinished          = "info-finished"
)

// Nynorsk has no predefined tag.
var nynorsk = language.MustParse("nn")

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		DirectionGenerate:     "Lexical/Generation",
		DirectionAnalyze:      "Surface/Analysis",
		AvailableTests:        "Available tests:",
		TestListItem:          "%d: %s",
		ErrTestNotFound:       "test %q not found",
		ErrInvalidTestNumber:  "test number %d is out of range (1-%d)",
		ErrNoTestsAfterFilter: "no tests left after filtering",
		ErrValidationFailed:   "backend validation failed: %v",
		ErrConflictingFlags:   "%s and %s cannot be combined",
		ReportTitle:           "Morphology test report",
		ReportSuite:           "Suite: %s",
		ReportTotal:           "Total: %d, Passed: %d, Failed: %d",
		ReportExpectations:    "Expectations: %d of %d passed, %d failed",
		ReportPass:            "PASS",
		ReportFail:            "FAIL",
		ReportInput:           "input",
		ReportExpected:        "expected",
		ReportActual:          "actual",
		ReportMissing:         "missing",
		ReportUnexpected:      "unexpected",
		ReportError:           "error",
		ReportSuiteLine:       "%s: %d/%d passed",
		ReportGeneratedAt:     "Run %s",
		ModeAll:               "all directions",
		ModeGenerateOnly:      "generation only",
		ModeAnalyzeOnly:       "analysis only",
		InfoStartingTests:     "starting %d tests (%s)",
		InfoFinished:          "finished: %d passed, %d failed",
	},
	nynorsk: {
		DirectionGenerate:     "Leksikalsk/Generering",
		DirectionAnalyze:      "Overflate/Analyse",
		AvailableTests:        "Tilgjengelege testar:",
		ErrTestNotFound:       "fann ikkje testen %q",
		ErrInvalidTestNumber:  "testnummer %d er utanfor gyldig område (1-%d)",
		ErrNoTestsAfterFilter: "ingen testar att etter filtrering",
		ErrValidationFailed:   "validering av backend feila: %v",
		ErrConflictingFlags:   "%s og %s kan ikkje kombinerast",
		ReportTitle:           "Morfologitestrapport",
		ReportSuite:           "Testsett: %s",
		ReportTotal:           "Totalt: %d, Bestått: %d, Feila: %d",
		ReportExpectations:    "Forventingar: %d av %d bestått, %d feila",
		ReportPass:            "OK",
		ReportFail:            "FEIL",
		ReportInput:           "inndata",
		ReportExpected:        "venta",
		ReportActual:          "faktisk",
		ReportMissing:         "manglar",
		ReportUnexpected:      "uventa",
		ReportError:           "feil",
		ReportSuiteLine:       "%s: %d/%d bestått",
		ReportGeneratedAt:     "Køyring %s",
		ModeAll:               "alle retningar",
		ModeGenerateOnly:      "berre generering",
		ModeAnalyzeOnly:       "berre analyse",
		InfoStartingTests:     "startar %d testar (%s)",
		InfoFinished:          "ferdig: %d bestått, %d feila",
	},
}
