package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"morphtest/internal/core"
	"morphtest/internal/i18n"
)

const (
	pdfLine   = 5.5
	pdfIndent = 8.0
)

// PDF writes a printable report of suites to w. Hide options apply as in the
// normal format; colour is always used.
func PDF(w io.Writer, suites []core.SuiteSummary, o Options) error {
	loc := o.localizer()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	title := loc.T(i18n.ReportTitle)
	doc.SetTitle(title, true)
	doc.SetCreator("morphtest", false)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	if o.RunID != "" {
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(0, pdfLine, tr(loc.T(i18n.ReportGeneratedAt, o.RunID)), "", 1, "L", false, 0, "")
	}
	doc.Ln(pdfLine)

	h := human{o: o}
	for _, s := range suites {
		doc.SetFont("Helvetica", "B", 12)
		doc.SetTextColor(0, 0, 0)
		doc.CellFormat(0, 8, tr(loc.T(i18n.ReportSuite, s.Name)), "B", 1, "L", false, 0, "")
		doc.Ln(1)

		for _, r := range s.Summary.Cases {
			if !h.visible(r) {
				continue
			}
			doc.SetFont("Helvetica", "B", 10)
			if r.Passed {
				doc.SetTextColor(0, 128, 0)
				doc.CellFormat(16, pdfLine, tr(loc.T(i18n.ReportPass)), "", 0, "L", false, 0, "")
			} else {
				doc.SetTextColor(192, 0, 0)
				doc.CellFormat(16, pdfLine, tr(loc.T(i18n.ReportFail)), "", 0, "L", false, 0, "")
			}
			doc.SetFont("Helvetica", "", 10)
			doc.SetTextColor(0, 0, 0)
			doc.MultiCell(0, pdfLine, tr(r.Name), "", "L", false)
			if r.Passed {
				continue
			}
			doc.SetFont("Helvetica", "", 9)
			for _, d := range details(r, loc, o.IgnoreExtraAnalyses) {
				doc.SetX(doc.GetX() + pdfIndent)
				doc.MultiCell(0, pdfLine-1, tr(d.label+" "+d.value), "", "L", false)
			}
		}
		doc.Ln(1)
		pdfTotals(doc, tr, loc, s.Summary)
		doc.Ln(pdfLine)
	}
	if len(suites) != 1 {
		pdfTotals(doc, tr, loc, Total(suites))
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return doc.Output(w)
}

func pdfTotals(doc *gofpdf.Fpdf, tr func(string) string, loc *i18n.Localizer, sum core.Summary) {
	doc.SetFont("Helvetica", "B", 10)
	if sum.Failed > 0 {
		doc.SetTextColor(192, 0, 0)
	} else {
		doc.SetTextColor(0, 128, 0)
	}
	doc.CellFormat(0, pdfLine, tr(loc.T(i18n.ReportTotal, sum.Total, sum.Passed, sum.Failed)), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "", 9)
	doc.CellFormat(0, pdfLine, tr(loc.T(i18n.ReportExpectations, sum.PassedExpectations, sum.TotalExpectations, sum.FailedExpectations)), "", 1, "L", false, 0, "")
}
