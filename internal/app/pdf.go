package app

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/classify"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
)

// levelColor maps a bias level to an RGB fill.
func levelColor(l classify.Level) (int, int, int) {
	switch l {
	case classify.LevelHigh:
		return 255, 205, 205
	case classify.LevelMedium:
		return 255, 236, 179
	}
	return 214, 240, 214
}

// writeReportPDF renders the report as a simple A4 document: one block per
// article with a colored bias level and its subjective sentences. The core
// fonts are Latin-1 only, so text is passed through the code page translator.
func writeReportPDF(r Report, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Wikipedia bias report", true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Wikipedia bias report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Topics: "+strings.Join(r.Trending.Topics, ", ")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Popularity date: "+r.Trending.Date.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for i, e := range r.Entries {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%d. %s", i+1, e.Document.Title)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 200)
		pdf.WriteLinkString(5, e.Document.URL, e.Document.URL)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, viewsLabel(e.Document)+fmt.Sprintf(", relevance %d", e.Document.Score), "", 1, "L", false, 0, "")

		if !e.Analyzed {
			pdf.Ln(4)
			continue
		}
		s := e.Analysis.Summary
		cr, cg, cb := levelColor(s.Level)
		pdf.SetFillColor(cr, cg, cb)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 7, fmt.Sprintf("Bias level: %s (%.1f%% subjective of %d sentences)", s.Level, s.SubjectivePct, s.Total), "1", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for n, idx := range subjectiveIndices(e.Analysis.Results) {
			if n == maxSentencesInReport {
				break
			}
			rec := e.Analysis.Records[idx]
			pdf.MultiCell(0, 5, tr("- "+sentenceLine(rec)), "", "L", false)
		}
		pdf.Ln(4)
	}
	return pdf.OutputFileAndClose(outPath)
}

func sentenceLine(rec segment.Record) string {
	return "[" + rec.SectionTitle + "] " + rec.Text
}
