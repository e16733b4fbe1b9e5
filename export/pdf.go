package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders a one-document summary: totals, fund breakdown, phases
// and warnings. Per-day detail is left to the workbook.
func WritePDF(w io.Writer, r Report) error {
	c := r.Calculation

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; names and messages arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Name, true)
	pdf.SetCreationDate(r.generated())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(r.Name))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Leave days: %d", c.TotalDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Leave hours: %s", c.TotalHours.Value.StringFixed(1)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", validity(c)))
	pdf.Ln(12)

	widths := []float64{60, 25, 25, 25, 35}
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range []string{"Fund", "Days", "Hours", "Used %", "Remaining"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, b := range c.Breakdown {
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%s (%s)", b.Fund.Name(), b.Fund), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, b.Days.StringFixed(1), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, b.Hours.Value.StringFixed(1), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d%%", b.Percentage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, b.Remaining.Value.StringFixed(1), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(8)

	if len(c.PhaseSummaries) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Phases")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, p := range c.PhaseSummaries {
			pdf.Cell(0, 7, tr(fmt.Sprintf("%s: %s to %s (%s), %d days, %s hours",
				p.Name, p.Start, p.End, p.Duration, p.TotalDays, p.TotalHours.Value.StringFixed(1))))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	if len(c.Warnings) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Warnings")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 10)
		for _, warn := range c.Warnings {
			pdf.MultiCell(0, 5, tr("- "+warn.Message), "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}
