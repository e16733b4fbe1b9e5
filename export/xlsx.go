package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/leave-planner/leave"
)

const (
	sheetSummary  = "Summary"
	sheetDays     = "Days"
	sheetWarnings = "Warnings"
)

// WriteXLSX renders the report as a workbook.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	idx, err := f.NewSheet(sheetSummary)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	c := r.Calculation
	writeSummarySheet(f, r, headerStyle)

	if _, err := f.NewSheet(sheetDays); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	writeDaysSheet(f, c, headerStyle)

	if _, err := f.NewSheet(sheetWarnings); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	writeWarningsSheet(f, c, headerStyle)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r Report, headerStyle int) {
	c := r.Calculation
	s := sheetSummary

	f.SetColWidth(s, "A", "A", 26)
	f.SetColWidth(s, "B", "F", 14)

	f.SetCellValue(s, "A1", r.Name)
	f.SetCellValue(s, "A2", "Leave days")
	f.SetCellValue(s, "B2", c.TotalDays)
	f.SetCellValue(s, "A3", "Leave hours")
	f.SetCellValue(s, "B3", c.TotalHours.Float64())
	f.SetCellValue(s, "A4", "Status")
	f.SetCellValue(s, "B4", validity(c))

	header := []string{"Fund", "Code", "Days", "Hours", "Used %", "Remaining"}
	row := 6
	writeRow(f, s, row, header)
	f.SetCellStyle(s, cell("A", row), cell(colName(len(header)-1), row), headerStyle)

	for _, b := range c.Breakdown {
		row++
		writeRow(f, s, row, []any{
			b.Fund.Name(), string(b.Fund), b.Days.InexactFloat64(), b.Hours.Float64(), b.Percentage, b.Remaining.Float64(),
		})
	}

	row += 2
	phaseHeader := []string{"Phase", "Start", "End", "Duration", "Leave days", "Leave hours"}
	writeRow(f, s, row, phaseHeader)
	f.SetCellStyle(s, cell("A", row), cell(colName(len(phaseHeader)-1), row), headerStyle)
	for _, p := range c.PhaseSummaries {
		row++
		writeRow(f, s, row, []any{
			p.Name, p.Start.String(), p.End.String(), p.Duration, p.TotalDays, p.TotalHours.Float64(),
		})
	}
}

func writeDaysSheet(f *excelize.File, c *leave.Calculation, headerStyle int) {
	s := sheetDays
	header := []string{"Date", "Day", "Week", "Phase", "Kind", "Hours"}
	for _, fund := range leave.FundPriority {
		header = append(header, string(fund))
	}

	f.SetColWidth(s, "A", "A", 12)
	f.SetColWidth(s, "B", "B", 12)
	f.SetColWidth(s, "D", "E", 20)
	writeRow(f, s, 1, header)
	f.SetCellStyle(s, "A1", cell(colName(len(header)-1), 1), headerStyle)

	for i, d := range c.DailyDetails {
		row := []any{d.Date.String(), d.DayName, d.WeekNumber, d.Phase, d.Kind.String(), d.Hours.Float64()}
		for _, h := range allocationHours(d) {
			row = append(row, h)
		}
		writeRow(f, s, i+2, row)
	}
	f.SetPanes(s, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeWarningsSheet(f *excelize.File, c *leave.Calculation, headerStyle int) {
	s := sheetWarnings
	header := []string{"Code", "Date", "Fund", "Phase", "Message"}
	f.SetColWidth(s, "A", "A", 20)
	f.SetColWidth(s, "E", "E", 60)
	writeRow(f, s, 1, header)
	f.SetCellStyle(s, "A1", cell(colName(len(header)-1), 1), headerStyle)

	for i, w := range c.Warnings {
		date := ""
		if !w.Date.IsZero() {
			date = w.Date.String()
		}
		writeRow(f, s, i+2, []any{string(w.Code), date, string(w.Fund), w.PhaseID, w.Message})
	}
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) {
	for i, v := range values {
		f.SetCellValue(sheet, cell(colName(i), row), v)
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
