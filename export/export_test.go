package export_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/leave-planner/export"
	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

func sampleReport(t *testing.T) export.Report {
	t.Helper()
	phases := []leave.Phase{{
		ID:      "p1",
		Name:    "Birth leave",
		Start:   generic.MustParseDate("2025-01-15"),
		End:     generic.MustParseDate("2025-01-17"),
		Pattern: leave.NonWorkingPattern(),
		Funds:   []leave.FundType{leave.BirthLeave},
	}}
	balances := leave.FundBalances{leave.BirthLeave: generic.Hours(12)}
	c := leave.Calculate(phases, balances, leave.FullTimePattern(generic.Hours(8)))
	return export.Report{
		Name:        "Our plan",
		Calculation: c,
		Generated:   time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat(".XLSX")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	_, err = export.ParseFormat("docx")
	assert.True(t, errors.Is(err, generic.ErrUnsupportedFormat))
}

func TestFilename(t *testing.T) {
	r := export.Report{Name: "Our plan / 2025"}
	assert.Equal(t, "Our-plan--2025.pdf", r.Filename(export.FormatPDF))
	assert.Equal(t, "leave-plan.ics", export.Report{}.Filename(export.FormatICS))
}

func TestWriteXLSX(t *testing.T) {
	// GIVEN: A three-day plan with a shortfall
	// WHEN: Exporting to a workbook
	// THEN: Summary, per-day and warning sheets carry the report

	var buf bytes.Buffer
	require.NoError(t, export.Render(&buf, export.FormatXLSX, sampleReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Days", "Warnings"}, f.GetSheetList())

	days, err := f.GetRows("Days")
	require.NoError(t, err)
	require.Len(t, days, 4)
	assert.Equal(t, "Date", days[0][0])
	assert.Equal(t, "2025-01-15", days[1][0])
	assert.Equal(t, "leave_day", days[1][4])

	warnings, err := f.GetRows("Warnings")
	require.NoError(t, err)
	assert.Len(t, warnings, 3)

	name, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Our plan", name)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Render(&buf, export.FormatPDF, sampleReport(t)))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))
}

func TestWritePDF_NonASCIIText(t *testing.T) {
	// GIVEN: A plan name and phase name outside ASCII
	r := sampleReport(t)
	r.Name = "Verlof Zoë en Joël"
	r.Calculation.PhaseSummaries[0].Name = "Geboorteverlof, week één"

	// WHEN: Rendering the summary
	var buf bytes.Buffer
	err := export.WritePDF(&buf, r)

	// THEN: The document is written
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))
	assert.Greater(t, buf.Len(), 500)
}

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Render(&buf, export.FormatICS, sampleReport(t)))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "p1@leave-planner")
	assert.Contains(t, out, "p1-20250116@leave-planner")
	assert.Contains(t, out, "20250115")
	assert.Equal(t, 4, strings.Count(out, "BEGIN:VEVENT"))
}

func TestRender_NilCalculation(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, export.Render(&buf, export.FormatPDF, export.Report{}))
}

func TestReadHolidays(t *testing.T) {
	src := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:1@test",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250303",
		"SUMMARY:Carnaval",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:2@test",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20251231T120000Z",
		"SUMMARY:Oudjaar",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	hs, err := export.ReadHolidays(strings.NewReader(src), "nl-li")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "2025-03-03", hs[0].Date.String())
	assert.Equal(t, "Carnaval", hs[0].Name)
	assert.Equal(t, "nl-li", hs[0].Region)
	assert.NotEqual(t, hs[0].ID, hs[1].ID)

	// Same calendar, same IDs
	again, err := export.ReadHolidays(strings.NewReader(src), "nl-li")
	require.NoError(t, err)
	assert.Equal(t, hs[0].ID, again[0].ID)
	assert.Equal(t, hs[1].ID, again[1].ID)

	// A renamed event is a different holiday
	renamed, err := export.ReadHolidays(strings.NewReader(strings.Replace(src, "SUMMARY:Carnaval", "SUMMARY:Vastenavond", 1)), "nl-li")
	require.NoError(t, err)
	assert.NotEqual(t, hs[0].ID, renamed[0].ID)
}
