/*
Package export renders a calculation as a downloadable document.

FORMATS:
  xlsx - Workbook with a summary, a per-day sheet and the warnings
  pdf  - One printable summary
  ics  - Calendar with one all-day event per phase and per leave day

The same package reads holiday calendars back in from ICS files, so a
region's holidays can be maintained in any calendar app.

SEE ALSO:
  - leave/report.go: The Calculation being rendered
  - api/handlers.go: Serves the documents
*/
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/warp/leave-planner/generic"
	"github.com/warp/leave-planner/leave"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatICS  Format = "ics"
)

// Formats lists every supported format.
var Formats = []Format{FormatXLSX, FormatPDF, FormatICS}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", &generic.FieldError{Field: "format", Value: s, Err: generic.ErrUnsupportedFormat}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	}
	return "application/octet-stream"
}

// Report is what gets rendered: a named calculation.
type Report struct {
	Name        string
	Calculation *leave.Calculation
	Generated   time.Time // Zero means now
}

func (r Report) generated() time.Time {
	if r.Generated.IsZero() {
		return time.Now().UTC()
	}
	return r.Generated.UTC()
}

// Filename derives a download name from the report name.
func (r Report) Filename(f Format) string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		case c == ' ':
			return '-'
		}
		return -1
	}, r.Name)
	if name == "" {
		name = "leave-plan"
	}
	return fmt.Sprintf("%s.%s", name, f)
}

// Render writes r to w in format f.
func Render(w io.Writer, f Format, r Report) error {
	if r.Calculation == nil {
		return fmt.Errorf("export: nil calculation")
	}
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	case FormatICS:
		return WriteICS(w, r)
	}
	return &generic.FieldError{Field: "format", Value: string(f), Err: generic.ErrUnsupportedFormat}
}

// allocationHours spreads a day's allocations over the funds in priority order.
func allocationHours(d leave.DailyDetail) []float64 {
	out := make([]float64, len(leave.FundPriority))
	for _, a := range d.Allocations {
		for i, f := range leave.FundPriority {
			if f == a.Fund {
				out[i] += a.Hours.Float64()
			}
		}
	}
	return out
}

func validity(c *leave.Calculation) string {
	if c.IsValid {
		return "valid"
	}
	return fmt.Sprintf("invalid (%d warnings)", len(c.Warnings))
}
