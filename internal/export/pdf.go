package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/glucolab/glucometer/internal/domain"
)

// pdfMaxRows caps the reading table; the summary still covers the full set.
const pdfMaxRows = 50

// WritePDF writes a glucose monitoring report: patient block, statistical
// summary and a table of the most recent readings.
func WritePDF(w io.Writer, patientName string, exportDate time.Time, readings []domain.Reading, stats domain.StatsReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Glucose Monitoring Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Patient: %s", patientName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Report Date: %s", formatTimestamp(exportDate)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total Readings: %d", len(readings)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Statistical Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Average Glucose: %s", formatStat(stats.Average, "%.1f mg/dL")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Time in Range: %s", formatStat(stats.TimeInRangePct, "%.1f%%")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Estimated A1C: %s", formatStat(stats.EstimatedA1C, "%.1f%%")), "", 1, "L", false, 0, "")
	if stats.Min != nil && stats.Max != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Range: %.1f - %.1f mg/dL", *stats.Min, *stats.Max), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Range: --", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	writeReadingTable(pdf, readings)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF export: %w", err)
	}
	return nil
}

func writeReadingTable(pdf *gofpdf.Fpdf, readings []domain.Reading) {
	colWidths := []float64{55, 30, 50, 50}
	headers := []string{"Timestamp", "Glucose", "Status", "Condition"}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(200, 200, 200)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Most recent first, like the on-screen history.
	pdf.SetFont("Helvetica", "", 10)
	rows := 0
	for i := len(readings) - 1; i >= 0 && rows < pdfMaxRows; i-- {
		r := readings[i]
		pdf.CellFormat(colWidths[0], 7, formatTimestamp(r.Timestamp), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], 7, fmt.Sprintf("%.1f", r.GlucoseValue), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 7, string(r.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], 7, string(r.Condition), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		rows++
	}
}

// formatStat renders a possibly undefined statistic; "--" is the undefined
// marker and is never confused with zero.
func formatStat(value *float64, format string) string {
	if value == nil {
		return "--"
	}
	return fmt.Sprintf(format, *value)
}
