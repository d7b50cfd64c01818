package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/glucolab/glucometer/internal/domain"
)

// Document is the top-level JSON export shape.
type Document struct {
	PatientName string         `json:"patient_name"`
	ExportDate  string         `json:"export_date"`
	Readings    []ReadingEntry `json:"readings"`
}

// ReadingEntry is one reading in the JSON export.
type ReadingEntry struct {
	Timestamp    string  `json:"timestamp"`
	GlucoseValue float64 `json:"glucose_value"`
	Status       string  `json:"status"`
	Condition    string  `json:"condition"`
}

// WriteJSON writes the readings as an indented JSON document.
func WriteJSON(w io.Writer, patientName string, exportDate time.Time, readings []domain.Reading) error {
	doc := Document{
		PatientName: patientName,
		ExportDate:  formatTimestamp(exportDate),
		Readings:    make([]ReadingEntry, 0, len(readings)),
	}
	for _, r := range readings {
		doc.Readings = append(doc.Readings, ReadingEntry{
			Timestamp:    formatTimestamp(r.Timestamp),
			GlucoseValue: r.GlucoseValue,
			Status:       string(r.Status),
			Condition:    string(r.Condition),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}
