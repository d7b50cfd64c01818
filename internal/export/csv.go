package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/glucolab/glucometer/internal/domain"
)

var csvHeader = []string{"Timestamp", "Glucose (mg/dL)", "Status", "Condition"}

// WriteCSV writes the readings as CSV, one row per reading, oldest first.
func WriteCSV(w io.Writer, readings []domain.Reading) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range readings {
		row := []string{
			formatTimestamp(r.Timestamp),
			strconv.FormatFloat(r.GlucoseValue, 'f', 1, 64),
			string(r.Status),
			string(r.Condition),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
