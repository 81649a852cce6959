package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"campus-soporte/core/store"
)

// WriteCSV writes the incident list as UTF-8 CSV with the same columns as the
// spreadsheet export.
func WriteCSV(w io.Writer, incidents []store.Incident) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(incidentHeader); err != nil {
		return err
	}
	for _, inc := range incidents {
		row := incidentRow(inc)
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = fmt.Sprint(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
