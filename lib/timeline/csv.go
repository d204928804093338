package timeline

import (
	"encoding/csv"
	"io"
	"strconv"
)

// LapRow is one lap in the flat tabular output.
type LapRow struct {
	DriverName string
	DriverID   string
	SessionID  int
	StartTime  string
	LapNumber  int
	LapSeconds float64
}

var allLapsHeader = []string{
	"driver_name", "driver_id", "heat_no", "heat_datetime_iso", "lap_number", "lap_seconds",
}

// WriteAllLaps writes the row-per-lap CSV output shape.
func WriteAllLaps(w io.Writer, rows []LapRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(allLapsHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.DriverName,
			row.DriverID,
			strconv.Itoa(row.SessionID),
			row.StartTime,
			strconv.Itoa(row.LapNumber),
			strconv.FormatFloat(row.LapSeconds, 'f', 3, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
