package roster

import (
	"encoding/csv"
	"os"
	"strings"
)

// Driver is one watched racer: the name we expect pages to render and
// the site's customer id for their history page.
type Driver struct {
	DisplayName string
	ExternalID  string
}

// Load reads a "Name,ID" file, one driver per line. Lines with fewer
// than two fields are skipped silently. A missing file is an error;
// callers treat it as fatal at startup.
func Load(path string) ([]Driver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var drivers []Driver
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		id := strings.TrimSpace(record[1])
		if name == "" || id == "" {
			continue
		}
		drivers = append(drivers, Driver{DisplayName: name, ExternalID: id})
	}
	return drivers, nil
}
