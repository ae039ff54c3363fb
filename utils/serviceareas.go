package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadServiceAreasCSV reads serviceable postcodes from a CSV file. The
// file must have a header row containing a "postcode" column; other
// columns are ignored. Postcodes are returned in file order, in
// canonical format.
func LoadServiceAreasCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open service area file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse service area file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("service area file %s is empty", path)
	}

	col := -1
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), "postcode") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, fmt.Errorf("service area file %s has no postcode column", path)
	}

	var postcodes []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		pc := strings.TrimSpace(row[col])
		if pc == "" {
			continue
		}
		postcodes = append(postcodes, FormatPostcode(pc))
	}
	return postcodes, nil
}
