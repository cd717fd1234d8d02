// Package leadfile parses lead lists from CSV and XLSX files into
// profiles ready for bulk import.
package leadfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
)

// Recognized column headers, matched case-insensitively after trimming.
var columnAliases = map[string]string{
	"name":         "name",
	"full name":    "name",
	"title":        "job_title",
	"job title":    "job_title",
	"job_title":    "job_title",
	"company":      "company",
	"organization": "company",
	"location":     "location",
	"email":        "email",
	"profile url":  "profile_url",
	"profile_url":  "profile_url",
	"url":          "profile_url",
	"linkedin":     "profile_url",
}

// Load reads a lead list from path, dispatching on the file extension.
// Supported formats are .csv and .xlsx.
func Load(path string) ([]*model.ExtractedProfile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: open csv")
		}
		defer f.Close()
		return ParseCSV(f)
	case ".xlsx":
		return ParseXLSX(path)
	default:
		return nil, eris.Errorf("leadfile: unsupported file type %q", filepath.Ext(path))
	}
}

// ParseCSV reads leads from a CSV stream. The first row must be a header.
func ParseCSV(r io.Reader) ([]*model.ExtractedProfile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("leadfile: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: read header")
	}

	cols := mapColumns(header)
	if _, ok := cols["name"]; !ok {
		return nil, eris.New("leadfile: no name column found")
	}

	var profiles []*model.ExtractedProfile
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: read row")
		}
		if p := rowToProfile(record, cols); p != nil {
			profiles = append(profiles, p)
		}
	}

	return profiles, nil
}

// ParseXLSX reads leads from the first sheet of an XLSX workbook.
// The first row must be a header.
func ParseXLSX(path string) ([]*model.ExtractedProfile, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("leadfile: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("leadfile: empty sheet")
	}

	cols := mapColumns(rowToStrings(sheet.Rows[0]))
	if _, ok := cols["name"]; !ok {
		return nil, eris.New("leadfile: no name column found")
	}

	var profiles []*model.ExtractedProfile
	for _, row := range sheet.Rows[1:] {
		if p := rowToProfile(rowToStrings(row), cols); p != nil {
			profiles = append(profiles, p)
		}
	}

	return profiles, nil
}

// mapColumns maps canonical field names to column indexes. The first
// header matching an alias wins.
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		key, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	return cols
}

func rowToProfile(record []string, cols map[string]int) *model.ExtractedProfile {
	cell := func(key string) string {
		i, ok := cols[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	p := &model.ExtractedProfile{
		Name:        cell("name"),
		JobTitle:    cell("job_title"),
		Company:     cell("company"),
		Location:    cell("location"),
		Email:       cell("email"),
		ProfileURL:  cell("profile_url"),
		ExtractedAt: time.Now().UTC(),
		Source:      model.ProfileSource,
	}
	if p.Name == "" && p.ProfileURL == "" {
		return nil // skip blank rows
	}
	if p.Name == "" {
		p.Name = model.NameUnresolved
	}
	return p
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}
