package templates

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const CSVName = "templates.csv"

// LoadFromDataDir returns the built-in catalog followed by any rows from
// templates.csv in dataDir. A missing CSV is not an error; built-ins win on
// duplicate ids.
func LoadFromDataDir(dataDir string) (*Catalog, error) {
	all := append([]Template(nil), Builtin...)
	path := filepath.Join(dataDir, CSVName)
	if _, err := os.Stat(path); err != nil {
		return NewCatalog(all), nil
	}
	extra, err := loadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return NewCatalog(append(all, extra...)), nil
}

func loadCSV(path string) ([]Template, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"id", "url"} {
		if _, ok := cols[need]; !ok {
			return nil, fmt.Errorf("csv %s: missing %q column", path, need)
		}
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var out []Template
	for n, row := range rows[1:] {
		t := Template{
			ID:   get(row, "id"),
			Name: get(row, "name"),
			URL:  get(row, "url"),
		}
		if t.ID == "" || t.URL == "" {
			continue
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		if s := get(row, "viral_score"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("csv %s row %d: viral_score: %w", path, n+2, err)
			}
			t.ViralScore = min(max(v, 0), 100)
		}
		out = append(out, t)
	}
	return out, nil
}
