// Package table reads the street export table into typed rows.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Required column names.
const (
	ColumnID           = "id"
	ColumnName         = "name"
	ColumnDistrictCode = "district_code"
	ColumnGeometry     = "geometry"
)

var requiredColumns = []string{ColumnID, ColumnName, ColumnDistrictCode, ColumnGeometry}

// Row is one record of the export.
type Row struct {
	ID           string
	Name         string
	DistrictCode string
	Geometry     string
	Missing      []string // required columns absent from a short record
	Index        int      // 0-based data row index, header excluded
}

// SourceReadError indicates the input table could not be loaded at all.
type SourceReadError struct {
	Err  error
	Path string
}

func (e *SourceReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read source table: %v", e.Err)
	}
	return fmt.Sprintf("read source table %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// ReadFile loads all rows from the CSV file at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	rows, err := Read(f)
	if err != nil {
		var serr *SourceReadError
		if errors.As(err, &serr) {
			serr.Path = path
		}
		return nil, err
	}

	return rows, nil
}

// Read loads all rows from CSV data with a header line.
// Columns are matched by header name; extra columns are ignored.
// A record shorter than the header is kept with its absent columns listed in Missing.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SourceReadError{Err: errors.New("empty table")}
		}
		return nil, &SourceReadError{Err: err}
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, &SourceReadError{Err: err}
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SourceReadError{Err: err}
		}

		row := Row{Index: len(rows)}
		field := func(column string) string {
			i := idx[column]
			if i >= len(record) {
				row.Missing = append(row.Missing, column)
				return ""
			}
			return record[i]
		}

		row.ID = strings.TrimSpace(field(ColumnID))
		row.Name = field(ColumnName)
		row.DistrictCode = field(ColumnDistrictCode)
		row.Geometry = field(ColumnGeometry)

		rows = append(rows, row)
	}

	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}
