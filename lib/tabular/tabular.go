// Package tabular holds the raw headers+rows table shape that scraped,
// uploaded and generated datasets all pass through before cleaning.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
)

type Table struct {
	Headers []string
	Rows    [][]string
}

func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of a header, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell reads a named column out of a row, tolerating ragged rows.
func (t Table) Cell(row []string, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Clone deep-copies the table. Downstream stages transform copies, never
// the upstream data.
func (t Table) Clone() Table {
	out := Table{
		Headers: append([]string(nil), t.Headers...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Append merges another table into this one, aligning columns by header
// name. Columns only one side has are kept, with missing cells left empty.
// Different filter combinations legitimately produce different column sets.
func (t *Table) Append(other Table) {
	colIdx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		colIdx[h] = i
	}
	for _, h := range other.Headers {
		if _, ok := colIdx[h]; !ok {
			colIdx[h] = len(t.Headers)
			t.Headers = append(t.Headers, h)
			for i, row := range t.Rows {
				t.Rows[i] = append(row, "")
			}
		}
	}

	for _, row := range other.Rows {
		aligned := make([]string, len(t.Headers))
		for i, h := range other.Headers {
			if i >= len(row) {
				break
			}
			aligned[colIdx[h]] = row[i]
		}
		t.Rows = append(t.Rows, aligned)
	}
}

// ReadCSV loads a CSV file whose first record is the header row.
func ReadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("csv %s is empty", path)
	}

	return Table{
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}

// WriteCSV writes the table with a header row.
func (t Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		// ragged rows are padded so every record matches the header
		if len(row) < len(t.Headers) {
			row = append(append([]string(nil), row...), make([]string, len(t.Headers)-len(row))...)
		}
		if err := writer.Write(row[:len(t.Headers)]); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
