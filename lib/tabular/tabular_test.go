package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAlignsColumnsByName(t *testing.T) {
	merged := Table{
		Headers: []string{"Vehicle Class", "2WIC", "TOTAL"},
		Rows:    [][]string{{"MOTOR CYCLE", "120", "4620"}},
	}
	merged.Append(Table{
		Headers: []string{"Vehicle Class", "TOTAL", "LMV"},
		Rows:    [][]string{{"MOTOR CAR", "1000", "950"}},
	})

	require.Equal(t, []string{"Vehicle Class", "2WIC", "TOTAL", "LMV"}, merged.Headers)
	require.Equal(t, [][]string{
		{"MOTOR CYCLE", "120", "4620", ""},
		{"MOTOR CAR", "", "1000", "950"},
	}, merged.Rows)
}

func TestAppendIntoEmptyTable(t *testing.T) {
	var merged Table
	merged.Append(Table{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"1", "2"}},
	})
	require.Equal(t, []string{"A", "B"}, merged.Headers)
	require.Len(t, merged.Rows, 1)
}

func TestCellToleratesRaggedRows(t *testing.T) {
	table := Table{Headers: []string{"A", "B", "C"}}
	require.Equal(t, "2", table.Cell([]string{"1", "2"}, "B"))
	require.Equal(t, "", table.Cell([]string{"1", "2"}, "C"))
	require.Equal(t, "", table.Cell([]string{"1", "2"}, "Missing"))
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Table{
		Headers: []string{"A"},
		Rows:    [][]string{{"1"}},
	}
	clone := orig.Clone()
	clone.Headers[0] = "B"
	clone.Rows[0][0] = "2"
	require.Equal(t, "A", orig.Headers[0])
	require.Equal(t, "1", orig.Rows[0][0])
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	orig := Table{
		Headers: []string{"A", "B"},
		Rows: [][]string{
			{"1", "with,comma"},
			{"short"},
		},
	}
	require.NoError(t, orig.WriteCSV(path))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, orig.Headers, got.Headers)
	require.Equal(t, []string{"1", "with,comma"}, got.Rows[0])
	require.Equal(t, []string{"short", ""}, got.Rows[1], "ragged row padded on write")
}

func TestReadCSVMissing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
