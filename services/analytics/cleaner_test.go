package analytics

import (
	"context"
	"testing"
	"vahanpulse-backend/lib/tabular"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func rawTable() tabular.Table {
	return tabular.Table{
		Headers: []string{"S No", "Vehicle Class", "2WIC", "2WN", "TOTAL", "Filter_State", "Filter_Year", "Scraped_Date"},
		Rows: [][]string{
			{"1", "MOTOR CYCLE/SCOOTER", "120", "4,500", "4,620", "Karnataka(29)", "2023", "2026-08-29"},
			{"2", "AUTO RICKSHAW", "-", "300", "300", "Karnataka(29)", "2023", "2026-08-29"},
			{"", "", "", "", "", "", "", ""},
			{"3", "MOTOR CAR", "abc", "0", "1,000", "  delhi  ", "Calendar Year (2023)", "2026-08-29"},
			{"1", "MOTOR CYCLE/SCOOTER", "120", "4,500", "4,620", "Karnataka(29)", "2023", "2026-08-29"},
		},
	}
}

func TestCleanCoercesAndNormalizes(t *testing.T) {
	rows, err := Clean(context.Background(), rawTable())
	require.NoError(t, err)
	require.Len(t, rows, 3, "blank row and duplicate must be dropped")

	first := rows[0]
	require.Equal(t, "Karnataka", first.State)
	require.Equal(t, 2023, first.Year)
	require.Equal(t, "MOTOR CYCLE/SCOOTER", first.VehicleClass)
	require.Equal(t, "2W", first.Category)
	require.Equal(t, int64(120), first.Counts["2WIC"])
	require.Equal(t, int64(4500), first.Counts["2WN"], "thousands separator must be stripped")
	require.Equal(t, int64(4620), first.Total())

	second := rows[1]
	require.Equal(t, int64(0), second.Counts["2WIC"], "dash coerces to zero")
	require.Equal(t, "3W", second.Category)

	third := rows[2]
	require.Equal(t, "Delhi", third.State)
	require.Equal(t, 2023, third.Year, "year extracted from decorated label")
	require.Equal(t, int64(0), third.Counts["2WIC"], "garbage coerces to zero")
	require.Equal(t, "4W+", third.Category)
}

func TestCleanFillsMissingValues(t *testing.T) {
	rows, err := Clean(context.Background(), tabular.Table{
		Headers: []string{"Vehicle Class", "TOTAL", "Filter_State", "Filter_Year"},
		Rows: [][]string{
			{"", "50", "", ""},
		},
	})
	require.NoError(t, err)
	require.Equal(t, unknownState, rows[0].State)
	require.Equal(t, unknownVehicle, rows[0].VehicleClass)
	require.Equal(t, unknownYear, rows[0].Year)
	require.Equal(t, "Other", rows[0].Category)
}

func TestCleanIsIdempotent(t *testing.T) {
	once, err := Clean(context.Background(), rawTable())
	require.NoError(t, err)

	twice, err := Clean(context.Background(), ToTable(once))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(once, twice))
}

func TestCleanKeepsRowsWithoutIdentityColumns(t *testing.T) {
	// A counts-only table has no state, year or class to key on; the
	// sentinel fills must not collapse distinct rows into one.
	src := tabular.Table{
		Headers: []string{"TOTAL"},
		Rows:    [][]string{{"10"}, {"20"}},
	}
	rows, err := Clean(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(10), rows[0].Total())
	require.Equal(t, int64(20), rows[1].Total())

	twice, err := Clean(context.Background(), ToTable(rows))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(rows, twice))
}

func TestCleanCarriesMetaColumns(t *testing.T) {
	rows, err := Clean(context.Background(), tabular.Table{
		Headers: []string{"Vehicle Class", "TOTAL", "Filter_State", "Filter_Year", "Filter_Vehicle_Type", "Scraped_Date"},
		Rows: [][]string{
			{"BUS", "10", "Delhi", "2023", "ACTUAL VALUE", "2026-08-29"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"Filter_Vehicle_Type": "ACTUAL VALUE",
		"Scraped_Date":        "2026-08-29",
	}, rows[0].Meta)

	out := ToTable(rows)
	require.Equal(t, []string{
		"State", "Year", "Vehicle Class", "Vehicle_Category", "TOTAL",
		"Filter_Vehicle_Type", "Scraped_Date",
	}, out.Headers)
	require.Equal(t, "ACTUAL VALUE", out.Cell(out.Rows[0], "Filter_Vehicle_Type"))
	require.Equal(t, "2026-08-29", out.Cell(out.Rows[0], "Scraped_Date"))
}

func TestCleanEmptyTable(t *testing.T) {
	_, err := Clean(context.Background(), tabular.Table{})
	require.ErrorIs(t, err, ErrNoData)

	_, err = Clean(context.Background(), tabular.Table{
		Headers: []string{"TOTAL"},
		Rows:    [][]string{{""}, {"  "}},
	})
	require.ErrorIs(t, err, ErrNoData)
}

func TestCleanQuarterExtraction(t *testing.T) {
	rows, err := Clean(context.Background(), tabular.Table{
		Headers: []string{"Vehicle Class", "TOTAL", "Filter_State", "Filter_Year"},
		Rows: [][]string{
			{"BUS", "10", "Delhi", "2023 Q2"},
			{"BUS", "12", "Delhi", "2023"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Q2", rows[0].Quarter)
	require.Equal(t, "2023-Q2", rows[0].Period())
	require.Equal(t, "", rows[1].Quarter)
	require.Equal(t, "2023", rows[1].Period())
}

func TestParseCount(t *testing.T) {
	cases := map[string]int64{
		"1,234":     1234,
		" 42 ":      42,
		"-":         0,
		"":          0,
		"abc":       0,
		"12 345":    12345,
		"3.0":       3,
		"-150":      0,
		"-3.5":      0,
		"1,234,567": 1234567,
	}
	for in, want := range cases {
		require.Equal(t, want, parseCount(in), "parseCount(%q)", in)
	}
}

func TestCleanCategoryPrefersExplicitColumn(t *testing.T) {
	require.Equal(t, "EV", cleanCategory("EV", "MOTOR CYCLE"))
	require.Equal(t, "2W", cleanCategory("", "M-CYCLE/SCOOTER"))
	require.Equal(t, "Other", cleanCategory("", "TRACTOR"))
}
