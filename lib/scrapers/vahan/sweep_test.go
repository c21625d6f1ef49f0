package vahan

import (
	"context"
	"fmt"
	"testing"
	"vahanpulse-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestCombinationsCartesianProduct(t *testing.T) {
	combos := Combinations(map[string][]string{
		ControlState: {"Karnataka", "Delhi", "Maharashtra"},
		ControlYear:  {"2023", "2024"},
	}, []string{ControlState, ControlYear})

	require.Len(t, combos, 6)
	require.Equal(t, Selection{ControlState: "Karnataka", ControlYear: "2023"}, combos[0])
	require.Equal(t, Selection{ControlState: "Karnataka", ControlYear: "2024"}, combos[1])
	require.Equal(t, Selection{ControlState: "Maharashtra", ControlYear: "2024"}, combos[5])
}

func TestCombinationsSkipsEmptyDimensions(t *testing.T) {
	combos := Combinations(map[string][]string{
		ControlState: {"Delhi"},
		ControlYear:  nil,
	}, []string{ControlState, ControlYear})
	require.Equal(t, []Selection{{ControlState: "Delhi"}}, combos)

	require.Nil(t, Combinations(nil, []string{ControlState}))
}

type fakeRunner struct {
	failOn Selection
	calls  int
}

func (f *fakeRunner) runCombination(_ context.Context, sel Selection) Table {
	f.calls++
	if f.failOn != nil && sel[ControlState] == f.failOn[ControlState] && sel[ControlYear] == f.failOn[ControlYear] {
		return errorTable(fmt.Errorf("element not found"))
	}
	return Table{
		Headers: []string{"S No", "Vehicle Class", "TOTAL"},
		Rows: [][]string{
			{"1", "MOTOR CYCLE", "100"},
			{"2", "AUTO RICKSHAW", "50"},
		},
		Status: StatusSuccess,
	}
}

func TestSweepSkipsFailedCombinations(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/scrapers/vahan")
	defer cleanup()

	combos := Combinations(map[string][]string{
		ControlState: {"Karnataka", "Delhi", "Maharashtra"},
		ControlYear:  {"2023", "2024"},
	}, []string{ControlState, ControlYear})
	runner := &fakeRunner{failOn: Selection{ControlState: "Delhi", ControlYear: "2023"}}

	merged, err := sweep(context.Background(), runner, combos, rate.NewLimiter(rate.Inf, 1))
	require.NoError(t, err)
	require.Equal(t, 6, runner.calls, "failure must not stop the sweep")
	require.Len(t, merged.Rows, 10, "5 successful combinations x 2 rows")
}

func TestSweepTagsRowsWithFiltersAndDate(t *testing.T) {
	combos := []Selection{{ControlState: "Karnataka", ControlYear: "2023"}}
	merged, err := sweep(context.Background(), &fakeRunner{}, combos, rate.NewLimiter(rate.Inf, 1))
	require.NoError(t, err)

	require.Contains(t, merged.Headers, "Filter_State")
	require.Contains(t, merged.Headers, "Filter_Year")
	require.Contains(t, merged.Headers, scrapedDateColumn)
	row := merged.Rows[0]
	require.Equal(t, "Karnataka", merged.Cell(row, "Filter_State"))
	require.Equal(t, "2023", merged.Cell(row, "Filter_Year"))
	require.NotEmpty(t, merged.Cell(row, scrapedDateColumn))
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sweep(ctx, &fakeRunner{}, []Selection{{ControlState: "Delhi"}}, rate.NewLimiter(rate.Inf, 1))
	require.Error(t, err)
}
