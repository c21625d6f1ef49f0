package vahan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const groupedHeaderTable = `
<table id="vchgroupTable">
	<thead id="vchgroupTable_head">
		<tr role="row">
			<th rowspan="3">S No</th>
			<th rowspan="3">Vehicle Class</th>
			<th colspan="3">TWO WHEELER(NT)</th>
		</tr>
		<tr role="row">
			<th colspan="2">NON TRANSPORT</th>
			<th>GRAND TOTAL OF ALL</th>
		</tr>
		<tr role="row">
			<th>2WIC</th>
			<th>2WN</th>
			<th>TOTAL</th>
		</tr>
	</thead>
	<tbody>
		<tr><td>1</td><td>MOTOR CYCLE</td><td>120</td><td>4,500</td><td>4,620</td></tr>
		<tr><td></td><td></td><td></td><td></td><td></td></tr>
		<tr><td>2</td><td>SCOOTER</td><td>80</td><td>2,100</td><td>2,180</td></tr>
	</tbody>
</table>`

func TestParseReportTableGroupedHeader(t *testing.T) {
	table := parseReportTable(groupedHeaderTable)
	require.Equal(t, StatusSuccess, table.Status)
	require.Equal(t, []string{"S No", "Vehicle Class", "2WIC", "2WN", "TOTAL"}, table.Headers)
	require.Len(t, table.Rows, 2, "spacer row should be dropped")
	require.Equal(t, []string{"1", "MOTOR CYCLE", "120", "4,500", "4,620"}, table.Rows[0])
}

func TestParseReportTableFlatHeader(t *testing.T) {
	html := `<table><thead><tr>
		<th>S No</th><th>Vehicle Class</th><th>Count</th>
	</tr></thead><tbody>
		<tr><td>1</td><td>AUTO RICKSHAW</td><td>300</td></tr>
	</tbody></table>`

	table := parseReportTable(html)
	require.Equal(t, StatusSuccess, table.Status)
	require.Equal(t, []string{"S No", "Vehicle Class", "Count"}, table.Headers)
	require.Equal(t, [][]string{{"1", "AUTO RICKSHAW", "300"}}, table.Rows)
}

func TestParseReportTableNoHeaderFallsBackToSkeleton(t *testing.T) {
	html := `<table><tbody>
		<tr><td>1</td><td>MOPED</td><td>5</td><td>10</td><td>0</td><td>15</td></tr>
	</tbody></table>`

	table := parseReportTable(html)
	require.Equal(t, StatusSuccess, table.Status)
	require.Equal(t, skeletonHeaders, table.Headers)
	require.Len(t, table.Rows, 1)
}

func TestParseReportTableEmptyBody(t *testing.T) {
	table := parseReportTable(`<table><thead><tr><th>S No</th></tr></thead><tbody></tbody></table>`)
	require.Equal(t, StatusSuccess, table.Status)
	require.True(t, table.IsEmpty())
}

func TestFlattenHeaderDropsGroupSpans(t *testing.T) {
	headers := flattenHeader([][]string{
		{"S No", "Vehicle Class", "TWO WHEELER(NT)", "THREE WHEELER(T)"},
		{"2WIC", "2WN", "3WT", "GRAND TOTAL"},
	})
	require.Equal(t, []string{"S No", "Vehicle Class", "2WIC", "2WN", "3WT", "TOTAL"}, headers)
}

func TestLeafLabelNormalizesTotals(t *testing.T) {
	for _, cell := range []string{"TOTAL", "Grand Total", "TOTAL OF ALL"} {
		label, ok := leafLabel(cell)
		require.True(t, ok, cell)
		require.Equal(t, "TOTAL", label)
	}
	_, ok := leafLabel("SOME VERY LONG GROUP HEADER")
	require.False(t, ok)
}
