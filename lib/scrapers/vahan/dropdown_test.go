package vahan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePanelOptions(t *testing.T) {
	html := `<div id="j_idt38_panel" class="ui-selectonemenu-panel">
		<ul>
			<li class="ui-selectonemenu-item">Select State</li>
			<li class="ui-selectonemenu-item">Karnataka(29)</li>
			<li class="ui-selectonemenu-item">  Delhi(7)  </li>
			<li class="ui-selectonemenu-item">Karnataka(29)</li>
			<li class="ui-selectonemenu-item"></li>
		</ul>
	</div>`

	options, err := parsePanelOptions(html)
	require.NoError(t, err)
	require.Equal(t, []string{"Karnataka(29)", "Delhi(7)"}, options)
}

func TestParsePanelOptionsPlainListItems(t *testing.T) {
	options, err := parsePanelOptions(`<div><ul><li>2023</li><li>2024</li></ul></div>`)
	require.NoError(t, err)
	require.Equal(t, []string{"2023", "2024"}, options)
}

func TestErrorSentinel(t *testing.T) {
	sentinel := errorSentinel("timeout waiting for #%s panel", "j_idt38")
	require.Len(t, sentinel, 1)
	require.True(t, IsErrorSentinel(sentinel[0]))
	require.Contains(t, sentinel[0], "j_idt38")

	require.False(t, IsErrorSentinel("Karnataka(29)"))
}

func TestNearestOption(t *testing.T) {
	options := []string{"Karnataka(29)", "Kerala(14)", "Delhi(7)"}
	require.Equal(t, "Karnataka(29)", nearestOption("Karnataka", options))
	require.Equal(t, "Delhi(7)", nearestOption("Dehli", options))
	require.Equal(t, "", nearestOption("anything", nil))
}

func TestCSSEscapeID(t *testing.T) {
	require.Equal(t, `vchgroupTable\:selectCatgGrp_panel`, cssEscapeID("vchgroupTable:selectCatgGrp_panel"))
	require.Equal(t, "selectedYear", cssEscapeID("selectedYear"))
}

func TestTrimInputSuffix(t *testing.T) {
	require.Equal(t, "j_idt38", trimInputSuffix("j_idt38_input"))
	require.Equal(t, "j_idt38", trimInputSuffix("j_idt38"))
}
