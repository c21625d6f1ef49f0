package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "motorcycle", NormalizeName("  Motor Cycle\n"))
	require.True(t, MatchName("Motor Cycle", []string{"motorcycle"}))
	require.False(t, MatchName("Bus", []string{"motorcycle"}))
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", CollapseWhitespace("  a \t b\n\nc "))
	require.Equal(t, "", CollapseWhitespace("   "))
}

func TestTitleCase(t *testing.T) {
	require.Equal(t, "Uttar Pradesh", TitleCase("UTTAR PRADESH"))
	require.Equal(t, "Delhi", TitleCase("delhi"))
	require.Equal(t, "Delhi", TitleCase(TitleCase("delhi")))
}

func TestStripParenthetical(t *testing.T) {
	require.Equal(t, "Karnataka", StripParenthetical("Karnataka(29)"))
	require.Equal(t, "Delhi", StripParenthetical("Delhi (7)"))
	require.Equal(t, "Goa", StripParenthetical("Goa"))
}

func TestExtractYear(t *testing.T) {
	require.Equal(t, 2023, ExtractYear("Calendar Year (2023)"))
	require.Equal(t, 2021, ExtractYear("2021"))
	require.Equal(t, 0, ExtractYear("no year here"))
	require.Equal(t, 2022, ExtractYear("2022 vs 2023"))
}
