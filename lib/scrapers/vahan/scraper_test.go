package vahan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// A page where discovery found nothing: the scraper must keep working
// with the static controls instead of failing the whole run.
func TestControlsWithoutStateDropdown(t *testing.T) {
	s := New(nil, "")

	controls := s.Controls()
	require.Len(t, controls, len(staticControls))
	require.NotContains(t, controls, ControlState)
	require.Equal(t, "selectedYear", controls[ControlYear])

	_, ok := s.controlID(ControlState)
	require.False(t, ok)
}

func TestOptionsStateDropdownMissing(t *testing.T) {
	s := New(nil, "")

	options := s.Options(context.Background(), ControlState)
	require.Len(t, options, 1)
	require.True(t, IsErrorSentinel(options[0]))
}

func TestControlsAfterDiscovery(t *testing.T) {
	s := New(nil, "")
	s.stateDropdownID = "j_idt35"

	controls := s.Controls()
	require.Equal(t, "j_idt35", controls[ControlState])
	id, ok := s.controlID(ControlState)
	require.True(t, ok)
	require.Equal(t, "j_idt35", id)
}
