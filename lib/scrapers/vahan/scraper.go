// Package vahan scrapes vehicle registration reports from the VAHAN
// public dashboard. The dashboard is a JSF/PrimeFaces application: every
// widget is rendered server-side with generated ids, all state lives in
// the browser session, and filter changes go through AJAX partial
// updates. Interaction therefore happens inside a real browser
// (chromedp) rather than over plain HTTP.
package vahan

import (
	"context"
	"fmt"
	"log/slog"
	"vahanpulse-backend/lib/browser"
)

// DefaultPortalURL is the public report page this package was written
// against.
const DefaultPortalURL = "https://vahan.parivahan.gov.in/vahan4dashboard/vahan/view/reportview.xhtml"

// Control labels accepted by Options, ApplyFilters and friends.
const (
	ControlYAxis       = "Y-Axis"
	ControlXAxis       = "X-Axis"
	ControlYear        = "Year"
	ControlYearType    = "Year Type"
	ControlVehicleType = "Vehicle Type"
	ControlState       = "State"
)

// staticControls maps filter labels to the element ids that have stayed
// stable across dashboard releases. The state selector and the refresh
// button are NOT here: their ids are regenerated by JSF and must be
// rediscovered on every page load (see locate.go).
var staticControls = map[string]string{
	ControlYAxis:       "yaxisVar",
	ControlXAxis:       "xaxisVar",
	ControlYear:        "selectedYear",
	ControlYearType:    "selectedYearType",
	ControlVehicleType: "vchgroupTable:selectCatgGrp",
}

// controlOrder is the canonical order filters are applied in. Applying
// the state before the year matters on the real portal: changing state
// resets the year selector.
var controlOrder = []string{
	ControlState,
	ControlYear,
	ControlYearType,
	ControlVehicleType,
	ControlYAxis,
	ControlXAxis,
}

// Scraper drives a single browser session against the dashboard.
// It is not safe for concurrent use; one Scraper owns one page.
type Scraper struct {
	session *browser.Session
	baseURL string

	// Discovered element ids, valid only for the currently loaded
	// page. OpenPage clears and repopulates them.
	stateDropdownID string
	refreshID       string
}

// New creates a Scraper on top of an existing browser session. The
// session stays owned by the caller; Close does not tear it down.
func New(session *browser.Session, baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = DefaultPortalURL
	}
	return &Scraper{session: session, baseURL: baseURL}
}

// OpenPage navigates to the dashboard and rediscovers the dynamic
// controls. It must be called before any other operation, and again
// after anything that causes a full page reload.
func (s *Scraper) OpenPage(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "vahan.OpenPage")
	defer span.End()

	// Dynamic handles from a previous load are invalid the moment we
	// navigate.
	s.stateDropdownID = ""
	s.refreshID = ""

	slog.InfoContext(ctx, "opening dashboard", "url", s.baseURL)
	if err := s.session.Navigate(ctx, s.baseURL); err != nil {
		return fmt.Errorf("navigate to dashboard: %w", err)
	}
	// The widgets finish initializing a beat after document ready.
	if err := s.session.Sleep(ctx, pageSettleDelay); err != nil {
		return err
	}

	s.discoverDynamicControls(ctx)
	slog.InfoContext(ctx, "dashboard ready",
		"state_dropdown", s.stateDropdownID,
		"refresh_button", s.refreshID)
	return nil
}

// Controls returns the label -> element id map for the current page,
// static ids plus whatever dynamic ids discovery found. Labels with no
// resolved id are absent.
func (s *Scraper) Controls() map[string]string {
	out := make(map[string]string, len(staticControls)+1)
	for label, id := range staticControls {
		out[label] = id
	}
	if s.stateDropdownID != "" {
		out[ControlState] = s.stateDropdownID
	}
	return out
}

func (s *Scraper) controlID(label string) (string, bool) {
	if label == ControlState {
		return s.stateDropdownID, s.stateDropdownID != ""
	}
	id, ok := staticControls[label]
	return id, ok
}
