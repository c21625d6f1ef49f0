package vahan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"vahanpulse-backend/lib/browser"
	"vahanpulse-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
)

// Selection maps control labels to the option values that should be
// selected. Application order is fixed by controlOrder, not map order,
// because the portal resets dependent dropdowns when the state changes.
type Selection map[string]string

const (
	refreshWait    = 5 * time.Second
	postSelectWait = time.Second
)

// ApplyFilters selects the requested options, triggers a refresh and
// extracts the resulting report table. Individual filter misses
// (unknown label, option not in the dropdown) are logged and skipped;
// only browser-level failures abort.
func (s *Scraper) ApplyFilters(ctx context.Context, sel Selection) Table {
	ctx, span := tracer.Start(ctx, "vahan.ApplyFilters")
	defer span.End()
	span.SetAttributes(attribute.Int("filter_count", len(sel)))

	for _, label := range controlOrder {
		value, wanted := sel[label]
		if !wanted {
			continue
		}
		if err := s.applyOne(ctx, label, value); err != nil {
			return errorTable(fmt.Errorf("apply %s=%q: %w", label, value, err))
		}
		if err := s.session.Sleep(ctx, postSelectWait); err != nil {
			return errorTable(err)
		}
	}
	for label := range sel {
		if _, known := staticControls[label]; !known && label != ControlState {
			slog.WarnContext(ctx, "skipping unknown filter label", "label", label)
		}
	}

	if err := s.clickRefresh(ctx); err != nil {
		return errorTable(err)
	}
	return s.ExtractTable(ctx)
}

// applyOne drives a single dropdown through its selection cycle:
// open the panel, find the option by normalized text, click it. An
// option miss is downgraded to a warning with a nearest-match
// suggestion so a sweep over many combinations keeps going.
func (s *Scraper) applyOne(ctx context.Context, label, value string) error {
	id, ok := s.controlID(label)
	if !ok {
		slog.WarnContext(ctx, "skipping filter with no control on page", "label", label)
		return nil
	}
	if err := s.closeOpenPanels(ctx); err != nil {
		return err
	}
	clicked, err := s.session.ClickByID(ctx, id)
	if err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("control #%s not present", id)
	}
	if err := s.session.WaitVisibleByID(ctx, id+"_panel"); err != nil {
		return err
	}
	if err := s.session.Sleep(ctx, panelSettleDelay); err != nil {
		return err
	}

	matched, err := s.clickOption(ctx, id, value)
	if err != nil {
		return err
	}
	if !matched {
		options, perr := s.panelOptions(ctx, id)
		if perr == nil {
			slog.WarnContext(ctx, "option not found in dropdown, skipping",
				"label", label, "value", value,
				"suggestion", nearestOption(value, options))
		} else {
			slog.WarnContext(ctx, "option not found in dropdown, skipping",
				"label", label, "value", value)
		}
		// Leave the dropdown as it was.
		return s.session.ClickBody(ctx)
	}
	slog.DebugContext(ctx, "filter applied", "label", label, "value", value)
	return nil
}

// clickOption clicks the panel item whose collapsed text equals value.
func (s *Scraper) clickOption(ctx context.Context, id, value string) (bool, error) {
	script := fmt.Sprintf(`(() => {
		const panel = document.getElementById(%s);
		if (!panel) return false;
		const wanted = %s;
		let items = panel.querySelectorAll("li.ui-selectonemenu-item");
		if (items.length === 0) items = panel.querySelectorAll("li");
		for (const item of items) {
			const text = (item.textContent || "").replace(/\s+/g, " ").trim();
			if (text === wanted) {
				item.scrollIntoView({block: "center"});
				item.click();
				return true;
			}
		}
		return false;
	})()`, jsQuote(id+"_panel"), jsQuote(textutil.CollapseWhitespace(value)))

	var matched bool
	if err := s.session.Evaluate(ctx, script, &matched); err != nil {
		return false, err
	}
	return matched, nil
}

func (s *Scraper) panelOptions(ctx context.Context, id string) ([]string, error) {
	html, err := s.session.OuterHTML(ctx, "#"+cssEscapeID(id+"_panel"))
	if err != nil {
		return nil, err
	}
	return parsePanelOptions(html)
}

// nearestOption returns the closest available option to the requested
// value, for actionable skip logs.
func nearestOption(value string, options []string) string {
	best := ""
	bestScore := 0.0
	for _, opt := range options {
		score := matchr.JaroWinkler(value, opt, true)
		if score > bestScore {
			bestScore = score
			best = opt
		}
	}
	return best
}

// clickRefresh submits the current filter selection and waits for the
// report panel to re-render. A page without a discovered refresh
// button applies filters on selection, so the missing button is not
// an error.
func (s *Scraper) clickRefresh(ctx context.Context) error {
	if s.refreshID == "" {
		slog.DebugContext(ctx, "no refresh button, assuming filters auto-apply")
		return s.session.Sleep(ctx, refreshWait)
	}
	clicked, err := s.session.ClickByID(ctx, s.refreshID)
	if err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("refresh button #%s disappeared", s.refreshID)
	}
	if err := s.session.Sleep(ctx, refreshWait); err != nil {
		return err
	}
	if err := s.session.WaitVisible(ctx, "#"+reportPanelID); err != nil {
		// The panel can legitimately be empty for sparse filter
		// combinations; extraction reports that as a timeout status.
		if errors.Is(err, browser.ErrTimeout) {
			return nil
		}
		return err
	}
	return nil
}

// jsQuote renders a Go string as a JavaScript string literal.
func jsQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
