package vahan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"vahanpulse-backend/lib/browser"
	"vahanpulse-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

const (
	dropdownRetries    = 3
	retryBackoff       = 2 * time.Second
	panelSettleDelay   = 500 * time.Millisecond
	betweenControlWait = time.Second
)

const errorSentinelPrefix = "ERROR: "

// errorSentinel wraps a failure message so it can travel inside an
// option list. Enumeration never fails hard: callers that only want
// real options filter with IsErrorSentinel.
func errorSentinel(format string, args ...any) []string {
	return []string{errorSentinelPrefix + fmt.Sprintf(format, args...)}
}

// IsErrorSentinel reports whether an option string is actually an
// enumeration failure marker.
func IsErrorSentinel(option string) bool {
	return strings.HasPrefix(option, errorSentinelPrefix)
}

// Options opens the dropdown identified by label and returns the
// visible option texts. Placeholder entries ("Select State" and
// friends) are stripped. After three failed attempts the result is a
// single-element sentinel list describing the failure.
func (s *Scraper) Options(ctx context.Context, label string) []string {
	ctx, span := tracer.Start(ctx, "vahan.Options")
	defer span.End()
	span.SetAttributes(attribute.String("control", label))

	id, ok := s.controlID(label)
	if !ok {
		return errorSentinel("unknown control %q", label)
	}

	var lastErr error
	for attempt := 1; attempt <= dropdownRetries; attempt++ {
		options, err := s.readDropdownOptions(ctx, id)
		if err == nil {
			return options
		}
		lastErr = err
		slog.WarnContext(ctx, "dropdown enumeration failed",
			"control", label, "attempt", attempt, "err", err)
		if attempt < dropdownRetries {
			if serr := s.session.Sleep(ctx, retryBackoff); serr != nil {
				lastErr = serr
				break
			}
		}
	}

	switch {
	case errors.Is(lastErr, browser.ErrTimeout):
		return errorSentinel("timeout waiting for #%s panel", id)
	case errors.Is(lastErr, context.Canceled), errors.Is(lastErr, context.DeadlineExceeded):
		return errorSentinel("cancelled while reading #%s", id)
	default:
		return errorSentinel("reading #%s: %v", id, lastErr)
	}
}

// AllOptions enumerates every known control. Sentinel lists are kept
// in the result so the caller can see exactly which controls failed.
func (s *Scraper) AllOptions(ctx context.Context) map[string][]string {
	ctx, span := tracer.Start(ctx, "vahan.AllOptions")
	defer span.End()

	out := make(map[string][]string)
	for _, label := range controlOrder {
		if _, ok := s.controlID(label); !ok {
			continue
		}
		out[label] = s.Options(ctx, label)
		if err := s.session.Sleep(ctx, betweenControlWait); err != nil {
			break
		}
	}
	return out
}

func (s *Scraper) readDropdownOptions(ctx context.Context, id string) ([]string, error) {
	if err := s.closeOpenPanels(ctx); err != nil {
		return nil, err
	}
	clicked, err := s.session.ClickByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !clicked {
		return nil, fmt.Errorf("element #%s not present", id)
	}

	panelID := id + "_panel"
	if err := s.session.WaitVisibleByID(ctx, panelID); err != nil {
		return nil, err
	}
	if err := s.session.Sleep(ctx, panelSettleDelay); err != nil {
		return nil, err
	}

	html, err := s.session.OuterHTML(ctx, "#"+cssEscapeID(panelID))
	if err != nil {
		return nil, err
	}
	options, err := parsePanelOptions(html)
	if err != nil {
		return nil, err
	}

	// Click away so the open panel does not block the next control.
	if err := s.session.ClickBody(ctx); err != nil {
		return nil, err
	}
	return options, nil
}

// parsePanelOptions extracts option texts from a selectonemenu panel,
// deduplicating and dropping "Select ..." placeholders.
func parsePanelOptions(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse panel html: %w", err)
	}
	var items []string
	doc.Find("li.ui-selectonemenu-item").Each(func(_ int, sel *goquery.Selection) {
		items = append(items, sel.Text())
	})
	if len(items) == 0 {
		// Some panels render plain li elements without the item class.
		doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
			items = append(items, sel.Text())
		})
	}
	return normalizeOptions(items), nil
}

func normalizeOptions(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		text := textutil.CollapseWhitespace(item)
		if text == "" || strings.HasPrefix(text, "Select ") {
			continue
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	return out
}

// closeOpenPanels dismisses any dropdown panel left open by a previous
// interaction. PrimeFaces keeps panels in the DOM with display:none,
// so only visibly open ones count.
func (s *Scraper) closeOpenPanels(ctx context.Context) error {
	var open bool
	script := `(() => {
		for (const panel of document.querySelectorAll("div.ui-selectonemenu-panel")) {
			if (window.getComputedStyle(panel).display !== "none") return true;
		}
		return false;
	})()`
	if err := s.session.Evaluate(ctx, script, &open); err != nil {
		return err
	}
	if !open {
		return nil
	}
	if err := s.session.ClickBody(ctx); err != nil {
		return err
	}
	return s.session.Sleep(ctx, panelSettleDelay)
}

// cssEscapeID makes a raw element id usable in a CSS selector. JSF ids
// contain colons, which CSS treats as pseudo-class separators.
func cssEscapeID(id string) string {
	return strings.ReplaceAll(id, ":", "\\:")
}
