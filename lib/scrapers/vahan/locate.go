package vahan

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const pageSettleDelay = 3 * time.Second

// The dashboard regenerates the ids of the state selector and the
// refresh button on every deploy (and sometimes per session), so both
// are located structurally at page-open time. Each control has an
// ordered list of strategies; the first one that produces an id wins.

type locateStrategy struct {
	name   string
	script string
}

// Strategy scripts run in the page and return the element id as a
// string, or "" when the strategy finds nothing.
var stateStrategies = []locateStrategy{
	{
		// The underlying <select> keeps the real option list even
		// though PrimeFaces hides it behind a styled widget. Match it
		// by the state names it must contain, then walk back to the
		// widget root. The select's own id carries an "_input" suffix
		// that is stripped Go-side.
		name: "select-option-texts",
		script: `(() => {
			const wanted = ["Karnataka", "Delhi", "Maharashtra"];
			for (const sel of document.querySelectorAll("select")) {
				const texts = Array.from(sel.options).map(o => o.text);
				if (!wanted.some(w => texts.some(t => t.includes(w)))) continue;
				if (sel.id) return sel.id;
				const widget = sel.closest("div.ui-selectonemenu");
				if (widget && widget.id) return widget.id;
			}
			return "";
		})()`,
	},
	{
		// Fallback: the widget label still reads "All Vahan4 Running
		// States" (or similar) before any selection is made.
		name: "widget-label-text",
		script: `(() => {
			for (const widget of document.querySelectorAll("div.ui-selectonemenu")) {
				const label = widget.querySelector("label");
				if (!label) continue;
				const text = (label.textContent || "").trim();
				if (text.includes("State") || text.includes("Vahan4")) return widget.id || "";
			}
			return "";
		})()`,
	},
}

var refreshStrategies = []locateStrategy{
	{
		name: "ui-button-refresh-span",
		script: `(() => {
			for (const btn of document.querySelectorAll("button.ui-button")) {
				const span = btn.querySelector("span.ui-button-text");
				if (span && (span.textContent || "").trim() === "Refresh") return btn.id || "";
			}
			return "";
		})()`,
	},
	{
		name: "any-refresh-button",
		script: `(() => {
			for (const btn of document.querySelectorAll("button, input[type=submit], input[type=button]")) {
				const text = ((btn.textContent || "") + " " + (btn.value || "")).trim();
				if (text.includes("Refresh")) return btn.id || "";
			}
			return "";
		})()`,
	},
	{
		// Last resort: among the generated j_idt buttons, prefer one
		// whose onclick smells like a refresh, otherwise assume the
		// last one is the submit.
		name: "j-idt-heuristic",
		script: `(() => {
			const candidates = Array.from(document.querySelectorAll("button"))
				.filter(b => (b.id || "").startsWith("j_idt"));
			if (candidates.length === 0) return "";
			for (const btn of candidates) {
				const onclick = btn.getAttribute("onclick") || "";
				if (onclick.toLowerCase().includes("refresh")) return btn.id;
			}
			return candidates[candidates.length - 1].id;
		})()`,
	},
}

// discoverDynamicControls resolves the state dropdown and refresh
// button ids for the current page. Neither miss is fatal: without the
// state dropdown the scraper still enumerates and applies the static
// controls, without the refresh button it assumes filters auto-apply.
func (s *Scraper) discoverDynamicControls(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "vahan.discoverDynamicControls")
	defer span.End()

	id, strat := s.locate(ctx, stateStrategies)
	if id == "" {
		slog.WarnContext(ctx, "state dropdown not found, continuing without state filtering")
	} else {
		id = trimInputSuffix(id)
		slog.DebugContext(ctx, "located state dropdown", "id", id, "strategy", strat)
	}
	s.stateDropdownID = id

	id, strat = s.locate(ctx, refreshStrategies)
	if id == "" {
		slog.WarnContext(ctx, "refresh button not found, filter changes may not apply")
	} else {
		slog.DebugContext(ctx, "located refresh button", "id", id, "strategy", strat)
	}
	s.refreshID = id
}

// locate runs the strategies in order and returns the first id found.
// A strategy that errors falls through to the next one.
func (s *Scraper) locate(ctx context.Context, strategies []locateStrategy) (id, strategy string) {
	for _, strat := range strategies {
		var found string
		if err := s.session.Evaluate(ctx, strat.script, &found); err != nil {
			slog.WarnContext(ctx, "locate strategy failed",
				"strategy", strat.name, "err", err)
			continue
		}
		found = strings.TrimSpace(found)
		if found != "" {
			return found, strat.name
		}
	}
	return "", ""
}

// trimInputSuffix strips the "_input" suffix PrimeFaces appends to the
// hidden select inside a selectonemenu widget.
func trimInputSuffix(id string) string {
	return strings.TrimSuffix(id, "_input")
}
