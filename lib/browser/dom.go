package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// The portal's widget ids contain JSF separators (e.g.
// "vchgroupTable:selectCatgGrp") that break css selector syntax, so element
// access goes through document.getElementById instead of querySelector.

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// ClickByID scrolls an element into view and clicks it. Returns false when
// the element does not exist.
func (s *Session) ClickByID(ctx context.Context, id string) (bool, error) {
	js := fmt.Sprintf(`(function(id) {
		const el = document.getElementById(id);
		if (!el) return false;
		el.scrollIntoView({block: 'center'});
		el.click();
		return true;
	})(%s)`, jsString(id))

	var clicked bool
	if err := s.Evaluate(ctx, js, &clicked); err != nil {
		return false, err
	}
	return clicked, nil
}

// VisibleByID reports whether an element exists and is currently rendered.
func (s *Session) VisibleByID(ctx context.Context, id string) (bool, error) {
	js := fmt.Sprintf(`(function(id) {
		const el = document.getElementById(id);
		if (!el) return false;
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		return rect.width > 0 && rect.height > 0 &&
			style.display !== 'none' && style.visibility !== 'hidden';
	})(%s)`, jsString(id))

	var visible bool
	if err := s.Evaluate(ctx, js, &visible); err != nil {
		return false, err
	}
	return visible, nil
}

// WaitVisibleByID polls until the element is rendered or the session wait
// timeout elapses, in which case ErrTimeout is returned.
func (s *Session) WaitVisibleByID(ctx context.Context, id string) error {
	deadline := time.Now().Add(s.waitTimeout)
	for {
		visible, err := s.VisibleByID(ctx, id)
		if err != nil {
			return err
		}
		if visible {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: #%s", ErrTimeout, id)
		}
		if err := s.Sleep(ctx, 250*time.Millisecond); err != nil {
			return err
		}
	}
}

// WaitVisible is WaitVisibleByID for css selectors without JSF separators.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	js := fmt.Sprintf(`(function(sel) {
		const el = document.querySelector(sel);
		if (!el) return false;
		const rect = el.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	})(%s)`, jsString(selector))

	deadline := time.Now().Add(s.waitTimeout)
	for {
		var visible bool
		if err := s.Evaluate(ctx, js, &visible); err != nil {
			return err
		}
		if visible {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrTimeout, selector)
		}
		if err := s.Sleep(ctx, 250*time.Millisecond); err != nil {
			return err
		}
	}
}

// ClickBody clicks an empty corner of the page, which is how stray widget
// panels get dismissed.
func (s *Session) ClickBody(ctx context.Context) error {
	return s.Evaluate(ctx, `document.body.click()`, nil)
}
