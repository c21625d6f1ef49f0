// Package browser wraps a chromedp session. The portal's widgets are
// rendered server-side and rewired by JavaScript after every postback, so
// all interaction goes through a real browser rather than plain HTTP.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ErrTimeout is returned when an element never reaches the awaited state
// within the session's wait timeout. Callers classify it as a skip.
var ErrTimeout = errors.New("timed out waiting for element")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	Headless    bool          `json:"headless"`
	WaitTimeout time.Duration `json:"-"`
	// WaitSeconds mirrors WaitTimeout for config files.
	WaitSeconds int    `json:"wait_seconds"`
	UserAgent   string `json:"user_agent"`
}

// Session owns one browser process. It must be closed on every exit path,
// including error paths, or the chrome subprocess is orphaned.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	waitTimeout time.Duration
}

func NewSession(ctx context.Context, opts Options) (*Session, error) {
	wait := opts.WaitTimeout
	if wait == 0 && opts.WaitSeconds > 0 {
		wait = time.Duration(opts.WaitSeconds) * time.Second
	}
	if wait == 0 {
		wait = 15 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		// the portal refuses to render for obvious automation
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(ua),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// start the browser eagerly so a missing chrome binary fails here
	// instead of in the middle of a sweep
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		waitTimeout: wait,
	}, nil
}

func (s *Session) Close() {
	s.cancelCtx()
	s.cancelAlloc()
}

func (s *Session) WaitTimeout() time.Duration {
	return s.waitTimeout
}

// opCtx bounds a single remote operation by the configured wait timeout.
func (s *Session) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	merged, cancel := context.WithTimeout(s.ctx, s.waitTimeout)
	stop := context.AfterFunc(ctx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

// Navigate opens a url and blocks until document.readyState is complete.
func (s *Session) Navigate(ctx context.Context, url string) error {
	opctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := chromedp.Run(opctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	var ready string
	for ready != "complete" {
		if err := s.Evaluate(ctx, "document.readyState", &ready); err != nil {
			return err
		}
		if ready != "complete" {
			select {
			case <-time.After(250 * time.Millisecond):
			case <-opctx.Done():
				return ErrTimeout
			}
		}
	}
	return nil
}

// Evaluate runs a javascript expression and unmarshals the result into out.
// Pass nil when the result is irrelevant.
func (s *Session) Evaluate(ctx context.Context, js string, out any) error {
	opctx, cancel := s.opCtx(ctx)
	defer cancel()

	if out == nil {
		var discard []byte
		out = &discard
	}
	return chromedp.Run(opctx,
		chromedp.Evaluate(js, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithSilent(true)
		}),
	)
}

// OuterHTML snapshots the outer html of the first node matching a css
// selector.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	opctx, cancel := s.opCtx(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(opctx,
		chromedp.OuterHTML(selector, &html, chromedp.ByQuery),
	)
	if err != nil {
		if opctx.Err() != nil {
			return "", ErrTimeout
		}
		return "", err
	}
	return html, nil
}

// Sleep blocks for d, honoring cancellation.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}
