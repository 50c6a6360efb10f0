// Package browser manages a controllable Chrome session via the
// Chrome DevTools Protocol. A Session exclusively owns one browser
// process and must be Closed on every exit path.
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// --- Sentinel errors ---

// ErrLaunch is returned when the browser process fails to start.
var ErrLaunch = fmt.Errorf("browser launch failed")

// ErrNavigate is returned when page navigation fails.
var ErrNavigate = fmt.Errorf("page navigation failed")

// ErrRenderTimeout is returned when the render wait elapses before the
// listing table is populated.
var ErrRenderTimeout = fmt.Errorf("render wait timed out")

// Options configures the Chrome process.
type Options struct {
	Headless      bool
	WindowWidth   int
	WindowHeight  int
	ExecPath      string        // optional explicit Chrome binary
	DisableImages bool          // skip image loading for faster renders
	NavTimeout    time.Duration // per-navigation deadline
}

// Session is a live browser session. Not safe for concurrent use;
// the scrape pipeline is strictly sequential.
type Session struct {
	ctx        context.Context
	cancels    []context.CancelFunc
	navTimeout time.Duration
	closeOnce  sync.Once
}

// Launch starts a Chrome process with the given options and verifies it
// is responsive. The caller must Close the returned session.
func Launch(parent context.Context, o Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(o.WindowWidth, o.WindowHeight),
	)
	if o.DisableImages {
		allocOpts = append(allocOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if o.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(o.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:        browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
		navTimeout: o.NavTimeout,
	}

	// Running an empty task list forces the browser process to start.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	return s, nil
}

// Navigate loads the given URL, bounded by the navigation timeout.
func (s *Session) Navigate(url string) error {
	ctx, cancel := s.deadline(s.navTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigate, url, err)
	}
	return nil
}

// Reload refreshes the current page, bounded by the navigation timeout.
func (s *Session) Reload() error {
	ctx, cancel := s.deadline(s.navTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("%w: reload: %v", ErrNavigate, err)
	}
	return nil
}

// WaitTableReady blocks until the ranking table has rendered real price
// data, or the timeout elapses. The page lazy-loads row content, so we
// scroll a little first and then poll for a "$" in the price column.
func (s *Session) WaitTableReady(timeout time.Duration) error {
	ctx, cancel := s.deadline(timeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Evaluate(`window.scrollTo(0, 600)`, nil),
		chromedp.WaitVisible(`table tbody tr`, chromedp.ByQuery),
		chromedp.Poll(
			`(() => {
				const cell = document.querySelector("table tbody tr td:nth-child(4)");
				return cell !== null && cell.innerText.includes("$");
			})()`,
			nil,
			chromedp.WithPollingInterval(250*time.Millisecond),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	}
	return nil
}

// HTML returns the rendered DOM of the current page.
func (s *Session) HTML() (string, error) {
	ctx, cancel := s.deadline(s.navTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capture page HTML: %w", err)
	}
	return html, nil
}

// Screenshot writes a viewport screenshot to path. Used to capture the
// page state when the render wait times out.
func (s *Session) Screenshot(path string) error {
	ctx, cancel := s.deadline(s.navTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write screenshot %s: %w", path, err)
	}
	return nil
}

// Close terminates the browser process. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		for _, cancel := range s.cancels {
			cancel()
		}
	})
}

// deadline derives a bounded context from the session context.
func (s *Session) deadline(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(s.ctx)
	}
	return context.WithTimeout(s.ctx, d)
}
