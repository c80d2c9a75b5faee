// Package primary researches the catalog website itself: a cheap Colly
// probe first, promoted to a headless Chrome render when the page turns
// out to be a JavaScript shell, then goquery extraction.
package primary

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// BrowserConfig controls the shared headless session.
type BrowserConfig struct {
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	NavTimeout   time.Duration
	ScrollWait   time.Duration
	ShowMoreWait time.Duration
}

// Browser owns the chromedp exec allocator for the whole run. It is
// acquired once and must be released with Close on every exit path.
type Browser struct {
	cfg         BrowserConfig
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewBrowser starts the allocator.
func NewBrowser(cfg BrowserConfig) *Browser {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 25 * time.Second
	}
	if cfg.ScrollWait <= 0 {
		cfg.ScrollWait = 1500 * time.Millisecond
	}
	if cfg.ShowMoreWait <= 0 {
		cfg.ShowMoreWait = 2 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Close releases the browser allocator.
func (b *Browser) Close() {
	b.allocCancel()
}

// Render navigates to a detail page and returns the settled DOM.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	taskCtx, taskCancel := chromedp.NewContext(b.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, b.cfg.NavTimeout)
	defer cancel()

	var html string
	actions := []chromedp.Action{
		b.sessionSetup(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return html, nil
}

// showMoreScript clicks the visible "Show More" control if present,
// reporting whether a click happened.
const showMoreScript = `(() => {
	const buttons = document.querySelectorAll('[class*="showMore"], .showMoreBtn');
	for (const btn of buttons) {
		if (btn.offsetParent !== null && btn.textContent.includes('Show More')) {
			btn.scrollIntoView({block: 'center'});
			btn.click();
			return true;
		}
	}
	return false;
})()`

const countItemsScript = `document.querySelectorAll('a.listItem').length`

// RenderListing loads a listing page and keeps scrolling and clicking
// "Show More" until the item count stops growing, hits maxItems, or the
// iteration cap runs out, then returns the DOM.
func (b *Browser) RenderListing(ctx context.Context, url string, maxItems int) (string, error) {
	taskCtx, taskCancel := chromedp.NewContext(b.allocator)
	defer taskCancel()

	// Listing expansion is slow; give it several navigation budgets.
	taskCtx, cancel := context.WithTimeout(taskCtx, 4*b.cfg.NavTimeout)
	defer cancel()

	if err := chromedp.Run(taskCtx,
		b.sessionSetup(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.cfg.ScrollWait),
	); err != nil {
		return "", fmt.Errorf("load listing %s: %w", url, err)
	}

	maxIterations := 20
	if maxItems > 0 {
		maxIterations = 5
	}

	lastCount := 0
	for i := 0; i < maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var count int
		var clicked bool
		if err := chromedp.Run(taskCtx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(b.cfg.ScrollWait),
			chromedp.Evaluate(showMoreScript, &clicked),
			chromedp.Evaluate(countItemsScript, &count),
		); err != nil {
			return "", fmt.Errorf("expand listing %s: %w", url, err)
		}
		if clicked {
			if err := chromedp.Run(taskCtx, chromedp.Sleep(b.cfg.ShowMoreWait)); err != nil {
				return "", fmt.Errorf("expand listing %s: %w", url, err)
			}
		}

		if maxItems > 0 && count >= maxItems {
			break
		}
		if !clicked && count == lastCount {
			break
		}
		lastCount = count
	}

	var html string
	if err := chromedp.Run(taskCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("capture listing %s: %w", url, err)
	}
	return html, nil
}

func (b *Browser) sessionSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if b.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(b.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if b.cfg.WindowWidth > 0 && b.cfg.WindowHeight > 0 {
			if err := emulation.SetDeviceMetricsOverride(
				int64(b.cfg.WindowWidth), int64(b.cfg.WindowHeight), 1, false,
			).Do(ctx); err != nil {
				return fmt.Errorf("set window size: %w", err)
			}
		}
		return nil
	})
}
