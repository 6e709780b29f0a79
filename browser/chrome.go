package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

const defaultOpTimeout = 30 * time.Second

// Chrome drives a headless Chrome instance over the DevTools protocol.
type Chrome struct {
	browserCtx  context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opTimeout   time.Duration
	closeOnce   sync.Once
}

type ChromeOption func(*Chrome)

// WithOpTimeout bounds each individual browser operation (navigate, wait,
// query). It does not bound the session as a whole.
func WithOpTimeout(d time.Duration) ChromeOption {
	return func(c *Chrome) {
		c.opTimeout = d
	}
}

// NewChrome launches a headless browser tied to ctx; cancelling ctx kills
// the browser process.
func NewChrome(ctx context.Context, opts ...ChromeOption) *Chrome {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Debugf))

	c := &Chrome{
		browserCtx:  browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		opTimeout:   defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	// The chromedp context carries the browser handle; the caller's context
	// only contributes cancellation.
	opCtx, opDone := context.WithTimeout(c.browserCtx, c.opTimeout)
	defer opDone()
	go func() {
		select {
		case <-ctx.Done():
			opDone()
		case <-opCtx.Done():
		}
	}()
	return chromedp.Run(opCtx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (c *Chrome) WaitAttached(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (c *Chrome) WaitVisible(ctx context.Context, selector string) error {
	return c.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (c *Chrome) Attributes(ctx context.Context, selector string) ([]map[string]string, error) {
	var attrs []map[string]string
	if err := c.run(ctx, chromedp.AttributesAll(selector, &attrs, chromedp.ByQueryAll)); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (c *Chrome) Texts(ctx context.Context, selector string) ([]string, error) {
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%s), (el) => el.innerText)`,
		jsString(selector),
	)
	var texts []string
	if err := c.run(ctx, chromedp.Evaluate(expr, &texts)); err != nil {
		return nil, err
	}
	return texts, nil
}

func (c *Chrome) ClickNth(ctx context.Context, selector string, n int) error {
	expr := fmt.Sprintf(
		`(() => { const el = document.querySelectorAll(%s)[%d]; if (!el) { return false; } el.click(); return true; })()`,
		jsString(selector), n,
	)
	var clicked bool
	if err := c.run(ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no element %d matching %q", n, selector)
	}
	return nil
}

func (c *Chrome) InnerHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.InnerHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		// Cancel gives Chrome a chance to exit cleanly before the allocator
		// kills the process.
		if err := chromedp.Cancel(c.browserCtx); err != nil {
			log.Debugf("browser shutdown: %v", err)
		}
		c.cancel()
		c.allocCancel()
	})
	return nil
}

// jsString quotes a Go string for safe embedding in a JS expression.
func jsString(s string) string {
	quoted, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(quoted)
}
