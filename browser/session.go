// Package browser abstracts the headless-browser capabilities the archive
// client needs, so listing logic can be tested without a real Chrome.
package browser

import "context"

// Session is one browser page. Implementations must be safe to Close more
// than once; Close tears down the underlying browser process.
type Session interface {
	// Navigate loads a URL and returns once the document is ready.
	Navigate(ctx context.Context, url string) error
	// WaitAttached blocks until the selector matches a node in the DOM,
	// whether or not it is rendered.
	WaitAttached(ctx context.Context, selector string) error
	// WaitVisible blocks until the selector matches a visible node.
	WaitVisible(ctx context.Context, selector string) error
	// Attributes returns the attribute maps of every node matching the
	// selector, in document order.
	Attributes(ctx context.Context, selector string) ([]map[string]string, error)
	// Texts returns the rendered text of every node matching the selector,
	// in document order.
	Texts(ctx context.Context, selector string) ([]string, error)
	// ClickNth clicks the nth node (0-based, document order) matching the
	// selector.
	ClickNth(ctx context.Context, selector string, n int) error
	// InnerHTML returns the inner markup of the first node matching the
	// selector.
	InnerHTML(ctx context.Context, selector string) (string, error)
	Close() error
}
