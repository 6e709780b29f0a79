// Package archive retrieves and parses the court's archived oral-argument
// video listings. The listing page embeds the actual case tables in a
// third-party viewer iframe, organized as one tab per year; both the iframe
// and the tabs are populated by client-side script after the initial load.
package archive

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/courtaudio/oralargs/browser"
)

const (
	// DefaultListingURL is the court's archived-video page.
	DefaultListingURL = "https://www.azcourts.gov/AZ-Supreme-Court/Live-Archived-Video"

	// The viewer iframe is injected by script after initial load, and other
	// iframes (promos, embedded players) can attach first. The wait has to
	// target the viewer itself or a half-loaded page looks like a structure
	// change.
	viewerFrameSelector = `iframe[src*="granicus.com/ViewPublisher.php"]`

	tabGroupSelector     = "ul.TabbedPanelsTabGroup"
	tabSelector          = "ul.TabbedPanelsTabGroup li.TabbedPanelsTab"
	visiblePanelSelector = "div.TabbedPanelsContentVisible"
)

// viewerFramePattern identifies the embedded viewer among the page's iframes.
var viewerFramePattern = regexp.MustCompile(`granicus\.com/ViewPublisher\.php\?view_id=11`)

var (
	// ErrFrameNotFound means no iframe on the listing page matched the viewer
	// pattern; the site structure has likely changed.
	ErrFrameNotFound = errors.New("viewer frame not found")
	// ErrTabNotFound means no tab label equals the requested year; either the
	// archive has no such year or the label format drifted.
	ErrTabNotFound = errors.New("year tab not found")
)

// Client fetches year listings through a browser session.
type Client struct {
	listingURL string
}

func NewClient(listingURL string) *Client {
	if listingURL == "" {
		listingURL = DefaultListingURL
	}
	return &Client{listingURL: listingURL}
}

// FetchYearListing drives the session to the listing page, follows the
// embedded viewer frame, activates the tab for year, and returns the inner
// markup of the visible content panel. The session is closed on every path.
func (c *Client) FetchYearListing(ctx context.Context, session browser.Session, year string) (string, error) {
	defer session.Close()

	if err := session.Navigate(ctx, c.listingURL); err != nil {
		return "", fmt.Errorf("loading listing page: %w", err)
	}

	frameURL, err := findViewerFrame(ctx, session)
	if err != nil {
		return "", err
	}
	log.WithField("frameURL", frameURL).Debug("found viewer frame")

	// Cross-origin frame content is unreachable from the outer page, so load
	// the viewer directly.
	if err := session.Navigate(ctx, frameURL); err != nil {
		return "", fmt.Errorf("loading viewer frame: %w", err)
	}

	// The tab group is attached by script before it is rendered; waiting for
	// visibility here would race the viewer's own initialization.
	if err := session.WaitAttached(ctx, tabGroupSelector); err != nil {
		return "", fmt.Errorf("waiting for tab group: %w", err)
	}

	if err := clickYearTab(ctx, session, year); err != nil {
		return "", err
	}

	if err := session.WaitVisible(ctx, visiblePanelSelector); err != nil {
		return "", fmt.Errorf("waiting for %s tab content: %w", year, err)
	}

	html, err := session.InnerHTML(ctx, visiblePanelSelector)
	if err != nil {
		return "", fmt.Errorf("reading %s tab content: %w", year, err)
	}
	return html, nil
}

func findViewerFrame(ctx context.Context, session browser.Session) (string, error) {
	if err := session.WaitAttached(ctx, viewerFrameSelector); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFrameNotFound, err)
	}
	frames, err := session.Attributes(ctx, viewerFrameSelector)
	if err != nil {
		return "", fmt.Errorf("querying iframes: %w", err)
	}
	// The selector narrows to ViewPublisher frames; the pattern pins the
	// exact view.
	for _, attrs := range frames {
		src := attrs["src"]
		if viewerFramePattern.MatchString(src) {
			return absoluteURL(src), nil
		}
	}
	return "", ErrFrameNotFound
}

func clickYearTab(ctx context.Context, session browser.Session, year string) error {
	labels, err := session.Texts(ctx, tabSelector)
	if err != nil {
		return fmt.Errorf("querying year tabs: %w", err)
	}
	for i, label := range labels {
		if strings.TrimSpace(label) == year {
			if err := session.ClickNth(ctx, tabSelector, i); err != nil {
				return fmt.Errorf("clicking %s tab: %w", year, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: no tab labeled %q among %d tabs", ErrTabNotFound, year, len(labels))
}

// absoluteURL fixes up scheme-relative links. The viewer frame's src is
// usually "//granicus.com/...".
func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
