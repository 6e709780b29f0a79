package archive

import (
	"context"

	"github.com/courtaudio/oralargs/browser"
	"github.com/courtaudio/oralargs/model"
)

// SessionFactory builds the browser session a listing fetch runs in. The
// session lives for exactly one fetch; FetchYearListing closes it.
type SessionFactory func(ctx context.Context) browser.Session

// Source turns a year into its case listings: one browser-driven fetch of
// the year panel, then a parse of the returned markup.
type Source struct {
	client     *Client
	newSession SessionFactory
}

func NewSource(client *Client, newSession SessionFactory) *Source {
	return &Source{client: client, newSession: newSession}
}

// Listings returns the year's cases in document order plus the count of
// listing rows dropped as malformed.
func (s *Source) Listings(ctx context.Context, year string) ([]model.CaseListing, int, error) {
	html, err := s.client.FetchYearListing(ctx, s.newSession(ctx), year)
	if err != nil {
		return nil, 0, err
	}
	return ExtractCaseLinks(html)
}
