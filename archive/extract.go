package archive

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtaudio/oralargs/model"
)

// Each listing row carries date, case number, description and two link cells;
// anything narrower is decoration or a header fragment.
const minListingColumns = 5

// The video cell's anchor opens the media player through an inline handler:
// onclick="window.open('//...','player',...)". The player URL is the first
// single-quoted token.
var windowOpenPattern = regexp.MustCompile(`window\.open\('([^']+)'`)

// ExtractCaseLinks parses a year panel's markup into case listings, in
// document order. Rows missing columns, an anchor, or a recognizable player
// URL are dropped; a degraded partial listing beats aborting the year. The
// second return value counts the dropped rows.
func ExtractCaseLinks(html string) ([]model.CaseListing, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0, err
	}

	var listings []model.CaseListing
	skipped := 0
	doc.Find("tr.listingRow").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minListingColumns {
			skipped++
			return
		}
		caseName := strings.TrimSpace(cells.Eq(0).Text())
		playerURL, ok := playerURLFromCell(cells.Eq(4))
		if !ok {
			skipped++
			return
		}
		listings = append(listings, model.CaseListing{
			CaseName:       caseName,
			MediaPlayerURL: playerURL,
		})
	})
	return listings, skipped, nil
}

func playerURLFromCell(cell *goquery.Selection) (string, bool) {
	onclick, exists := cell.Find("a").First().Attr("onclick")
	if !exists {
		return "", false
	}
	match := windowOpenPattern.FindStringSubmatch(onclick)
	if match == nil {
		return "", false
	}
	// The handler embeds an entity-encoded, scheme-relative URL.
	url := strings.ReplaceAll(match[1], "&amp;", "&")
	return absoluteURL(url), true
}
