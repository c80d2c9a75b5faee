package primary

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/unlockegypt/heritage-researcher/internal/model"
)

// ParseListing extracts catalog entries from a rendered listing page.
// Entries whose href does not carry the page-type segment are dropped;
// those are cross-links to other sections.
func ParseListing(html, pageType string) ([]model.ListingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	segment := "/" + pageType + "/"
	var entries []model.ListingEntry
	seen := make(map[string]struct{})

	doc.Find("a.listItem").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.Contains(href, segment) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		entry := model.ListingEntry{
			URL:         href,
			Name:        strings.TrimSpace(s.AttrOr("title", "")),
			Location:    strings.TrimSpace(s.Find(".location p").First().Text()),
			Description: strings.TrimSpace(s.Find(".details > p").First().Text()),
			PageType:    pageType,
		}
		if entry.Name == "" {
			entry.Name = strings.TrimSpace(s.Find("h3, .title").First().Text())
		}
		if img, ok := s.Find("img").First().Attr("src"); ok {
			entry.Image = img
		}
		entries = append(entries, entry)
	})

	return entries, nil
}
