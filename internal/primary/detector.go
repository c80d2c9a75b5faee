package primary

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RenderDetector decides whether a probed body needs a browser render.
// The catalog is a JavaScript application; a tiny document, SPA shell
// markers, or missing content selectors all promote to headless.
type RenderDetector struct {
	minHTMLBytes int
	selectors    []string
	keywords     [][]byte
}

// DefaultDetector matches the catalog's Angular shell.
func DefaultDetector() *RenderDetector {
	return NewRenderDetector(2048,
		[]string{"h1", "p"},
		[]string{"<app-root", "ng-version", "window.__INITIAL_STATE__"},
	)
}

// NewRenderDetector constructs a detector with explicit thresholds.
func NewRenderDetector(minBytes int, selectors, keywords []string) *RenderDetector {
	lowered := make([][]byte, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lowered = append(lowered, bytes.ToLower([]byte(kw)))
	}
	return &RenderDetector{
		minHTMLBytes: minBytes,
		selectors:    selectors,
		keywords:     lowered,
	}
}

// NeedsRender inspects the body for signals that the static fetch was
// not enough.
func (d *RenderDetector) NeedsRender(body []byte) bool {
	switch {
	case d.minHTMLBytes > 0 && len(body) < d.minHTMLBytes:
		return true
	case d.containsKeywords(body):
		return true
	default:
		return d.missingSelectors(body)
	}
}

func (d *RenderDetector) containsKeywords(body []byte) bool {
	if len(body) == 0 || len(d.keywords) == 0 {
		return false
	}
	lowerBody := bytes.ToLower(body)
	for _, kw := range d.keywords {
		if bytes.Contains(lowerBody, kw) {
			return true
		}
	}
	return false
}

func (d *RenderDetector) missingSelectors(body []byte) bool {
	if len(d.selectors) == 0 || len(body) == 0 {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	for _, sel := range d.selectors {
		if doc.Find(sel).Length() == 0 {
			return true
		}
	}
	return false
}
