package primary

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageData is everything extracted from one rendered detail page.
type PageData struct {
	Name            string
	ArabicName      string
	FullDescription string
	Era             string
	TourismType     string
	PlaceType       string
	Images          []string
	Location        string
}

// minParagraphLen drops navigation crumbs and link stubs.
const minParagraphLen = 40

// boilerplateMarkers identify footer/navigation text that leaks into
// the paragraph stream.
var boilerplateMarkers = []string{
	"copyright",
	"developed by",
	"all rights reserved",
	"read more",
	"click here",
}

// Parser extracts site data from catalog HTML with goquery.
type Parser struct {
	maxImages int
}

// NewParser builds a Parser. maxImages <= 0 means 5.
func NewParser(maxImages int) *Parser {
	if maxImages <= 0 {
		maxImages = 5
	}
	return &Parser{maxImages: maxImages}
}

// ParsePage extracts title, description, gallery images, and the
// keyword-derived classification from a detail page.
func (p *Parser) ParsePage(html, fallbackName string) (PageData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PageData{}, err
	}

	data := PageData{Name: fallbackName}

	for _, sel := range []string{".title h1", ".pageTitle", "h1"} {
		if title := strings.TrimSpace(doc.Find(sel).First().Text()); title != "" {
			data.Name = title
			break
		}
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) < minParagraphLen || isBoilerplate(text) {
			return
		}
		paragraphs = append(paragraphs, text)
	})
	data.FullDescription = strings.Join(paragraphs, "\n\n")

	data.Images = p.galleryImages(doc)

	fullText := strings.ToLower(data.FullDescription)
	data.Era = classifyEra(fullText)
	data.TourismType = classifyTourismType(data.Era, fullText, data.Name)
	data.PlaceType = classifyPlaceType(data.Name, fullText)

	return data, nil
}

// galleryImages collects gallery/slider/article image sources, skipping
// logos, capped and deduplicated in document order.
func (p *Parser) galleryImages(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]struct{})
	doc.Find(".gallery img, .slider img, article img").Each(func(_ int, s *goquery.Selection) {
		if len(images) >= p.maxImages {
			return
		}
		src, ok := s.Attr("src")
		if !ok || src == "" || strings.Contains(strings.ToLower(src), "logo") {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		images = append(images, src)
	})
	return images
}

// ArabicTitle pulls the h1 from the Arabic twin page, accepting it only
// when it actually carries Arabic script.
func ArabicTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if hasArabicScript(title) {
		return title
	}
	return ""
}

func hasArabicScript(s string) bool {
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range boilerplateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func classifyEra(description string) string {
	switch {
	case strings.Contains(description, "old kingdom"):
		return "Old Kingdom"
	case strings.Contains(description, "middle kingdom"):
		return "Middle Kingdom"
	case strings.Contains(description, "new kingdom"),
		strings.Contains(description, "18th dynasty"),
		strings.Contains(description, "19th dynasty"):
		return "New Kingdom"
	case strings.Contains(description, "ptolemaic"):
		return "Ptolemaic"
	case strings.Contains(description, "roman"):
		return "Roman"
	case strings.Contains(description, "islamic"),
		strings.Contains(description, "mamluk"),
		strings.Contains(description, "fatimid"):
		return "Islamic"
	case strings.Contains(description, "coptic"):
		return "Roman"
	}
	return ""
}

func classifyTourismType(era, description, name string) string {
	switch era {
	case "Old Kingdom", "Middle Kingdom", "New Kingdom", "Late Period":
		return "Pharaonic"
	case "Roman", "Ptolemaic":
		return "Greco-Roman"
	case "Islamic":
		return "Islamic"
	}

	combined := strings.ToLower(description + " " + name)
	switch {
	case containsAny(combined, "mosque", "islamic", "madrasa"):
		return "Islamic"
	case containsAny(combined, "coptic", "church", "monastery"):
		return "Coptic"
	case containsAny(combined, "roman", "greek", "ptolem"):
		return "Greco-Roman"
	}
	return "Pharaonic"
}

// placeTypeKeywords is ordered: the first matching keyword wins.
var placeTypeKeywords = []struct{ keyword, placeType string }{
	{"pyramid", "Pyramid"},
	{"temple", "Temple"},
	{"tomb", "Tomb"},
	{"cemetery", "Tomb"},
	{"museum", "Museum"},
	{"mosque", "Mosque"},
	{"church", "Church"},
	{"monastery", "Church"},
	{"fortress", "Fortress"},
	{"citadel", "Fortress"},
	{"theater", "Monument"},
	{"amphitheatre", "Monument"},
}

func classifyPlaceType(name, description string) string {
	combined := strings.ToLower(name + " " + description)
	for _, kw := range placeTypeKeywords {
		if strings.Contains(combined, kw.keyword) {
			return kw.placeType
		}
	}
	return "Ruins"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
