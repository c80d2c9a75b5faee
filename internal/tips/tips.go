// Package tips synthesizes practical visitor tips from rule tables
// keyed by place type, tourism type, and governorate, merged with
// whatever concrete practical info earlier stages produced.
package tips

import (
	"strings"

	"github.com/unlockegypt/heritage-researcher/internal/cache"
	"github.com/unlockegypt/heritage-researcher/internal/model"
)

// Practical carries the concrete fields already known for a site.
type Practical struct {
	EstimatedDuration string
	BestTimeToVisit   string
	OpeningHours      string
	OfficialWebsite   string
}

// Tip categories.
const (
	CategoryGeneral   = "general"
	CategorySite      = "site"
	CategoryLocation  = "location"
	CategoryCulture   = "culture"
	CategoryPractical = "practical"
)

var genericTips = []string{
	"Bring water and wear comfortable walking shoes.",
	"Photography rules vary, check at the entrance.",
}

var placeTypeTips = map[string][]string{
	"pyramid": {
		"Visiting the interior requires a separate ticket and is not recommended for those with claustrophobia.",
		"Arrive early to avoid crowds and heat.",
	},
	"tomb": {
		"Flash photography is prohibited to protect the ancient paintings.",
		"Only a limited number of tombs are open at any time, check which ones before visiting.",
	},
	"temple": {
		"Early morning or late afternoon provides the best lighting for photography.",
		"Consider hiring a licensed guide to understand the hieroglyphics and history.",
	},
	"museum": {
		"Audio guides are often available at the entrance.",
		"Large bags may need to be checked at the entrance.",
	},
	"mosque": {
		"Dress modestly, shoulders and knees should be covered.",
		"Remove shoes before entering prayer areas.",
		"Non-Muslims may have restricted access during prayer times.",
	},
	"church": {
		"Dress modestly when visiting religious sites.",
		"Photography may be restricted in certain areas.",
	},
	"monastery": {
		"Dress modestly when visiting religious sites.",
		"Photography may be restricted in certain areas.",
	},
}

var governorateTips = map[string][]string{
	"Luxor": {
		"The sun can be extremely intense, bring sunscreen and a hat.",
	},
	"Aswan": {
		"The sun can be extremely intense, bring sunscreen and a hat.",
	},
	"Alexandria": {
		"The Mediterranean breeze can make it cooler than Cairo, bring a light jacket.",
	},
	"Cairo": {
		"Be prepared for persistent vendors and unofficial guides, politely decline if not interested.",
	},
	"Giza": {
		"Be prepared for persistent vendors and unofficial guides, politely decline if not interested.",
	},
}

var tourismTypeTips = map[string][]string{
	"pharaonic": {
		"Download a hieroglyphics guide app to understand the ancient inscriptions.",
	},
	"islamic": {
		"Visit outside of Friday prayer times for a calmer experience.",
	},
}

// MaxTips caps the synthesized list.
const MaxTips = 8

// Synthesizer applies the rule tables.
type Synthesizer struct {
	maxTips int
}

// New builds a Synthesizer. maxTips <= 0 means the default cap.
func New(maxTips int) *Synthesizer {
	if maxTips <= 0 {
		maxTips = MaxTips
	}
	return &Synthesizer{maxTips: maxTips}
}

// Synthesize returns an ordered tip list: generic first, then place
// type, governorate, and tourism type rules, then practical fields.
// Duplicates by normalized text keep the first occurrence.
func (s *Synthesizer) Synthesize(placeType, tourismType, governorate string, practical Practical) []model.Tip {
	var out []model.Tip
	seen := make(map[string]struct{})

	add := func(text, category string) {
		if len(out) >= s.maxTips || text == "" {
			return
		}
		key := cache.NormalizeKey(text)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, model.Tip{Text: text, Category: category})
	}

	for _, t := range genericTips {
		add(t, CategoryGeneral)
	}
	for _, t := range placeTypeTips[strings.ToLower(placeType)] {
		add(t, CategorySite)
	}
	for _, t := range governorateTips[governorate] {
		add(t, CategoryLocation)
	}
	for _, t := range tourismTypeTips[strings.ToLower(tourismType)] {
		add(t, CategoryCulture)
	}

	if practical.EstimatedDuration != "" {
		add("Recommended visit duration: "+practical.EstimatedDuration, CategoryPractical)
	}
	if practical.BestTimeToVisit != "" {
		add("Best time to visit: "+practical.BestTimeToVisit, CategoryPractical)
	}
	if practical.OpeningHours != "" {
		add("Opening hours: "+practical.OpeningHours, CategoryPractical)
	}
	if practical.OfficialWebsite != "" {
		add("Official website: "+practical.OfficialWebsite, CategoryPractical)
	}

	return out
}

// knownOfficialSites maps well-known attractions to their own sites.
// Everything else is covered by the ministry catalog and gets none.
var knownOfficialSites = []struct{ marker, url string }{
	{"grand egyptian museum", "https://grandegyptianmuseum.org"},
	{"egyptian museum", "https://egymonuments.gov.eg/en/museums/the-egyptian-museum"},
	{"bibliotheca", "https://www.bibalex.org"},
	{"library of alexandria", "https://www.bibalex.org"},
}

// OfficialWebsite returns the official site URL for well-known
// attractions, empty otherwise.
func OfficialWebsite(siteName string) string {
	nameLower := strings.ToLower(siteName)
	for _, known := range knownOfficialSites {
		if strings.Contains(nameLower, known.marker) {
			return known.url
		}
	}
	return ""
}

// largeComplexes get the longest duration estimate regardless of type.
var largeComplexes = []string{"karnak", "giza plateau", "valley of the kings", "saqqara"}

var durationByType = map[string]string{
	"temple":   "1-2 hours",
	"museum":   "2-3 hours",
	"pyramid":  "1-2 hours",
	"tomb":     "30 minutes - 1 hour",
	"mosque":   "30 minutes - 1 hour",
	"church":   "30 minutes - 1 hour",
	"fortress": "1-2 hours",
}

// EstimateDuration guesses a visit duration from the site name and
// place type.
func EstimateDuration(siteName, placeType string) string {
	nameLower := strings.ToLower(siteName)
	for _, c := range largeComplexes {
		if strings.Contains(nameLower, c) {
			return "3-4 hours"
		}
	}
	if d, ok := durationByType[strings.ToLower(placeType)]; ok {
		return d
	}
	return "1-2 hours"
}

// BestTime recommends a visiting window from the place type and
// governorate.
func BestTime(placeType, governorate string) string {
	switch strings.ToLower(placeType) {
	case "pyramid", "temple", "tomb", "ruins":
		return "Early morning (8-10 AM) or late afternoon (3-5 PM) to avoid heat"
	case "museum":
		return "Weekday mornings for fewer crowds"
	case "mosque":
		return "Mid-morning or mid-afternoon, outside prayer times"
	}
	if governorate == "Luxor" || governorate == "Aswan" {
		return "Early morning or late afternoon; winter months (Oct-Mar) are cooler"
	}
	return "Early morning for fewer crowds"
}
