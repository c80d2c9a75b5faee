// Package model defines the site records assembled by the research
// pipeline and exported for the mobile client. The JSON field names are
// a compatibility surface: the client parses this exact shape.
package model

// Site is the fully researched record for one heritage site.
type Site struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	ArabicName  string `json:"arabicName"`
	Era         string `json:"era"`
	TourismType string `json:"tourismType"`
	PlaceType   string `json:"placeType"`
	// Governorate is always one of the 27 canonical governorate names or
	// geocode.Unknown, never a raw provider string.
	Governorate string   `json:"governorate" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=21,lte=32.5"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=24,lte=37"`

	ShortDescription string   `json:"shortDescription"`
	FullDescription  string   `json:"fullDescription"`
	ImageNames       []string `json:"imageNames"`

	EstimatedDuration string `json:"estimatedDuration"`
	BestTimeToVisit   string `json:"bestTimeToVisit"`
	OpeningHours      string `json:"openingHours"`
	OfficialWebsite   string `json:"officialWebsite" validate:"omitempty,url"`

	SubLocations  []SubLocation  `json:"subLocations"`
	Tips          []Tip          `json:"tips"`
	ArabicPhrases []ArabicPhrase `json:"arabicPhrases"`

	UniqueFacts           []string `json:"uniqueFacts"`
	KeyFigures            []string `json:"keyFigures"`
	ArchitecturalFeatures []string `json:"architecturalFeatures"`
	WikipediaURL          string   `json:"wikipediaUrl" validate:"omitempty,url"`
}

// SubLocation is a notable feature within a site, owned by its parent.
type SubLocation struct {
	ID               string `json:"id"`
	SiteID           string `json:"siteId"`
	Name             string `json:"name"`
	ArabicName       string `json:"arabicName"`
	ShortDescription string `json:"shortDescription"`
	ImageName        string `json:"imageName"`
	FullDescription  string `json:"fullDescription"`
}

// Card carries the long-form description for one sub-location.
type Card struct {
	ID              string `json:"id"`
	SubLocationID   string `json:"subLocationId"`
	FullDescription string `json:"fullDescription"`
}

// Tip is a practical visitor tip. Text keeps the legacy "tip" JSON name.
type Tip struct {
	SiteID   string `json:"siteId"`
	Text     string `json:"tip"`
	Category string `json:"category,omitempty"`
}

// ArabicPhrase is one vocabulary entry relevant to a specific site.
type ArabicPhrase struct {
	SiteID        string `json:"siteId"`
	English       string `json:"english"`
	Arabic        string `json:"arabic"`
	Pronunciation string `json:"pronunciation"`
}

// ListingEntry is what the catalog listing page exposes per site before
// any detail research has run.
type ListingEntry struct {
	URL         string
	Name        string
	Location    string
	Description string
	Image       string
	PageType    string
}
