// Package export flattens researched sites into the five-array JSON
// document the mobile client consumes. The field names and nesting are
// a compatibility surface; changing them breaks the client.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/model"
)

// SiteRow is the per-site export shape: the full description and all
// child records live in the sibling arrays, not here.
type SiteRow struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ArabicName       string   `json:"arabicName"`
	Era              string   `json:"era"`
	TourismType      string   `json:"tourismType"`
	PlaceType        string   `json:"placeType"`
	Governorate      string   `json:"governorate"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	ShortDescription string   `json:"shortDescription"`
	ImageNames       []string `json:"imageNames"`

	EstimatedDuration string `json:"estimatedDuration"`
	BestTimeToVisit   string `json:"bestTimeToVisit"`
	OpeningHours      string `json:"openingHours"`
	OfficialWebsite   string `json:"officialWebsite"`

	UniqueFacts           []string `json:"uniqueFacts"`
	KeyFigures            []string `json:"keyFigures"`
	ArchitecturalFeatures []string `json:"architecturalFeatures"`
	WikipediaURL          string   `json:"wikipediaUrl"`
}

// SubLocationRow is the per-sub-location export shape; its long-form
// text moves to the card.
type SubLocationRow struct {
	ID               string `json:"id"`
	SiteID           string `json:"siteId"`
	Name             string `json:"name"`
	ArabicName       string `json:"arabicName"`
	ShortDescription string `json:"shortDescription"`
	ImageName        string `json:"imageName"`
}

// Document is the exported top-level shape.
type Document struct {
	Sites         []SiteRow            `json:"sites"`
	SubLocations  []SubLocationRow     `json:"subLocations"`
	Cards         []model.Card         `json:"cards"`
	Tips          []model.Tip          `json:"tips"`
	ArabicPhrases []model.ArabicPhrase `json:"arabicPhrases"`
}

// BuildDocument flattens sites into the five arrays. Every array is
// non-nil so the client always sees [], never null.
func BuildDocument(sites []model.Site) Document {
	doc := Document{
		Sites:         make([]SiteRow, 0, len(sites)),
		SubLocations:  make([]SubLocationRow, 0),
		Cards:         make([]model.Card, 0),
		Tips:          make([]model.Tip, 0),
		ArabicPhrases: make([]model.ArabicPhrase, 0),
	}

	for _, site := range sites {
		doc.Sites = append(doc.Sites, siteRow(site))

		for _, sub := range site.SubLocations {
			doc.SubLocations = append(doc.SubLocations, SubLocationRow{
				ID:               sub.ID,
				SiteID:           sub.SiteID,
				Name:             sub.Name,
				ArabicName:       sub.ArabicName,
				ShortDescription: sub.ShortDescription,
				ImageName:        sub.ImageName,
			})

			// Sub-locations without their own long text carry the site's.
			full := sub.FullDescription
			if full == "" {
				full = site.FullDescription
			}
			doc.Cards = append(doc.Cards, model.Card{
				ID:              sub.ID + "_card_01",
				SubLocationID:   sub.ID,
				FullDescription: full,
			})
		}

		doc.Tips = append(doc.Tips, site.Tips...)
		doc.ArabicPhrases = append(doc.ArabicPhrases, site.ArabicPhrases...)
	}

	return doc
}

func siteRow(site model.Site) SiteRow {
	images := site.ImageNames
	if images == nil {
		images = []string{}
	}
	return SiteRow{
		ID:               site.ID,
		Name:             site.Name,
		ArabicName:       site.ArabicName,
		Era:              site.Era,
		TourismType:      site.TourismType,
		PlaceType:        site.PlaceType,
		Governorate:      site.Governorate,
		Latitude:         site.Latitude,
		Longitude:        site.Longitude,
		ShortDescription: site.ShortDescription,
		ImageNames:       images,

		EstimatedDuration: site.EstimatedDuration,
		BestTimeToVisit:   site.BestTimeToVisit,
		OpeningHours:      site.OpeningHours,
		OfficialWebsite:   site.OfficialWebsite,

		UniqueFacts:           orEmpty(site.UniqueFacts),
		KeyFigures:            orEmpty(site.KeyFigures),
		ArchitecturalFeatures: orEmpty(site.ArchitecturalFeatures),
		WikipediaURL:          site.WikipediaURL,
	}
}

// WriteFile marshals the document and writes it atomically: a temp file
// in the target directory, then rename, so a crash never leaves a
// half-written export.
func WriteFile(path string, doc Document, logger *zap.Logger) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalize export file: %w", err)
	}

	logger.Info("export complete",
		zap.String("path", path),
		zap.Int("sites", len(doc.Sites)),
		zap.Int("sub_locations", len(doc.SubLocations)),
		zap.Int("cards", len(doc.Cards)),
		zap.Int("tips", len(doc.Tips)),
		zap.Int("arabic_phrases", len(doc.ArabicPhrases)),
	)
	return nil
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
