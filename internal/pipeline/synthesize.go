package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/model"
)

// subLocationPatterns name the notable features worth their own record.
// The template formats the captured group.
var subLocationPatterns = []struct {
	pattern  *regexp.Regexp
	template string
}{
	{regexp.MustCompile(`(?i)Temple\s+of\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`), "Temple of %s"},
	{regexp.MustCompile(`(?i)Tomb\s+of\s+([A-Z][a-z]+(?:\s+[IVX]+)?)`), "Tomb of %s"},
	{regexp.MustCompile(`(?i)(Great\s+(?:Temple|Pyramid|Sphinx))`), "%s"},
	{regexp.MustCompile(`(?i)(Hypostyle\s+Hall)`), "%s"},
	{regexp.MustCompile(`(?i)(Sacred\s+Lake)`), "%s"},
}

// Synthesizer folds the accumulated stage outputs into a Site record.
type Synthesizer struct {
	maxSubLocations int
	validate        *validator.Validate
	logger          *zap.Logger
}

// NewSynthesizer builds a Synthesizer.
func NewSynthesizer(maxSubLocations int, logger *zap.Logger) *Synthesizer {
	if maxSubLocations <= 0 {
		maxSubLocations = 5
	}
	return &Synthesizer{
		maxSubLocations: maxSubLocations,
		validate:        validator.New(),
		logger:          logger,
	}
}

// SiteID derives the stable site identity from the source URL. The same
// URL yields the same ID on every run.
func SiteID(sourceURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL)).String()
}

// Build assembles the final Site from a completed context. The
// encyclopedia's historical period wins over the keyword-derived era;
// validation problems are logged, never fatal.
func (s *Synthesizer) Build(c *SiteContext) model.Site {
	siteID := SiteID(c.Entry.URL)
	name := c.Name()

	era := c.Page.Era
	if c.Finding.HistoricalPeriod != "" {
		era = c.Finding.HistoricalPeriod
	}

	arabicName := c.Page.ArabicName
	if arabicName == "" {
		arabicName = c.Finding.ArabicTitle
	}

	site := model.Site{
		ID:          siteID,
		Name:        name,
		ArabicName:  arabicName,
		Era:         era,
		TourismType: c.Page.TourismType,
		PlaceType:   c.Page.PlaceType,
		Governorate: c.Resolution.Governorate,
		Latitude:    c.Resolution.Lat,
		Longitude:   c.Resolution.Lon,

		ShortDescription: clamp(c.Entry.Description, 200),
		FullDescription:  c.Page.FullDescription,
		ImageNames:       c.Page.Images,

		EstimatedDuration: c.Practical.EstimatedDuration,
		BestTimeToVisit:   c.Practical.BestTimeToVisit,
		OpeningHours:      c.Practical.OpeningHours,
		OfficialWebsite:   c.Practical.OfficialWebsite,

		SubLocations:  s.subLocations(siteID, name, c.Page.FullDescription),
		Tips:          ownTips(siteID, c.Tips),
		ArabicPhrases: ownPhrases(siteID, c.Phrases),

		UniqueFacts:           c.Finding.UniqueFacts,
		KeyFigures:            c.Finding.KeyFigures,
		ArchitecturalFeatures: c.Finding.ArchitecturalFeatures,
		WikipediaURL:          c.Finding.URL,
	}

	// Validation is advisory: a bad optional field is reported but the
	// record still ships.
	if err := s.validate.Struct(site); err != nil {
		s.logger.Warn("site failed validation",
			zap.String("site", name),
			zap.Error(err),
		)
	}

	return site
}

// subLocations mines the description for named features, falling back
// to a single whole-site entry so every site has at least one.
func (s *Synthesizer) subLocations(siteID, siteName, description string) []model.SubLocation {
	var subs []model.SubLocation
	found := make(map[string]struct{})

	for _, sp := range subLocationPatterns {
		for _, m := range sp.pattern.FindAllStringSubmatch(description, -1) {
			if len(subs) >= s.maxSubLocations {
				break
			}
			name := fmt.Sprintf(sp.template, titleWords(m[1]))
			key := strings.ToLower(name)
			if _, dup := found[key]; dup {
				continue
			}
			found[key] = struct{}{}
			subs = append(subs, model.SubLocation{
				ID:               subLocationID(siteID, len(subs)+1),
				SiteID:           siteID,
				Name:             name,
				ShortDescription: "Notable feature of " + siteName,
			})
		}
	}

	if len(subs) == 0 {
		short := clamp(description, 200)
		if short == "" {
			short = "Archaeological site: " + siteName
		}
		subs = append(subs, model.SubLocation{
			ID:               subLocationID(siteID, 1),
			SiteID:           siteID,
			Name:             siteName,
			ShortDescription: short,
			FullDescription:  description,
		})
	}
	return subs
}

func subLocationID(siteID string, n int) string {
	return fmt.Sprintf("%s_sub_%02d", siteID, n)
}

func ownTips(siteID string, in []model.Tip) []model.Tip {
	out := make([]model.Tip, len(in))
	for i, t := range in {
		t.SiteID = siteID
		out[i] = t
	}
	return out
}

func ownPhrases(siteID string, in []model.ArabicPhrase) []model.ArabicPhrase {
	out := make([]model.ArabicPhrase, len(in))
	for i, p := range in {
		p.SiteID = siteID
		out[i] = p
	}
	return out
}

func clamp(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func titleWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
