package tips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeCombinesRuleTables(t *testing.T) {
	t.Parallel()

	s := New(0)
	out := s.Synthesize("Temple", "Pharaonic", "Luxor", Practical{})
	require.NotEmpty(t, out)
	assert.LessOrEqual(t, len(out), MaxTips)

	var texts []string
	categories := make(map[string]bool)
	for _, tip := range out {
		texts = append(texts, tip.Text)
		categories[tip.Category] = true
	}

	assert.Contains(t, texts, "Bring water and wear comfortable walking shoes.")
	assert.Contains(t, texts, "Early morning or late afternoon provides the best lighting for photography.")
	assert.Contains(t, texts, "The sun can be extremely intense, bring sunscreen and a hat.")
	assert.True(t, categories[CategoryGeneral])
	assert.True(t, categories[CategorySite])
	assert.True(t, categories[CategoryLocation])
}

func TestSynthesizeAppendsPracticalInfo(t *testing.T) {
	t.Parallel()

	s := New(0)
	out := s.Synthesize("Museum", "", "", Practical{
		EstimatedDuration: "2-3 hours",
		OpeningHours:      "9 AM - 5 PM",
	})

	var texts []string
	for _, tip := range out {
		texts = append(texts, tip.Text)
	}
	assert.Contains(t, texts, "Recommended visit duration: 2-3 hours")
	assert.Contains(t, texts, "Opening hours: 9 AM - 5 PM")
}

func TestSynthesizeDeduplicatesByNormalizedText(t *testing.T) {
	t.Parallel()

	s := New(0)
	out := s.Synthesize("Temple", "Pharaonic", "Giza", Practical{})

	seen := make(map[string]bool)
	for _, tip := range out {
		key := tip.Text
		assert.False(t, seen[key], "duplicate tip %q", key)
		seen[key] = true
	}
}

func TestSynthesizeCapsOutput(t *testing.T) {
	t.Parallel()

	s := New(3)
	out := s.Synthesize("Mosque", "Islamic", "Cairo", Practical{
		EstimatedDuration: "1 hour",
		BestTimeToVisit:   "morning",
		OpeningHours:      "always",
		OfficialWebsite:   "https://example.org",
	})
	assert.Len(t, out, 3)
}

func TestEstimateDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		siteName  string
		placeType string
		want      string
	}{
		{name: "large complex by name", siteName: "Karnak Temple Complex", placeType: "Temple", want: "3-4 hours"},
		{name: "museum", siteName: "Coptic Museum", placeType: "Museum", want: "2-3 hours"},
		{name: "tomb", siteName: "TT52", placeType: "Tomb", want: "30 minutes - 1 hour"},
		{name: "unclassified default", siteName: "Unknown Place", placeType: "", want: "1-2 hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateDuration(tt.siteName, tt.placeType))
		})
	}
}

func TestBestTime(t *testing.T) {
	t.Parallel()

	assert.Contains(t, BestTime("Temple", "Qena"), "Early morning")
	assert.Contains(t, BestTime("Museum", "Cairo"), "Weekday mornings")
	assert.Contains(t, BestTime("Mosque", "Cairo"), "prayer times")
	assert.Contains(t, BestTime("", "Aswan"), "winter months")
	assert.Equal(t, "Early morning for fewer crowds", BestTime("", "Cairo"))
}

func TestOfficialWebsite(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://grandegyptianmuseum.org", OfficialWebsite("Grand Egyptian Museum"))
	assert.Equal(t, "https://egymonuments.gov.eg/en/museums/the-egyptian-museum", OfficialWebsite("The Egyptian Museum"))
	assert.Equal(t, "https://www.bibalex.org", OfficialWebsite("Bibliotheca Alexandrina"))
	assert.Equal(t, "", OfficialWebsite("Karnak"))
}
