package encyclopedia

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/ratelimit"
	"github.com/unlockegypt/heritage-researcher/internal/research"
)

type fakeWiki struct {
	hits     map[string][]SearchHit
	articles map[string]Article
	searches int
}

func (f *fakeWiki) Search(_ context.Context, query, _ string) ([]SearchHit, error) {
	f.searches++
	for prefix, hits := range f.hits {
		if strings.HasPrefix(query, prefix) {
			return hits, nil
		}
	}
	return nil, nil
}

func (f *fakeWiki) GetArticle(_ context.Context, title, lang string) (Article, error) {
	if a, ok := f.articles[lang+"/"+title]; ok {
		return a, nil
	}
	return Article{}, research.ErrNotFound
}

func newTestResearcher(client Client) *Researcher {
	return NewResearcher(
		client,
		ratelimit.New(ratelimit.Config{}),
		&research.RetryPolicy{MaxAttempts: 1},
		Config{MatchThreshold: 0.65, MinParagraphLength: 40, MaxFacts: 5},
		zap.NewNop(),
	)
}

const karnakText = `The Karnak Temple Complex is the largest religious building ever constructed. ` +
	`It was the main place of worship of Amun and was expanded by Ramesses II and Hatshepsut during the New Kingdom.

The complex includes the Great Hypostyle Hall with its massive columns and a sacred lake used for ritual purification. ` +
	`The site was designated a UNESCO World Heritage site and dates back to 2055 BC.

short.`

func TestResearchHappyPath(t *testing.T) {
	t.Parallel()

	wiki := &fakeWiki{
		hits: map[string][]SearchHit{
			"Karnak": {{Title: "Karnak"}, {Title: "Luxor"}},
		},
		articles: map[string]Article{
			"en/Karnak": {
				Title:     "Karnak",
				Text:      karnakText,
				URL:       "https://en.wikipedia.org/wiki/Karnak",
				LangLinks: map[string]string{"ar": "الكرنك"},
			},
			"ar/الكرنك": {
				Title: "الكرنك",
				Text:  "مجمع معابد الكرنك في الأقصر",
				URL:   "https://ar.wikipedia.org/wiki/الكرنك",
			},
		},
	}
	r := newTestResearcher(wiki)

	finding, err := r.Research(context.Background(), "Karnak", "", "Luxor")
	require.NoError(t, err)

	assert.Equal(t, "Karnak", finding.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Karnak", finding.URL)
	assert.Equal(t, "New Kingdom", finding.HistoricalPeriod)
	assert.NotEmpty(t, finding.UniqueFacts)
	assert.LessOrEqual(t, len(finding.UniqueFacts), 5)
	assert.Contains(t, finding.KeyFigures, "Ramesses II")
	assert.Contains(t, finding.KeyFigures, "Amun")
	assert.Contains(t, finding.ArchitecturalFeatures, "Hypostyle Hall")

	assert.Equal(t, "الكرنك", finding.ArabicTitle)
	assert.Equal(t, "https://ar.wikipedia.org/wiki/الكرنك", finding.ArabicURL)
	assert.NotEmpty(t, finding.ArabicSummary)
}

func TestResearchNoMatchReturnsNotFound(t *testing.T) {
	t.Parallel()

	wiki := &fakeWiki{
		hits: map[string][]SearchHit{
			"Obscure": {{Title: "Completely Different Topic"}},
		},
	}
	r := newTestResearcher(wiki)

	_, err := r.Research(context.Background(), "Obscure Shrine", "", "")
	assert.ErrorIs(t, err, research.ErrNotFound)
}

func TestResearchEmptyNameUsesTransliteration(t *testing.T) {
	t.Parallel()

	wiki := &fakeWiki{}
	r := newTestResearcher(wiki)

	_, err := r.Research(context.Background(), "", "الكرنك", "")
	assert.ErrorIs(t, err, research.ErrNotFound)
	assert.Greater(t, wiki.searches, 0)
}

func TestResearchBlankTargetIsNotFoundWithoutSearch(t *testing.T) {
	t.Parallel()

	wiki := &fakeWiki{}
	r := newTestResearcher(wiki)

	_, err := r.Research(context.Background(), "  ", "", "")
	assert.ErrorIs(t, err, research.ErrNotFound)
	assert.Equal(t, 0, wiki.searches)
}

func TestSearchQueriesSpellingVariants(t *testing.T) {
	t.Parallel()

	queries := searchQueries("Kom el-Dikka", "Alexandria")
	assert.Equal(t, "Kom el-Dikka Egypt", queries[0])
	assert.Contains(t, queries, "Kom el-Dikka")
	assert.Contains(t, queries, "Kom el-Dikka Alexandria")
	assert.Contains(t, queries, "Kom el Dikka")
	assert.Contains(t, queries, "Temple of Kom el-Dikka")

	// No duplicate queries under case folding.
	seen := make(map[string]bool)
	for _, q := range queries {
		key := strings.ToLower(q)
		assert.False(t, seen[key], "duplicate query %q", q)
		seen[key] = true
	}

	queries = searchQueries("Luxor Temple", "")
	assert.NotContains(t, queries, "Temple of Luxor Temple")
}

// The hyphen/space variant chain finds articles the plain name misses.
func TestResearchSpellingVariantFallback(t *testing.T) {
	t.Parallel()

	wiki := &fakeWiki{
		hits: map[string][]SearchHit{
			"Kom el Dikka": {{Title: "Kom El Dikka"}},
		},
		articles: map[string]Article{
			"en/Kom El Dikka": {
				Title: "Kom El Dikka",
				Text:  "Kom El Dikka is a Roman theater complex excavated in Alexandria and dates back to 400 AD.",
				URL:   "https://en.wikipedia.org/wiki/Kom_El_Dikka",
			},
		},
	}
	r := newTestResearcher(wiki)

	finding, err := r.Research(context.Background(), "Kom el-Dikka", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Kom El Dikka", finding.Title)
	assert.Greater(t, wiki.searches, 1)
}

func TestExtractFactsRespectsBounds(t *testing.T) {
	t.Parallel()

	r := newTestResearcher(&fakeWiki{})
	facts := r.extractFacts(karnakText)
	require.NotEmpty(t, facts)
	for _, fact := range facts {
		assert.GreaterOrEqual(t, len(fact), minFactLen)
		assert.LessOrEqual(t, len(fact), maxFactLen)
	}
}

func TestTransliterate(t *testing.T) {
	t.Parallel()

	got := Transliterate("الكرنك")
	assert.NotEmpty(t, got)
	for _, r := range got {
		assert.True(t, r < 0x0600 || r > 0x06FF, "latin output expected")
	}
	assert.Equal(t, "", Transliterate(""))
}
