package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/encyclopedia"
	"github.com/unlockegypt/heritage-researcher/internal/geocode"
	"github.com/unlockegypt/heritage-researcher/internal/model"
	"github.com/unlockegypt/heritage-researcher/internal/primary"
	"github.com/unlockegypt/heritage-researcher/internal/research"
	"github.com/unlockegypt/heritage-researcher/internal/tips"
)

type fakePrimary struct {
	listings map[string][]model.ListingEntry
	pages    map[string]primary.PageData
	failURLs map[string]bool
}

func (f *fakePrimary) EnumerateSites(_ context.Context, pageType string, _ int) ([]model.ListingEntry, error) {
	entries, ok := f.listings[pageType]
	if !ok {
		return nil, &research.FatalSourceError{URL: pageType, Err: errors.New("listing unreachable")}
	}
	return entries, nil
}

func (f *fakePrimary) ResearchPage(_ context.Context, url string, seed model.ListingEntry) (primary.PageData, error) {
	if f.failURLs[url] {
		return primary.PageData{}, &research.FatalSourceError{URL: url, Err: errors.New("page unreachable")}
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return primary.PageData{Name: seed.Name, FullDescription: "A description for " + seed.Name + "."}, nil
}

type fakeEncyclopedia struct {
	findings map[string]encyclopedia.Finding
	err      error
}

func (f *fakeEncyclopedia) Research(_ context.Context, siteName, _, _ string) (encyclopedia.Finding, error) {
	if f.err != nil {
		return encyclopedia.Finding{}, f.err
	}
	if finding, ok := f.findings[siteName]; ok {
		return finding, nil
	}
	return encyclopedia.Finding{}, research.ErrNotFound
}

type fakeGovernorate struct {
	byName map[string]string
}

func (f *fakeGovernorate) Resolve(_ context.Context, siteName, _ string) geocode.Resolution {
	if gov, ok := f.byName[siteName]; ok {
		return geocode.Resolution{Governorate: gov}
	}
	return geocode.Resolution{Governorate: geocode.Unknown}
}

type fakeTerms struct{}

func (fakeTerms) ExtractTerms(_ context.Context, siteName, _ string) []model.ArabicPhrase {
	return []model.ArabicPhrase{{English: siteName, Arabic: "ar:" + siteName, Pronunciation: "x"}}
}

type fakeTips struct{}

func (fakeTips) Synthesize(_, _, _ string, _ tips.Practical) []model.Tip {
	return []model.Tip{{Text: "Bring water.", Category: "general"}}
}

func newTestPipeline(p *fakePrimary, e *fakeEncyclopedia, g *fakeGovernorate) *Pipeline {
	return NewPipeline(
		p, e, g, fakeTerms{}, fakeTips{},
		NewSynthesizer(5, zap.NewNop()),
		2,
		nil,
		nil,
		zap.NewNop(),
	)
}

func entry(name string) model.ListingEntry {
	return model.ListingEntry{
		URL:      "https://catalog.example/en/attractions/" + name,
		Name:     name,
		PageType: "attractions",
	}
}

func TestResearchSiteHappyPath(t *testing.T) {
	t.Parallel()

	prim := &fakePrimary{pages: map[string]primary.PageData{
		entry("karnak").URL: {
			Name:            "Karnak Temple Complex",
			Era:             "New Kingdom",
			TourismType:     "Pharaonic",
			PlaceType:       "Temple",
			FullDescription: "The Temple of Amun dominates the precinct.",
		},
	}}
	enc := &fakeEncyclopedia{findings: map[string]encyclopedia.Finding{
		"Karnak Temple Complex": {
			Title:            "Karnak",
			HistoricalPeriod: "New Kingdom",
			URL:              "https://en.wikipedia.org/wiki/Karnak",
		},
	}}
	gov := &fakeGovernorate{byName: map[string]string{"Karnak Temple Complex": "Luxor"}}
	pipe := newTestPipeline(prim, enc, gov)

	site, err := pipe.ResearchSite(context.Background(), entry("karnak"))
	require.NoError(t, err)

	assert.Equal(t, "Karnak Temple Complex", site.Name)
	assert.Equal(t, "Luxor", site.Governorate)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Karnak", site.WikipediaURL)
	assert.NotEmpty(t, site.SubLocations)
	assert.NotEmpty(t, site.Tips)
	assert.NotEmpty(t, site.ArabicPhrases)
	assert.NotEmpty(t, site.EstimatedDuration)
}

func TestResearchSitePrimaryFailureAborts(t *testing.T) {
	t.Parallel()

	prim := &fakePrimary{failURLs: map[string]bool{entry("gone").URL: true}}
	pipe := newTestPipeline(prim, &fakeEncyclopedia{}, &fakeGovernorate{})

	_, err := pipe.ResearchSite(context.Background(), entry("gone"))
	var fatal *research.FatalSourceError
	assert.ErrorAs(t, err, &fatal)
}

// A failing encyclopedia stage degrades the record; the governorate and
// later stages still run.
func TestResearchSiteLaterStageFailureDegrades(t *testing.T) {
	t.Parallel()

	prim := &fakePrimary{}
	enc := &fakeEncyclopedia{err: &research.NetworkError{Op: "wiki", Err: errors.New("boom")}}
	gov := &fakeGovernorate{byName: map[string]string{"philae": "Aswan"}}
	pipe := newTestPipeline(prim, enc, gov)

	site, err := pipe.ResearchSite(context.Background(), entry("philae"))
	require.NoError(t, err)
	assert.Equal(t, "Aswan", site.Governorate)
	assert.Empty(t, site.WikipediaURL)
	assert.NotEmpty(t, site.ArabicPhrases)
}

func TestResearchAllSkipsFatalSitesAndKeepsOrder(t *testing.T) {
	t.Parallel()

	entries := []model.ListingEntry{
		entry("alpha"), entry("broken"), entry("gamma"), entry("delta"),
	}
	prim := &fakePrimary{failURLs: map[string]bool{entry("broken").URL: true}}
	pipe := newTestPipeline(prim, &fakeEncyclopedia{}, &fakeGovernorate{})

	sites := pipe.ResearchAll(context.Background(), entries)
	require.Len(t, sites, 3)
	assert.Equal(t, "alpha", sites[0].Name)
	assert.Equal(t, "gamma", sites[1].Name)
	assert.Equal(t, "delta", sites[2].Name)
}

func TestResearchAllPreservesOrderUnderConcurrency(t *testing.T) {
	t.Parallel()

	var entries []model.ListingEntry
	for i := 0; i < 20; i++ {
		entries = append(entries, entry(fmt.Sprintf("site-%02d", i)))
	}
	pipe := newTestPipeline(&fakePrimary{}, &fakeEncyclopedia{}, &fakeGovernorate{})

	sites := pipe.ResearchAll(context.Background(), entries)
	require.Len(t, sites, 20)
	for i, site := range sites {
		assert.Equal(t, fmt.Sprintf("site-%02d", i), site.Name)
	}
}

func TestRunSkipsUnreachableListings(t *testing.T) {
	t.Parallel()

	prim := &fakePrimary{listings: map[string][]model.ListingEntry{
		"attractions": {entry("karnak")},
	}}
	pipe := newTestPipeline(prim, &fakeEncyclopedia{}, &fakeGovernorate{})

	sites := pipe.Run(context.Background(), []string{"attractions", "museums"}, 0)
	require.Len(t, sites, 1)
	assert.Equal(t, "karnak", sites[0].Name)
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prim := &fakePrimary{listings: map[string][]model.ListingEntry{
		"attractions": {entry("karnak")},
	}}
	pipe := newTestPipeline(prim, &fakeEncyclopedia{}, &fakeGovernorate{})

	sites := pipe.Run(ctx, []string{"attractions"}, 0)
	assert.Empty(t, sites)
}

type countingStore struct{ cleared int }

func (c *countingStore) Clear() { c.cleared++ }

func TestCloseClearsCaches(t *testing.T) {
	t.Parallel()

	store := &countingStore{}
	pipe := NewPipeline(
		&fakePrimary{}, &fakeEncyclopedia{}, &fakeGovernorate{}, fakeTerms{}, fakeTips{},
		NewSynthesizer(5, zap.NewNop()),
		1, nil, []Clearable{store}, zap.NewNop(),
	)
	pipe.Close()
	assert.Equal(t, 1, store.cleared)
}
