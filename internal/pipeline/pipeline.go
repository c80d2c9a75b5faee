// Package pipeline sequences the per-site research stages, fans sites
// out over a bounded worker pool, and synthesizes the final Site
// records from the accumulated stage outputs.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unlockegypt/heritage-researcher/internal/encyclopedia"
	"github.com/unlockegypt/heritage-researcher/internal/geocode"
	"github.com/unlockegypt/heritage-researcher/internal/model"
	"github.com/unlockegypt/heritage-researcher/internal/primary"
	"github.com/unlockegypt/heritage-researcher/internal/progress"
	"github.com/unlockegypt/heritage-researcher/internal/research"
	"github.com/unlockegypt/heritage-researcher/internal/tips"
)

// PrimarySource is the catalog-site boundary.
type PrimarySource interface {
	EnumerateSites(ctx context.Context, pageType string, maxSites int) ([]model.ListingEntry, error)
	ResearchPage(ctx context.Context, url string, seed model.ListingEntry) (primary.PageData, error)
}

// EncyclopediaSource finds and mines the matching article for a site.
type EncyclopediaSource interface {
	Research(ctx context.Context, siteName, arabicName, locationHint string) (encyclopedia.Finding, error)
}

// GovernorateSource resolves a site to a canonical governorate.
type GovernorateSource interface {
	Resolve(ctx context.Context, siteName, locationHint string) geocode.Resolution
}

// TermSource extracts and translates site vocabulary.
type TermSource interface {
	ExtractTerms(ctx context.Context, siteName, description string) []model.ArabicPhrase
}

// TipSource synthesizes visitor tips from classification and practical
// info.
type TipSource interface {
	Synthesize(placeType, tourismType, governorate string, practical tips.Practical) []model.Tip
}

// Clearable is anything holding run-scoped state the pipeline must drop
// on shutdown.
type Clearable interface {
	Clear()
}

// Pipeline runs the fixed five-stage research sequence per site and
// fans sites out over a bounded worker pool.
type Pipeline struct {
	primary      PrimarySource
	encyclopedia EncyclopediaSource
	governorate  GovernorateSource
	terms        TermSource
	tips         TipSource
	synthesizer  *Synthesizer

	concurrency int
	runID       [16]byte
	hub         *progress.Hub
	caches      []Clearable
	logger      *zap.Logger
}

// NewPipeline wires the stage implementations together. hub may be nil.
func NewPipeline(
	primarySource PrimarySource,
	encyclopediaSource EncyclopediaSource,
	governorateSource GovernorateSource,
	termSource TermSource,
	tipSource TipSource,
	synthesizer *Synthesizer,
	concurrency int,
	hub *progress.Hub,
	caches []Clearable,
	logger *zap.Logger,
) *Pipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		primary:      primarySource,
		encyclopedia: encyclopediaSource,
		governorate:  governorateSource,
		terms:        termSource,
		tips:         tipSource,
		synthesizer:  synthesizer,
		concurrency:  concurrency,
		runID:        progress.UUIDToBytes(uuid.New()),
		hub:          hub,
		caches:       caches,
		logger:       logger,
	}
}

// EnumerateSites surfaces the primary source's listing for the
// orchestrating command.
func (p *Pipeline) EnumerateSites(ctx context.Context, pageType string, maxSites int) ([]model.ListingEntry, error) {
	return p.primary.EnumerateSites(ctx, pageType, maxSites)
}

// Run enumerates every page type and researches all discovered sites.
// A listing that cannot be enumerated is logged and skipped; the run
// keeps going with the remaining page types.
func (p *Pipeline) Run(ctx context.Context, pageTypes []string, maxSitesPerType int) []model.Site {
	start := time.Now()
	p.emit(progress.Event{Stage: progress.StageRunStart})
	defer func() {
		p.emit(progress.Event{Stage: progress.StageRunDone, Dur: time.Since(start)})
	}()

	var sites []model.Site
	for _, pageType := range pageTypes {
		if err := ctx.Err(); err != nil {
			break
		}
		entries, err := p.EnumerateSites(ctx, pageType, maxSitesPerType)
		if err != nil {
			p.logger.Warn("listing enumeration failed",
				zap.String("page_type", pageType),
				zap.Error(err),
			)
			continue
		}
		sites = append(sites, p.ResearchAll(ctx, entries)...)
	}
	return sites
}

// ResearchSite runs every stage for one site. Only a primary-source
// failure aborts the site; any later stage failure degrades the record
// and the pipeline keeps going.
func (p *Pipeline) ResearchSite(ctx context.Context, entry model.ListingEntry) (model.Site, error) {
	c := NewSiteContext(entry)
	p.emit(progress.Event{Stage: progress.StageSiteStart, Site: entry.Name})

	if err := p.runPrimary(ctx, c); err != nil {
		p.emit(progress.Event{
			Stage:  progress.StageSiteSkipped,
			Site:   entry.Name,
			Status: progress.StatusFatal,
			Note:   err.Error(),
		})
		return model.Site{}, err
	}

	p.runEncyclopedia(ctx, c)
	p.runGovernorate(ctx, c)
	p.runArabicTerms(ctx, c)
	p.runTips(c)

	start := time.Now()
	site := p.synthesizer.Build(c)
	c.MarkOK(StepSynthesis)
	p.emitStep(c, StepSynthesis, start)

	status := progress.StatusOK
	if c.Degraded() {
		status = progress.StatusDegraded
	}
	p.emit(progress.Event{
		Stage:  progress.StageSiteDone,
		Site:   site.Name,
		Status: status,
	})
	return site, nil
}

// ResearchAll researches entries over the worker pool, preserving input
// order in the result. Sites that fail fatally are skipped; the error
// never propagates.
func (p *Pipeline) ResearchAll(ctx context.Context, entries []model.ListingEntry) []model.Site {
	type indexed struct {
		idx  int
		site model.Site
	}

	var (
		mu      sync.Mutex
		results []indexed
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			site, err := p.ResearchSite(gctx, entry)
			if err != nil {
				var fatal *research.FatalSourceError
				if errors.As(err, &fatal) {
					p.logger.Warn("skipping site after primary failure",
						zap.String("site", entry.Name),
						zap.String("url", entry.URL),
						zap.Error(err),
					)
					return nil
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				p.logger.Error("unexpected site failure",
					zap.String("site", entry.Name),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			results = append(results, indexed{idx: i, site: site})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Warn("research run interrupted", zap.Error(err))
	}

	sort.Slice(results, func(a, b int) bool { return results[a].idx < results[b].idx })
	sites := make([]model.Site, 0, len(results))
	for _, r := range results {
		sites = append(sites, r.site)
	}
	return sites
}

// Close drops every run-scoped cache.
func (p *Pipeline) Close() {
	for _, c := range p.caches {
		c.Clear()
	}
}

func (p *Pipeline) runPrimary(ctx context.Context, c *SiteContext) error {
	start := time.Now()
	page, err := p.primary.ResearchPage(ctx, c.Entry.URL, c.Entry)
	if err != nil {
		return err
	}
	c.Page = page
	c.MarkOK(StepPrimary)
	p.emitStep(c, StepPrimary, start)
	return nil
}

func (p *Pipeline) runEncyclopedia(ctx context.Context, c *SiteContext) {
	start := time.Now()
	finding, err := p.encyclopedia.Research(ctx, c.Name(), c.Page.ArabicName, c.Entry.Location)
	switch {
	case err == nil:
		c.Finding = finding
		c.MarkOK(StepEncyclopedia)
	case errors.Is(err, research.ErrNotFound):
		c.MarkDegraded(StepEncyclopedia, "no matching article")
		p.logger.Debug("no encyclopedia article", zap.String("site", c.Name()))
	default:
		c.MarkDegraded(StepEncyclopedia, err.Error())
		p.logger.Warn("encyclopedia stage failed",
			zap.String("site", c.Name()),
			zap.Error(err),
		)
	}
	p.emitStep(c, StepEncyclopedia, start)
}

func (p *Pipeline) runGovernorate(ctx context.Context, c *SiteContext) {
	start := time.Now()
	c.Resolution = p.governorate.Resolve(ctx, c.Name(), c.Entry.Location)
	if c.Resolution.Governorate == geocode.Unknown {
		c.MarkDegraded(StepGovernorate, "unresolved governorate")
	} else {
		c.MarkOK(StepGovernorate)
	}
	p.emitStep(c, StepGovernorate, start)
}

func (p *Pipeline) runArabicTerms(ctx context.Context, c *SiteContext) {
	start := time.Now()
	c.Phrases = p.terms.ExtractTerms(ctx, c.Name(), c.Page.FullDescription)
	if len(c.Phrases) == 0 {
		c.MarkDegraded(StepArabicTerms, "no terms translated")
	} else {
		c.MarkOK(StepArabicTerms)
	}
	p.emitStep(c, StepArabicTerms, start)
}

func (p *Pipeline) runTips(c *SiteContext) {
	start := time.Now()
	c.Practical = tips.Practical{
		EstimatedDuration: tips.EstimateDuration(c.Name(), c.Page.PlaceType),
		BestTimeToVisit:   tips.BestTime(c.Page.PlaceType, c.Resolution.Governorate),
		OfficialWebsite:   tips.OfficialWebsite(c.Name()),
	}
	c.Tips = p.tips.Synthesize(c.Page.PlaceType, c.Page.TourismType, c.Resolution.Governorate, c.Practical)
	c.MarkOK(StepTips)
	p.emitStep(c, StepTips, start)
}

func (p *Pipeline) emitStep(c *SiteContext, step Step, start time.Time) {
	st := c.Steps[step]
	status := progress.StatusOK
	if st.Degraded {
		status = progress.StatusDegraded
	}
	p.emit(progress.Event{
		Stage:  progress.StageStepDone,
		Site:   c.Name(),
		Step:   string(step),
		Status: status,
		Dur:    time.Since(start),
		Note:   st.Reason,
	})
}

func (p *Pipeline) emit(evt progress.Event) {
	evt.RunID = p.runID
	evt.TS = time.Now().UTC()
	p.hub.Emit(evt)
}
