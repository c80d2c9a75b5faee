package primary

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/model"
	"github.com/unlockegypt/heritage-researcher/internal/ratelimit"
	"github.com/unlockegypt/heritage-researcher/internal/research"
)

// Prober is the cheap static-fetch boundary.
type Prober interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Renderer is the headless-browser boundary.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
	RenderListing(ctx context.Context, url string, maxItems int) (string, error)
}

// Researcher fetches and parses the catalog's listing and detail pages.
type Researcher struct {
	baseURL  string
	prober   Prober
	renderer Renderer
	detector *RenderDetector
	parser   *Parser
	limiter  *ratelimit.Limiter
	retry    *research.RetryPolicy
	logger   *zap.Logger
}

// NewResearcher builds a Researcher over a shared browser session.
func NewResearcher(
	baseURL string,
	prober Prober,
	renderer Renderer,
	detector *RenderDetector,
	parser *Parser,
	limiter *ratelimit.Limiter,
	retry *research.RetryPolicy,
	logger *zap.Logger,
) *Researcher {
	return &Researcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		prober:   prober,
		renderer: renderer,
		detector: detector,
		parser:   parser,
		limiter:  limiter,
		retry:    retry,
		logger:   logger,
	}
}

// EnumerateSites loads a listing page and returns its catalog entries.
// Relative entry URLs are resolved against the base URL.
func (r *Researcher) EnumerateSites(ctx context.Context, pageType string, maxSites int) ([]model.ListingEntry, error) {
	listingURL := r.baseURL + "/en/" + pageType + "/"

	var html string
	err := r.retry.Do(ctx, func() error {
		if werr := r.limiter.Wait(ctx, ratelimit.ServicePrimary); werr != nil {
			return werr
		}
		var renderErr error
		html, renderErr = r.renderer.RenderListing(ctx, listingURL, maxSites)
		return renderErr
	})
	if err != nil {
		return nil, &research.FatalSourceError{URL: listingURL, Err: err}
	}

	entries, err := ParseListing(html, pageType)
	if err != nil {
		return nil, &research.FatalSourceError{URL: listingURL, Err: err}
	}

	for i := range entries {
		entries[i].URL = r.absoluteURL(entries[i].URL)
	}
	if maxSites > 0 && len(entries) > maxSites {
		entries = entries[:maxSites]
	}
	r.logger.Info("listing enumerated",
		zap.String("page_type", pageType),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// ResearchPage fetches one detail page, promoting to a browser render
// when the static probe returns a JavaScript shell, and parses it.
// Exhausted retries surface as FatalSourceError: the caller skips the
// site and continues the run.
func (r *Researcher) ResearchPage(ctx context.Context, url string, seed model.ListingEntry) (PageData, error) {
	html, err := r.fetchPage(ctx, url)
	if err != nil {
		return PageData{}, &research.FatalSourceError{URL: url, Err: err}
	}

	data, err := r.parser.ParsePage(html, seed.Name)
	if err != nil {
		return PageData{}, &research.FatalSourceError{URL: url, Err: err}
	}
	data.Location = seed.Location

	// The listing thumbnail leads the gallery.
	if seed.Image != "" && !containsString(data.Images, seed.Image) {
		data.Images = append([]string{seed.Image}, data.Images...)
		if len(data.Images) > r.parser.maxImages {
			data.Images = data.Images[:r.parser.maxImages]
		}
	}

	data.ArabicName = r.arabicName(ctx, url)
	return data, nil
}

// fetchPage probes first and renders only when the detector says the
// probe body is not the real page.
func (r *Researcher) fetchPage(ctx context.Context, url string) (string, error) {
	var body []byte
	probeErr := r.retry.Do(ctx, func() error {
		if werr := r.limiter.Wait(ctx, ratelimit.ServicePrimary); werr != nil {
			return werr
		}
		var fetchErr error
		body, fetchErr = r.prober.Fetch(ctx, url)
		return fetchErr
	})
	if probeErr == nil && !r.detector.NeedsRender(body) {
		return string(body), nil
	}
	if probeErr != nil {
		r.logger.Debug("probe failed, promoting to render",
			zap.String("url", url),
			zap.Error(probeErr),
		)
	}

	var html string
	err := r.retry.Do(ctx, func() error {
		if werr := r.limiter.Wait(ctx, ratelimit.ServicePrimary); werr != nil {
			return werr
		}
		var renderErr error
		html, renderErr = r.renderer.Render(ctx, url)
		return renderErr
	})
	return html, err
}

// arabicName loads the /ar/ twin page, best effort: a missing or
// script-free twin yields an empty name, never an error.
func (r *Researcher) arabicName(ctx context.Context, url string) string {
	arabicURL := strings.Replace(url, "/en/", "/ar/", 1)
	if arabicURL == url {
		return ""
	}

	html, err := r.fetchPage(ctx, arabicURL)
	if err != nil {
		r.logger.Debug("arabic twin fetch failed",
			zap.String("url", arabicURL),
			zap.Error(err),
		)
		return ""
	}
	return ArabicTitle(html)
}

func (r *Researcher) absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return r.baseURL + "/" + strings.TrimLeft(href, "/")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
