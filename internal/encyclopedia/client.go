// Package encyclopedia finds and mines Wikipedia articles for heritage
// sites: fuzzy title matching, fact extraction, and the Arabic
// sister-article via language-link metadata.
package encyclopedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/unlockegypt/heritage-researcher/internal/research"
)

// SearchHit is one candidate title from the search endpoint.
type SearchHit struct {
	Title   string
	Snippet string
}

// Article is a fetched article with its language links.
type Article struct {
	Title     string
	Text      string
	URL       string
	LangLinks map[string]string
}

// Client is the encyclopedia API boundary.
type Client interface {
	Search(ctx context.Context, query, lang string) ([]SearchHit, error)
	GetArticle(ctx context.Context, title, lang string) (Article, error)
}

// HTTPClient talks to a MediaWiki API endpoint per language.
type HTTPClient struct {
	endpointTemplate string
	userAgent        string
	searchLimit      int
	http             *http.Client
}

// NewHTTPClient builds a MediaWiki client. endpointTemplate carries one
// %s verb for the language code.
func NewHTTPClient(endpointTemplate, userAgent string, searchLimit int, timeout time.Duration) *HTTPClient {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &HTTPClient{
		endpointTemplate: endpointTemplate,
		userAgent:        userAgent,
		searchLimit:      searchLimit,
		http:             &http.Client{Timeout: timeout},
	}
}

// Search returns up to the configured number of candidate titles.
func (c *HTTPClient) Search(ctx context.Context, query, lang string) ([]SearchHit, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(c.searchLimit))
	params.Set("srprop", "snippet")
	params.Set("format", "json")

	var payload struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.call(ctx, lang, params, &payload); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(payload.Query.Search))
	for _, s := range payload.Query.Search {
		hits = append(hits, SearchHit{Title: s.Title, Snippet: s.Snippet})
	}
	return hits, nil
}

// GetArticle fetches the plain-text extract, canonical URL, and language
// links for a title. Returns research.ErrNotFound for missing pages.
func (c *HTTPClient) GetArticle(ctx context.Context, title, lang string) (Article, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "extracts|langlinks|info")
	params.Set("explaintext", "1")
	params.Set("inprop", "url")
	params.Set("lllimit", "max")
	params.Set("redirects", "1")
	params.Set("format", "json")

	var payload struct {
		Query struct {
			Pages map[string]struct {
				Missing   *string `json:"missing"`
				Title     string  `json:"title"`
				Extract   string  `json:"extract"`
				FullURL   string  `json:"fullurl"`
				LangLinks []struct {
					Lang  string `json:"lang"`
					Title string `json:"*"`
				} `json:"langlinks"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.call(ctx, lang, params, &payload); err != nil {
		return Article{}, err
	}

	for id, page := range payload.Query.Pages {
		if id == "-1" || page.Missing != nil {
			continue
		}
		links := make(map[string]string, len(page.LangLinks))
		for _, ll := range page.LangLinks {
			links[ll.Lang] = ll.Title
		}
		return Article{
			Title:     page.Title,
			Text:      page.Extract,
			URL:       page.FullURL,
			LangLinks: links,
		}, nil
	}
	return Article{}, research.ErrNotFound
}

func (c *HTTPClient) call(ctx context.Context, lang string, params url.Values, out any) error {
	endpoint := fmt.Sprintf(c.endpointTemplate, lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build encyclopedia request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &research.NetworkError{Op: "encyclopedia call", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &research.RateLimitedError{Service: "encyclopedia"}
	}
	if resp.StatusCode != http.StatusOK {
		return &research.NetworkError{
			Op:  "encyclopedia call",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &research.NetworkError{Op: "encyclopedia read", Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode encyclopedia response: %w", err)
	}
	return nil
}
