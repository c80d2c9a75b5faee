// Package translate extracts site-specific English vocabulary and
// renders it in Arabic with pronunciation guides, caching every resolved
// term for the rest of the run.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unlockegypt/heritage-researcher/internal/research"
)

// Client is the machine-translation boundary.
type Client interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// HTTPClient uses the unauthenticated Google translate endpoint.
type HTTPClient struct {
	endpoint string
	http     *http.Client
}

// NewHTTPClient builds a translation client.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Translate renders text from sourceLang into targetLang.
func (c *HTTPClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &research.NetworkError{Op: "translate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &research.RateLimitedError{Service: "translation"}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &research.NetworkError{
			Op:  "translate",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &research.NetworkError{Op: "translate read", Err: err}
	}

	return parseTranslation(body)
}

// parseTranslation unwraps the endpoint's nested-array payload:
// [[[translated, original, ...], ...], ...].
func parseTranslation(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translation payload shape")
	}
	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	translated := strings.TrimSpace(b.String())
	if translated == "" {
		return "", fmt.Errorf("translation response carried no text")
	}
	return translated, nil
}
