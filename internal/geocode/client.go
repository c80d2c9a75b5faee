// Package geocode resolves site names to coordinates and canonical
// Egyptian governorates via the Nominatim geocoding service.
package geocode

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

// Result is one geocoding hit with its address breakdown.
type Result struct {
	Lat     float64
	Lon     float64
	Address map[string]string
}

// Client geocodes free-form place names.
type Client interface {
	Geocode(ctx context.Context, placeName string) (Result, error)
}

// HTTPClient talks to a Nominatim-compatible search endpoint.
type HTTPClient struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

// NewHTTPClient builds a Nominatim client.
func NewHTTPClient(endpoint, userAgent string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type nominatimRow struct {
	Lat     string            `json:"lat"`
	Lon     string            `json:"lon"`
	Address map[string]string `json:"address"`
}

// Geocode looks up a place name and returns the best hit. Returns
// research.ErrNotFound when the provider has no match.
func (c *HTTPClient) Geocode(ctx context.Context, placeName string) (Result, error) {
	q := url.Values{}
	q.Set("q", placeName)
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &research.NetworkError{Op: "geocode", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Result{}, &research.RateLimitedError{Service: "geocoding"}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, &research.NetworkError{
			Op:  "geocode",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &research.NetworkError{Op: "geocode read", Err: err}
	}

	var rows []nominatimRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return Result{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(rows) == 0 {
		return Result{}, research.ErrNotFound
	}

	lat, err := strconv.ParseFloat(rows[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse latitude %q: %w", rows[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(rows[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse longitude %q: %w", rows[0].Lon, err)
	}

	return Result{Lat: lat, Lon: lon, Address: rows[0].Address}, nil
}
