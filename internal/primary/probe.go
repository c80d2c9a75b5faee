package primary

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/unlockegypt/heritage-researcher/internal/research"
)

// ProbeFetcher does the cheap plain-HTTP fetch via Colly before any
// browser render is considered.
type ProbeFetcher struct {
	userAgent string
	timeout   time.Duration
	base      *colly.Collector
}

// NewProbeFetcher builds a ProbeFetcher.
func NewProbeFetcher(userAgent string, timeout time.Duration) *ProbeFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())
	return &ProbeFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		base:      c,
	}
}

// Fetch GETs the URL and returns the raw body. Rate-limit responses map
// to RateLimitedError, transport failures to NetworkError.
func (f *ProbeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	collector := f.base.Clone()
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.timeout)
	if f.userAgent != "" {
		collector.UserAgent = f.userAgent
	}

	var (
		body     []byte
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("probe fetch canceled: %w", ctx.Err())
	case err := <-done:
		if status == http.StatusTooManyRequests {
			return nil, &research.RateLimitedError{Service: "primary"}
		}
		if fetchErr != nil {
			return nil, &research.NetworkError{Op: "probe fetch", Err: fetchErr}
		}
		if err != nil {
			return nil, &research.NetworkError{Op: "probe visit", Err: err}
		}
		return body, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
