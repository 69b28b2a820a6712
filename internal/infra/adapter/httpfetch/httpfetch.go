// Package httpfetch implements port.HttpFetcher: the hardened outbound
// HTTP client shared by the feed collector and the web-article extractor.
// Grounded on the teacher's internal/infra/fetcher/readability.go
// (NewReadabilityFetcher/doFetch structure: circuit-breaker-wrapped
// client, SSRF-checked redirects, size-limited reads), adapted to return
// raw bytes and content-type instead of pre-extracted article text, and
// to call entity.ValidateURL for SSRF checks instead of the teacher's
// duplicate validateURL/isPrivateIP helpers.
package httpfetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/resilience/circuitbreaker"
)

// ErrTooManyRedirects is returned when a fetch follows more redirects
// than Config.MaxRedirects allows.
var ErrTooManyRedirects = errors.New("httpfetch: too many redirects")

// ErrBodyTooLarge is returned when a response exceeds Config.MaxBodySize.
var ErrBodyTooLarge = errors.New("httpfetch: response body too large")

// Config controls timeout, size, and redirect behavior.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodySize  int64
	UserAgent    string
}

// DefaultConfig matches SPEC_FULL.md §4.7/§4.3's fetch limits: 10s
// timeout, 3 redirects, 5MB body cap.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		MaxRedirects: 3,
		MaxBodySize:  5 << 20,
		UserAgent:    "AfriSignalBot/1.0",
	}
}

// Client is a circuit-breaker-wrapped, SSRF-hardened port.HttpFetcher.
type Client struct {
	client *http.Client
	cb     *circuitbreaker.CircuitBreaker
	config Config
}

// New builds a Client per cfg. Every redirect target is revalidated via
// entity.ValidateURL, matching the initial-URL check in Fetch.
func New(cfg Config) *Client {
	cb := circuitbreaker.New(circuitbreaker.Config{
		Name:             "http-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	})

	c := &Client{cb: cb, config: cfg}
	c.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := entity.ValidateURL(req.URL.String()); err != nil {
				return fmt.Errorf("redirect target rejected: %w", err)
			}
			return nil
		},
	}
	return c
}

type fetchResult struct {
	body        []byte
	contentType string
}

// Fetch implements port.HttpFetcher. It validates url for SSRF, executes
// the request through the circuit breaker, and enforces the body size
// cap via io.LimitReader.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if err := entity.ValidateURL(url); err != nil {
		return nil, "", err
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.doFetch(ctx, url)
	})
	if err != nil {
		return nil, "", err
	}

	fr := result.(fetchResult)
	return fr.body, fr.contentType, nil
}

func (c *Client) doFetch(ctx context.Context, url string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fetchResult{}, fmt.Errorf("httpfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return fetchResult{}, fmt.Errorf("httpfetch: request exceeded %v: %w", c.config.Timeout, err)
		}
		return fetchResult{}, fmt.Errorf("httpfetch: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fetchResult{}, fmt.Errorf("httpfetch: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, c.config.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return fetchResult{}, fmt.Errorf("httpfetch: read body: %w", err)
	}
	if int64(len(body)) > c.config.MaxBodySize {
		return fetchResult{}, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrBodyTooLarge, len(body), c.config.MaxBodySize)
	}

	return fetchResult{body: body, contentType: resp.Header.Get("Content-Type")}, nil
}
