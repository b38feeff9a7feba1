// Package speedtest measures the latency of provider API endpoints.
package speedtest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"ccswitch/internal/utils"
)

const (
	// DefaultTimeout applies when no timeout is given
	DefaultTimeout = 8 * time.Second
	minTimeout     = 2 * time.Second
	maxTimeout     = 30 * time.Second
)

// Result is the outcome of probing one endpoint
type Result struct {
	URL        string `json:"url"`
	LatencyMs  *int64 `json:"latencyMs,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the endpoint answered with a 2xx status
func (r Result) OK() bool {
	return r.Error == "" && r.StatusCode >= 200 && r.StatusCode < 300
}

// ClampTimeout bounds a user supplied timeout; zero selects DefaultTimeout
func ClampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultTimeout
	case d < minTimeout:
		return minTimeout
	case d > maxTimeout:
		return maxTimeout
	}
	return d
}

// Tester probes endpoints with GET requests
type Tester struct {
	client  *http.Client
	timeout time.Duration
}

// NewTester creates a Tester whose requests give up after timeout
func NewTester(timeout time.Duration) *Tester {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tester{
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Test probes every URL concurrently. Results keep the order of urls.
func (t *Tester) Test(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i] = t.probe(ctx, u)
		}(i, u)
	}
	wg.Wait()
	return results
}

func (t *Tester) probe(ctx context.Context, rawURL string) Result {
	target := utils.NormalizeURL(rawURL)
	result := Result{URL: target}
	if !utils.ValidateURL(target) {
		result.Error = "Invalid URL format"
		return result
	}

	// the first request pays for DNS, TCP and TLS; only the second is timed
	if _, err := t.do(ctx, target); err != nil {
		result.Error = t.describe(err)
		return result
	}

	start := time.Now()
	status, err := t.do(ctx, target)
	if err != nil {
		result.Error = t.describe(err)
		return result
	}
	latency := time.Since(start).Milliseconds()
	result.LatencyMs = &latency
	result.StatusCode = status
	return result
}

func (t *Tester) do(ctx context.Context, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "cc-switch-speedtest")
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// describe turns a transport error into a short human readable reason
func (t *Tester) describe(err error) string {
	var netErr net.Error
	isNet := errors.As(err, &netErr)
	errStr := err.Error()

	switch {
	case isNet && netErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Request timed out (more than %s)", t.timeout)
	case errors.Is(err, context.Canceled):
		return "Request canceled"
	case strings.Contains(errStr, "connection refused"):
		return "Connection refused (server not listening on this port)"
	case strings.Contains(errStr, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(errStr, "no such host"):
		return "DNS resolution failed (domain does not exist or network configuration error)"
	case strings.Contains(errStr, "EOF"):
		return "Connection closed unexpectedly"
	case isNet:
		return fmt.Sprintf("Network error: %v", netErr)
	}
	return fmt.Sprintf("Request failed: %v", err)
}
