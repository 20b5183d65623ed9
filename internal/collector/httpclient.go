package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// HTTPOptions tunes the rate-limited, retrying HTTP client shared by the REST fetchers.
type HTTPOptions struct {
	Proxy          string
	Timeout        time.Duration
	RequestsPerSec float64
	MaxRetries     int
	RetryInitial   time.Duration
}

// StatusError is a non-200 answer from an upstream API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

type httpClient struct {
	client       *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryInitial time.Duration
}

func newHTTPClient(opts HTTPOptions) *httpClient {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}
	if opts.RetryInitial == 0 {
		opts.RetryInitial = 500 * time.Millisecond
	}
	return &httpClient{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter:      rate.NewLimiter(limit, 1),
		maxRetries:   opts.MaxRetries,
		retryInitial: opts.RetryInitial,
	}
}

// get performs a GET with rate limiting. Transport errors, 429 and 5xx are retried with
// exponential backoff; other non-200 answers fail immediately with a *StatusError.
func (c *httpClient) get(ctx context.Context, endpoint string, header http.Header) ([]byte, error) {
	var body []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			serr := &StatusError{Code: resp.StatusCode, Body: string(b)}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return serr
			}
			return backoff.Permanent(serr)
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	var policy backoff.BackOff = backoff.WithMaxRetries(bo, uint64(max(c.maxRetries, 0)))
	policy = backoff.WithContext(policy, ctx)

	notify := func(err error, wait time.Duration) {
		logger().Warn().Err(err).Dur("retry_in", wait).Str("url", redact(endpoint)).Msg("request failed, retrying")
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

// redact strips the query string, which may carry credentials.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	u.RawQuery = ""
	return u.String()
}
