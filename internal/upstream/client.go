// Package upstream is the outbound HTTP plumbing shared by the data
// source fetchers: timeouts, rate limiting, a circuit breaker per source,
// logging, and metrics.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 64 << 20
	DefaultMaxFailures  = 5
	DefaultCooldown     = 2 * time.Minute
)

var ErrBodyTooLarge = errors.New("response body exceeds limit")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Source, e.Code)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Source, e.Code, e.Body)
}

// Options tune a Client. Zero values fall back to the defaults.
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	MaxFailures  uint32
	Cooldown     time.Duration

	// RequestsPerSecond limits outbound calls. Zero means unlimited.
	RequestsPerSecond float64
	Burst             int

	// Redact lists substrings (API keys embedded in paths) replaced in
	// logged URLs.
	Redact []string

	HTTPClient *http.Client
}

// Client fetches from one data source.
type Client struct {
	source   string
	http     *http.Client
	maxBody  int64
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	redactor *strings.Replacer
	log      zerolog.Logger
}

// New returns a Client for the named source.
func New(source string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	var pairs []string
	for _, s := range opts.Redact {
		if s != "" {
			pairs = append(pairs, s, "***")
		}
	}

	maxFailures := opts.MaxFailures
	metrics.BreakerState.WithLabelValues(source).Set(float64(gobreaker.StateClosed))
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        source,
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		// A 4xx says the request was wrong, not that the source is down.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{
		source:   source,
		http:     hc,
		maxBody:  opts.MaxBodyBytes,
		limiter:  limiter,
		breaker:  breaker,
		redactor: strings.NewReplacer(pairs...),
		log:      logging.With("upstream").With().Str("source", source).Logger(),
	}
}

// Get fetches rawURL and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", c.source, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, rawURL, accept)
	})
	result := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "breaker_open"
		err = fmt.Errorf("%s: %w", c.source, err)
	case err != nil:
		result = "error"
	}
	metrics.UpstreamRequests.WithLabelValues(c.source, result).Inc()
	return body, err
}

func (c *Client) do(ctx context.Context, rawURL, accept string) ([]byte, error) {
	safeURL := c.redact(rawURL)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.source, err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("User-Agent", "kabar-api/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(errors.New(c.redact(err.Error()))).Str("url", safeURL).Msg("request failed")
		// url.Error repeats the full URL, which may carry a key.
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, fmt.Errorf("%s: request: %w", c.source, ue.Err)
		}
		return nil, fmt.Errorf("%s: request: %w", c.source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	elapsed := time.Since(start)
	metrics.UpstreamDuration.WithLabelValues(c.source).Observe(elapsed.Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", c.source, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%s: %w (%d bytes)", c.source, ErrBodyTooLarge, c.maxBody)
	}

	c.log.Info().
		Str("url", safeURL).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Int("bytes", len(body)).
		Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Source: c.source, Code: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

func (c *Client) redact(s string) string {
	return c.redactor.Replace(s)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
