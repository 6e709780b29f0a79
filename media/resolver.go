// Package media resolves a media player page to its HLS manifest URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

const (
	// A plain library User-Agent gets the player page bounced; identify as a
	// browser like everything else does.
	browserUserAgent = "Mozilla/5.0"

	DefaultAttempts      = 3
	DefaultBackoffFactor = 300 * time.Millisecond
	DefaultTimeout       = 10 * time.Second
)

// ErrNoManifest means the player page loaded but contained no manifest URL.
var ErrNoManifest = errors.New("no manifest URL in media player page")

// manifestPattern finds an HLS playlist URL inside markup or inline script.
var manifestPattern = regexp.MustCompile(`https?://[^\s"'<>]+\.m3u8`)

// Resolver fetches media player pages over one pooled HTTP client. Build it
// once per run; the client carries retry policy, not per-request state.
type Resolver struct {
	client *retryablehttp.Client
}

type Config struct {
	// Attempts is the total number of tries per request, first included.
	Attempts int
	// BackoffFactor scales the exponential wait between tries:
	// factor * 2^(attempt-1).
	BackoffFactor time.Duration
	// Timeout bounds each individual request.
	Timeout time.Duration
}

// NewResolver builds the run's one retrying client; zero Config fields fall
// back to the package defaults.
func NewResolver(cfg Config) *Resolver {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = DefaultBackoffFactor
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Attempts - 1
	client.HTTPClient.Timeout = cfg.Timeout
	client.CheckRetry = retryOnServerFailure
	client.Backoff = exponentialBackoff(cfg.BackoffFactor)
	client.Logger = nil // retry noise goes through our own logging instead

	return &Resolver{client: client}
}

// Resolve fetches playerURL and returns the first HLS manifest URL found in
// the response body. ErrNoManifest when the page has none; other errors mean
// the page was unreachable after retries.
func (r *Resolver) Resolve(ctx context.Context, playerURL string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, playerURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching media player page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading media player page: %w", err)
	}

	manifest := manifestPattern.FindString(string(body))
	if manifest == "" {
		log.WithField("playerURL", playerURL).Debug("player page had no manifest URL")
		return "", ErrNoManifest
	}
	return manifest, nil
}

// retryOnServerFailure retries connection/read failures and the gateway-ish
// server statuses the player host intermittently throws.
func retryOnServerFailure(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

func exponentialBackoff(factor time.Duration) retryablehttp.Backoff {
	return func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		// attemptNum counts completed attempts, so the first retry waits
		// factor * 2^0.
		return time.Duration(float64(factor) * math.Pow(2, float64(attemptNum)))
	}
}
