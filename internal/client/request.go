package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Belphemur/ShowFeed/internal/apperrors"
	"github.com/Belphemur/ShowFeed/internal/cache"
	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/Belphemur/ShowFeed/internal/metrics"
	"github.com/Belphemur/ShowFeed/internal/parser"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// maxBodySize bounds how much of a catalog response is read into memory.
const maxBodySize = 8 << 20

// newRetryPolicy retries transient catalog failures (transport errors, 429
// and 5xx) with exponential backoff. Client errors such as 404 are returned
// immediately.
func newRetryPolicy(cfg *config.Config) retrypolicy.RetryPolicy[[]byte] {
	delay := config.Duration(cfg.Retry.Delay, 500*time.Millisecond, "retry.delay")
	maxDelay := config.Duration(cfg.Retry.MaxDelay, 5*time.Second, "retry.max_delay")
	if maxDelay <= delay {
		maxDelay = delay * 2
	}

	return retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			return isRetryable(err)
		}).
		WithMaxRetries(max(cfg.Retry.MaxRetries, 0)).
		WithBackoff(delay, maxDelay).
		ReturnLastFailure().
		Build()
}

func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr *apperrors.NetworkError
	return errors.As(err, &netErr) && netErr.Temporary()
}

// fetchParsed returns endpoint's body decoded by p. A cached response
// younger than the freshness window is decoded without a request. When the
// catalog is unreachable, a cached response still inside the stale window is
// served instead of the error. Only bodies that decode are cached.
func fetchParsed[T any](ctx context.Context, c *client, key cache.Key, endpoint string, p parser.Parser[T]) ([]T, error) {
	var (
		cached cache.Entry
		found  bool
	)
	if c.cache != nil {
		cached, found = c.cache.Get(key)
		if found && cached.Age(c.now()) < c.freshFor {
			return p.Parse(bytes.NewReader(cached.Body))
		}
	}

	logger := config.GetLogger()
	attempt := 0
	body, err := failsafe.With(c.retry).WithContext(ctx).Get(func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			logger.Debug().Str("url", endpoint).Int("attempt", attempt).Msg("Retrying catalog request")
		}
		return c.do(ctx, string(key.Kind), endpoint)
	})
	if err != nil {
		if found && isRetryable(err) && cached.Age(c.now()) < c.freshFor+c.staleFor {
			logger.Warn().Err(err).Str("url", endpoint).Dur("age", cached.Age(c.now())).Msg("Catalog unreachable, serving stale response")
			metrics.ClientStaleResponsesTotal.WithLabelValues(string(key.Kind)).Inc()
			return p.Parse(bytes.NewReader(cached.Body))
		}
		logger.Warn().Err(err).Str("url", endpoint).Int("attempts", attempt).Msg("Catalog request failed")
		return nil, err
	}

	items, err := p.Parse(bytes.NewReader(body))
	if err != nil {
		logger.Warn().Err(err).Str("url", endpoint).Msg("Catalog response did not decode, not caching it")
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(key, cache.Entry{Body: body, StoredAt: c.now()})
	}
	return items, nil
}

// do performs a single GET and returns the body converted to UTF-8.
func (c *client) do(ctx context.Context, name, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ClientRequestsTotal.WithLabelValues(name, "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &apperrors.NetworkError{Op: "GET", URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	metrics.ClientRequestsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &apperrors.NetworkError{Op: "GET", URL: endpoint, StatusCode: resp.StatusCode}
	}

	reader, err := parser.NewUTF8Reader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &apperrors.DecodeError{Op: "charset", Err: err}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &apperrors.NetworkError{Op: "GET", URL: endpoint, Err: err}
	}
	return body, nil
}
