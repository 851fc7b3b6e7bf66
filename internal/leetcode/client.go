// Package leetcode fetches public profile and contest data from the
// LeetCode GraphQL endpoint.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dsacoach-gateway/internal/cache"
	"dsacoach-gateway/internal/upstream"
)

const (
	DefaultEndpoint = "https://leetcode.com/graphql"

	referer   = "https://leetcode.com"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// ErrUserNotFound is returned when LeetCode has no user by the given name.
var ErrUserNotFound = errors.New("user not found on LeetCode")

type Config struct {
	Endpoint   string
	Timeout    time.Duration // default 15s
	MaxRetries int
	HTTPClient *http.Client
}

// Client queries LeetCode and memoizes results in the profile cache domain.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	retrier    upstream.Retrier
	store      *cache.ExpiringCache
	group      singleflight.Group
	logger     *zap.Logger
}

func NewClient(cfg Config, store *cache.ExpiringCache, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("leetcode")

	return &Client{
		endpoint:   cfg.Endpoint,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		retrier: upstream.Retrier{
			Name:       "leetcode",
			MaxRetries: cfg.MaxRetries,
			Logger:     logger,
		},
		store:  store,
		logger: logger,
	}
}

// query posts a GraphQL document and returns its decoded data member.
func query[T any](ctx context.Context, c *Client, doc string, vars map[string]any) (*T, error) {
	body, err := json.Marshal(graphQLRequest{Query: doc, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("leetcode: marshal query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.retrier.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Referer", referer)
		req.Header.Set("User-Agent", userAgent)
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("leetcode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("leetcode: API returned %d", resp.StatusCode)
	}

	var out graphQLResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("leetcode: decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("leetcode: %s", out.Errors[0].Message)
	}
	if out.Data == nil {
		return nil, errors.New("leetcode: response carried no data")
	}
	return out.Data, nil
}

// cached serves key from the profile domain, otherwise runs fetch once per
// key across concurrent callers and stores the result. The shared fetch runs
// on a context detached from any one caller (query still bounds it with the
// client timeout); each caller stops waiting when its own ctx is done.
func cached[T any](ctx context.Context, c *Client, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := cache.Lookup[T](c.store, key); ok {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		res, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("leetcode: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		if r.Shared {
			c.logger.Debug("collapsed duplicate fetch", zap.String("key", key))
		}
		return r.Val.(T), nil
	}
}
