package content

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/errors"
)

// DefaultBatchLimit caps how many posts a single category fetch requests.
const DefaultBatchLimit = 12

// APIClient reads post summaries from the host CMS's content API.
// Responses are cached; retries and error mapping come from the base Client.
type APIClient struct {
	*Client
	baseURL string
	key     string
}

// NewAPIClient creates a content API client for the blog at baseURL.
// The key parameterizes every request; the host rejects requests without one.
func NewAPIClient(baseURL, key string, cacheTTL time.Duration) (*APIClient, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}

	cache, err := NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}

	return &APIClient{
		Client:  NewClient(cache.Namespace("api:"), map[string]string{"Accept": "application/json"}),
		baseURL: baseURL,
		key:     key,
	}, nil
}

// PostsByTag fetches up to limit posts carrying the given tag slug,
// with authors and tags included. A limit of 0 uses DefaultBatchLimit.
func (c *APIClient) PostsByTag(ctx context.Context, tag string, limit int, refresh bool) (PostsResponse, error) {
	if err := errors.ValidateCategoryKey(tag); err != nil {
		return PostsResponse{}, err
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	q := url.Values{}
	q.Set("key", c.key)
	q.Set("filter", "tag:"+tag)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("include", "authors,tags")

	var resp PostsResponse
	cacheKey := fmt.Sprintf("tag:%s:limit:%d", tag, limit)
	err := c.Cached(ctx, cacheKey, refresh, &resp, func() error {
		return c.Get(ctx, c.postsURL(q), &resp)
	})
	return resp, err
}

// FetchCategory returns the cards for one category key, the shape the
// board's category filter consumes.
func (c *APIClient) FetchCategory(ctx context.Context, key string, limit int) ([]card.Card, error) {
	resp, err := c.PostsByTag(ctx, key, limit, false)
	if err != nil {
		return nil, err
	}
	return resp.Cards(), nil
}

// Posts fetches one page of the blog's full post listing.
func (c *APIClient) Posts(ctx context.Context, page, limit int, refresh bool) (PostsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	q := url.Values{}
	q.Set("key", c.key)
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	q.Set("include", "authors,tags")

	var resp PostsResponse
	cacheKey := fmt.Sprintf("page:%d:limit:%d", page, limit)
	err := c.Cached(ctx, cacheKey, refresh, &resp, func() error {
		return c.Get(ctx, c.postsURL(q), &resp)
	})
	return resp, err
}

func (c *APIClient) postsURL(q url.Values) string {
	return fmt.Sprintf("%s/ghost/api/content/posts/?%s", c.baseURL, q.Encode())
}
