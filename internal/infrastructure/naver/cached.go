package naver

import (
	"context"
	"fmt"

	"github.com/shoprank/backend/internal/domain"
	"github.com/shoprank/backend/internal/infrastructure/cache"
)

// CachedClient decorates a search client with a short-lived page cache so a
// run tracking several products against the same keyword fetches each page
// once. Only successful pages are cached; errors always pass through.
type CachedClient struct {
	inner domain.SearchClient
	pages *cache.PageCache
}

// NewCachedClient wraps inner with the given page cache.
func NewCachedClient(inner domain.SearchClient, pages *cache.PageCache) *CachedClient {
	return &CachedClient{inner: inner, pages: pages}
}

// Search returns the cached page when available, otherwise delegates.
func (c *CachedClient) Search(ctx context.Context, query string, pageStart, pageSize int) (*domain.SearchPage, error) {
	key := fmt.Sprintf("%s:%d:%d", query, pageStart, pageSize)
	if page := c.pages.Get(key); page != nil {
		return page, nil
	}

	page, err := c.inner.Search(ctx, query, pageStart, pageSize)
	if err != nil {
		return nil, err
	}
	c.pages.Set(key, page)
	return page, nil
}
