package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/shoprank/backend/internal/domain"
)

// searchPath is the shopping search endpoint of the Naver open API.
const searchPath = "/v1/search/shop.json"

// Client handles communication with the Naver shopping search API.
type Client struct {
	httpClient  *http.Client
	creds       domain.CredentialsProvider
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Naver search API client.
func NewClient(creds domain.CredentialsProvider, baseURL string) *Client {
	// The open API quota is 25,000 calls/day. Traversal inserts its own
	// pacing between pages; this limiter is a last-resort guard so that
	// concurrent client runs cannot exceed a courtesy ceiling.
	limiter := rate.NewLimiter(rate.Limit(10), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		creds:       creds,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug enables request/response logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Search requests one fixed-size page of shopping search results.
// pageStart is the 1-based absolute offset of the first item on the page.
//
// Errors are classified for the traversal layer: auth failures map to
// domain.ErrUpstreamPermanent, everything else (network errors, timeouts,
// 429, 5xx) to domain.ErrUpstreamTransient.
func (c *Client) Search(ctx context.Context, query string, pageStart, pageSize int) (*domain.SearchPage, error) {
	id, secret, ok := c.creds.Credentials()
	if !ok {
		return nil, domain.ErrMissingCredentials
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Add("query", query)
	params.Add("display", strconv.Itoa(pageSize))
	params.Add("start", strconv.Itoa(pageStart))
	params.Add("sort", "sim")
	params.Add("exclude", "used:rental")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, searchPath, params.Encode())
	if c.debug {
		log.Printf("[NAVER] GET %s", reqURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", id)
	req.Header.Set("X-Naver-Client-Secret", secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrUpstreamTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		log.Printf("[NAVER] auth failure - status: %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamPermanent, resp.StatusCode)
	default:
		log.Printf("[NAVER] API error - status: %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamTransient, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrUpstreamTransient, err)
	}

	page := mapToSearchPage(&searchResp)
	if c.debug {
		log.Printf("[NAVER] %q start=%d: %d items of %d total", query, pageStart, len(page.Items), page.TotalCount)
	}
	return page, nil
}
