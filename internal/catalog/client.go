package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"doorsmith/internal/logging"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 2 << 20

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues product searches against the search API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a search client.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}

// BaseURL returns the endpoint this client searches.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchURL builds the request URL for a query, preserving any query
// parameters already present on the base URL.
func (c *Client) SearchURL(query string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search base URL %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(ResultLimit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Search runs one search request. A blank query returns ErrEmptyQuery
// without touching the network. An empty product list is not an error.
func (c *Client) Search(ctx context.Context, query string) ([]RawProduct, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	target, err := c.SearchURL(query)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	timer := logging.StartTimer(logging.CategoryCatalog, "search "+strconv.Quote(query))
	defer timer.StopWithThreshold(3 * time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	logging.CatalogDebug("GET %s", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.CatalogError("Search %q failed: %v", query, err)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.CatalogError("Search %q returned HTTP %d", query, resp.StatusCode)
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logging.CatalogError("Search %q: reading body failed: %v", query, err)
		return nil, &NetworkError{Err: err}
	}

	products, err := decodeEnvelope(body)
	if err != nil {
		logging.CatalogError("Search %q: %v", query, err)
		return nil, err
	}

	logging.Catalog("Search %q returned %d product(s)", query, len(products))
	return products, nil
}
