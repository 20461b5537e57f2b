// Package catalog provides the OpenLibrary client for BookLegend.
//
// The client issues three read-only calls (category feed, search, work detail)
// and maps their JSON into the display records used by the rest of the app.
// It does not retry or cache; every failure is reported as ErrFetch.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/booklegend/internal/metrics"
)

// ErrFetch is wrapped by every transport, status or decode failure.
var ErrFetch = errors.New("catalog fetch failed")

const (
	// DefaultBaseURL is the public OpenLibrary API root.
	DefaultBaseURL = "https://openlibrary.org"

	// DefaultCoverHost serves cover images by numeric id.
	DefaultCoverHost = "covers.openlibrary.org"

	userAgent = "BookLegend/1.0 (https://github.com/abelbrown/booklegend)"

	workKeyPrefix = "/works/"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	CoverHost string
	Timeout   time.Duration
	// RequestsPerSecond paces outgoing calls. Zero disables pacing.
	RequestsPerSecond float64
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// Client talks to the OpenLibrary API.
type Client struct {
	http      *http.Client
	baseURL   string
	coverHost string
	limiter   *rate.Limiter // nil when pacing is disabled
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:      opts.HTTPClient,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		coverHost: opts.CoverHost,
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.coverHost == "" {
		c.coverHost = DefaultCoverHost
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// ListByCategory returns one page of the fiction subject feed.
func (c *Client) ListByCategory(ctx context.Context, limit, offset int) ([]BookSummary, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))

	var resp subjectResponse
	if err := c.getJSON(ctx, "subject", "/subjects/fiction.json", q, &resp); err != nil {
		return nil, fmt.Errorf("list fiction offset=%d: %w", offset, err)
	}

	books := make([]BookSummary, 0, len(resp.Works))
	for _, w := range resp.Works {
		author := ""
		if len(w.Authors) > 0 {
			author = w.Authors[0].Name
		}
		books = append(books, c.summary(w.Key, w.Title, author, w.CoverID, w.FirstPublishYear))
	}
	return books, nil
}

// Search returns one page of full-text search results. Pages are 1-based;
// see PageForOffset.
func (c *Client) Search(ctx context.Context, query string, page, limit int) ([]BookSummary, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))

	var resp searchResponse
	if err := c.getJSON(ctx, "search", "/search.json", q, &resp); err != nil {
		return nil, fmt.Errorf("search %q page=%d: %w", query, page, err)
	}

	books := make([]BookSummary, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		author := ""
		if len(d.AuthorName) > 0 {
			author = d.AuthorName[0]
		}
		books = append(books, c.summary(d.Key, d.Title, author, d.CoverI, d.FirstPublishYear))
	}
	return books, nil
}

// Detail returns the full record of a single work.
func (c *Client) Detail(ctx context.Context, id string) (BookDetail, error) {
	var resp workResponse
	if err := c.getJSON(ctx, "work", "/works/"+url.PathEscape(id)+".json", nil, &resp); err != nil {
		return BookDetail{}, fmt.Errorf("work %s: %w", id, err)
	}

	detail := BookDetail{
		Title:       resp.Title,
		Description: NormalizeDescription(resp.Description),
		Pages:       NoData,
		Year:        NoDate,
	}
	if len(resp.Covers) > 0 {
		detail.CoverURL = c.coverURL(resp.Covers[0], coverLarge)
	}
	if resp.NumberOfPages != nil {
		detail.Pages = fmt.Sprint(*resp.NumberOfPages)
	}
	if resp.FirstPublishDate != nil && *resp.FirstPublishDate != "" {
		detail.Year = *resp.FirstPublishDate
	}
	return detail, nil
}

// PageForOffset converts a zero-based item offset into the 1-based page
// number the search endpoint expects.
func PageForOffset(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

// NormalizeDescription flattens the two shapes OpenLibrary uses for
// descriptions: a bare string or an object carrying a "value" field.
func NormalizeDescription(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return NoDescription
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value != nil {
		return *obj.Value
	}

	return NoDescription
}

func (c *Client) summary(key, title, author string, coverID *int64, year *int) BookSummary {
	b := BookSummary{
		ID:         strings.TrimPrefix(key, workKeyPrefix),
		Title:      title,
		AuthorName: author,
		Year:       NoDate,
	}
	if b.AuthorName == "" {
		b.AuthorName = UnknownAuthor
	}
	if coverID != nil {
		b.CoverURL = c.coverURL(*coverID, coverMedium)
	}
	if year != nil {
		b.Year = fmt.Sprint(*year)
	}
	return b
}

type coverSize string

const (
	coverMedium coverSize = "M"
	coverLarge  coverSize = "L"
)

func (c *Client) coverURL(id int64, size coverSize) string {
	return fmt.Sprintf("https://%s/b/id/%d-%s.jpg", c.coverHost, id, size)
}

// getJSON performs a GET and decodes the body into v.
// endpoint labels the request in metrics.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, v any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveCatalogRequest(endpoint, err == nil, time.Since(start))
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrFetch, err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrFetch, err)
	}
	return nil
}
