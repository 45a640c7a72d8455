// Package flickr is the outbound side of the photo cache: a geo search
// against flickr.photos.search and a plain GET for image bytes.
//
// Neither call retries. Retry policy belongs to whoever asked.
package flickr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/tourist/internal/geo"
	"github.com/abelbrown/tourist/internal/logging"
)

const (
	// DefaultEndpoint is the Flickr REST endpoint.
	DefaultEndpoint = "https://api.flickr.com/services/rest"

	searchMethod = "flickr.photos.search"

	// mediumURLExtra asks Flickr to include the medium-size image URL.
	mediumURLExtra = "url_m"

	userAgent = "Tourist/1.0 (https://github.com/abelbrown/tourist)"
)

// Defaults for Options fields left zero.
const (
	DefaultRadius        = 1
	DefaultPerPage       = 50
	DefaultMaxResults    = 4000 // Flickr stops paging geo queries here
	DefaultTimeout       = 30 * time.Second
	DefaultMaxImageBytes = 20 << 20
)

// Descriptor is one search hit before it becomes a stored photo.
type Descriptor struct {
	ID        string
	Title     string
	RemoteURL string
}

// Options tunes a Client. Zero fields take the package defaults.
type Options struct {
	Endpoint          string
	Radius            int
	PerPage           int
	MaxResults        int
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables limiting
	MaxImageBytes     int64
}

// Client talks to Flickr. It holds no per-search state; construct one at
// startup and pass it to whoever needs it.
type Client struct {
	apiKey        string
	endpoint      string
	radius        int
	perPage       int
	maxResults    int
	maxImageBytes int64
	client        *http.Client
	limiter       *rate.Limiter
	intN          func(n int) int
}

// NewClient creates a Client for the given API key.
func NewClient(apiKey string, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		apiKey:        apiKey,
		endpoint:      opts.Endpoint,
		radius:        opts.Radius,
		perPage:       opts.PerPage,
		maxResults:    opts.MaxResults,
		maxImageBytes: opts.MaxImageBytes,
		client:        &http.Client{Timeout: opts.Timeout},
		limiter:       rate.NewLimiter(limit, 1),
		intN:          rand.IntN,
	}
}

// PageCount is the number of pages the service will serve for one query.
func (c *Client) PageCount() int {
	n := c.maxResults / c.perPage
	if n < 1 {
		return 1
	}
	return n
}

// RandomPage picks a page in [1, PageCount()]. Drawn fresh each call, so a
// "new collection" usually shows different photos.
func (c *Client) RandomPage() int {
	return c.intN(c.PageCount()) + 1
}

// Search returns the photos near at. A page <= 0 picks a random page.
//
// The result is either a non-nil slice (possibly empty) or an error, never
// both nil. A page beyond the reported page count yields an empty slice.
func (c *Client) Search(ctx context.Context, at geo.Coordinates, page int) ([]Descriptor, error) {
	if !at.Valid() {
		return nil, fmt.Errorf("flickr: invalid coordinates %v", at)
	}
	if page <= 0 {
		page = c.RandomPage()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "rate limiter", Err: err}
	}

	body, err := c.get(ctx, c.searchURL(at, page), 1<<20)
	if err != nil {
		return nil, err
	}

	return decodeSearch(body, page)
}

// FetchBytes downloads rawURL and returns the body.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, &TransportError{Op: "fetch image", Err: errors.New("empty URL")}
	}
	return c.get(ctx, rawURL, c.maxImageBytes)
}

// searchURL builds the query string for one search page.
func (c *Client) searchURL(at geo.Coordinates, page int) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("method", searchMethod)
	q.Set("extras", mediumURLExtra)
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	q.Set("lat", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(c.radius))
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", strconv.Itoa(page))
	return c.endpoint + "?" + q.Encode()
}

// get performs a GET and classifies the outcome. Bodies larger than limit
// bytes fail with ErrTooLarge.
func (c *Client) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, &TransportError{Op: "request", Err: ctx.Err()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if int64(len(body)) > limit {
		return nil, ErrTooLarge
	}
	if len(body) == 0 {
		return nil, ErrEmptyResponse
	}

	return body, nil
}

// searchResponse is the flickr.photos.search JSON envelope.
type searchResponse struct {
	Stat    string        `json:"stat"`
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Photos  *searchPhotos `json:"photos"`
}

type searchPhotos struct {
	Page    flexInt       `json:"page"`
	Pages   flexInt       `json:"pages"`
	PerPage flexInt       `json:"perpage"`
	Photo   []searchPhoto `json:"photo"`
}

type searchPhoto struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	MediumURL string `json:"url_m"`
}

// decodeSearch turns a response body into descriptors for the requested page.
func decodeSearch(body []byte, page int) ([]Descriptor, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}

	if resp.Stat != "" && resp.Stat != "ok" {
		return nil, &APIError{Code: resp.Code, Message: resp.Message}
	}
	if resp.Photos == nil {
		return nil, &DecodeError{Err: errors.New(`missing "photos" object`)}
	}

	descriptors := make([]Descriptor, 0, len(resp.Photos.Photo))

	// The random page can overshoot a sparse area.
	if page > int(resp.Photos.Pages) {
		return descriptors, nil
	}
	if resp.Photos.Photo == nil {
		return nil, &DecodeError{Err: errors.New(`missing "photo" array`)}
	}

	for i, p := range resp.Photos.Photo {
		if p.ID == "" {
			return nil, &DecodeError{Err: fmt.Errorf("photo %d has no id", i)}
		}
		if p.MediumURL == "" {
			logging.Debug("Skipping photo without url_m", "id", p.ID)
			continue
		}
		descriptors = append(descriptors, Descriptor{
			ID:        p.ID,
			Title:     p.Title,
			RemoteURL: p.MediumURL,
		})
	}

	return descriptors, nil
}

// flexInt accepts both 3 and "3"; Flickr has emitted both over the years.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}
