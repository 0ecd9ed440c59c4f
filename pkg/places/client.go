package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client performs Google Places API operations.
type Client interface {
	Details(ctx context.Context, placeID string) (*DetailsResponse, error)
	PhotoURL(photoReference string, maxWidth int) string
}

// DetailsResponse is the response from Place Details.
type DetailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       Result `json:"result"`
}

// Result holds the requested place fields.
type Result struct {
	Reviews []Review `json:"reviews"`
	Photos  []Photo  `json:"photos"`
}

// Review is a single user review.
type Review struct {
	AuthorName              string `json:"author_name"`
	Rating                  int    `json:"rating"`
	Text                    string `json:"text"`
	RelativeTimeDescription string `json:"relative_time_description"`
}

// Photo is a photo reference; turn it into a fetchable URL via PhotoURL.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "reviews,photos")
	q.Set("language", "nl")
	q.Set("reviews_sort", "most_relevant")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/details/json?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result DetailsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}

	return &result, nil
}

// PhotoURL builds a directly fetchable image URL for a photo reference.
func (c *httpClient) PhotoURL(photoReference string, maxWidth int) string {
	q := url.Values{}
	q.Set("maxwidth", fmt.Sprintf("%d", maxWidth))
	q.Set("photo_reference", photoReference)
	q.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + q.Encode()
}
