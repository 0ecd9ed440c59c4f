package netlify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Netlify API.
const defaultBaseURL = "https://api.netlify.com/api/v1"

// Client defines the Netlify operations used by the deployer.
type Client interface {
	CreateSite(ctx context.Context, name string) (*Site, error)
	CreateDeploy(ctx context.Context, siteID string, files map[string]string) (*Deploy, error)
	UploadFile(ctx context.Context, deployID, path string, content []byte) error
}

// Site is the response from POST /sites.
type Site struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	SSLURL string `json:"ssl_url"`
}

// PublicURL returns the best public address for the site.
func (s *Site) PublicURL() string {
	if s.SSLURL != "" {
		return s.SSLURL
	}
	if s.URL != "" {
		return s.URL
	}
	return fmt.Sprintf("https://%s.netlify.app", s.Name)
}

// Deploy is the response from POST /sites/{id}/deploys.
type Deploy struct {
	ID       string   `json:"id"`
	Required []string `json:"required"`
}

// APIError is returned when Netlify responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("netlify: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Netlify client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) CreateSite(ctx context.Context, name string) (*Site, error) {
	var site Site
	if err := c.postJSON(ctx, "/sites", map[string]string{"name": name}, &site); err != nil {
		return nil, eris.Wrap(err, "netlify: create site")
	}
	return &site, nil
}

// CreateDeploy registers a deploy manifest keyed by content digest: files
// maps each site path to the SHA-1 of its content. The digest-first protocol
// is what makes Netlify serve the upload with the right content type; a
// naive archive upload comes back as text/plain.
func (c *httpClient) CreateDeploy(ctx context.Context, siteID string, files map[string]string) (*Deploy, error) {
	var deploy Deploy
	body := map[string]any{"files": files}
	if err := c.postJSON(ctx, fmt.Sprintf("/sites/%s/deploys", siteID), body, &deploy); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("netlify: create deploy for site %s", siteID))
	}
	return &deploy, nil
}

func (c *httpClient) UploadFile(ctx context.Context, deployID, path string, content []byte) error {
	url := fmt.Sprintf("%s/deploys/%s/files/%s", c.baseURL, deployID, strings.TrimPrefix(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(content))
	if err != nil {
		return eris.Wrap(err, "netlify: create upload request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	if err := c.do(req, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("netlify: upload %s to deploy %s", path, deployID))
	}
	return nil
}

func (c *httpClient) postJSON(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return eris.Wrap(err, "decode response")
		}
	}

	return nil
}
