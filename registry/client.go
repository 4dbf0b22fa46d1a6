// Package registry is the HTTP client for the schema registry, the sandbox
// management API, the edge configuration API and the tags (reactor) API.
//
// Every call takes a context. A cancelled call returns the context error
// unchanged so callers can recognize it with alloy.IsAbort; other failures
// are wrapped in *alloy.ReportableError.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
)

const (
	DefaultBaseURL    = "https://platform.adobe.io"
	DefaultReactorURL = "https://reactor.adobe.io"
	DefaultEdgeURL    = "https://edge.adobe.io"
)

var (
	ErrNotFound           = errors.New("registry: not found")
	ErrInvalidAccessToken = errors.New("registry: invalid access token")
	ErrForbidden          = errors.New("registry: forbidden")
)

// Config holds the endpoints and credentials of a Client.
type Config struct {
	BaseURL     string
	ReactorURL  string
	EdgeURL     string
	OrgID       string
	APIKey      string
	AccessToken string
	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client
}

// Client talks to the platform APIs. It is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// New returns a Client. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ReactorURL == "" {
		cfg.ReactorURL = DefaultReactorURL
	}
	if cfg.EdgeURL == "" {
		cfg.EdgeURL = DefaultEdgeURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.ReactorURL = strings.TrimRight(cfg.ReactorURL, "/")
	cfg.EdgeURL = strings.TrimRight(cfg.EdgeURL, "/")
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: cfg, http: hc, log: log.Named("registry")}
}

// Page is one page of a paginated listing. NextPage is empty on the last
// page; otherwise it is passed back to the same Fetch call.
type Page[T any] struct {
	Results  []T
	NextPage string
}

type request struct {
	url     string
	accept  string
	sandbox string
	query   url.Values
}

// get performs a GET request and decodes a JSON response body into out.
func (c *Client) get(ctx context.Context, r request, out any) error {
	u := r.url
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("registry: create request: %w", err)
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("x-gw-ims-org-id", c.cfg.OrgID)
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	if r.sandbox != "" {
		req.Header.Set("x-sandbox-name", r.sandbox)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &alloy.ReportableError{
			Message:     "Failed to reach the server",
			Originating: fmt.Errorf("registry: GET %s: %w", r.url, err),
		}
	}
	defer resp.Body.Close()
	c.log.Debug("request",
		zap.String("url", r.url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return statusError(resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &alloy.ReportableError{
			Message:     "The server returned an unexpected response",
			Originating: fmt.Errorf("registry: decode %s: %w", r.url, err),
		}
	}
	return nil
}

func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	switch status {
	case http.StatusUnauthorized:
		return &alloy.ReportableError{
			Message:            "Your access token is invalid or expired",
			Originating:        fmt.Errorf("%w (status %d): %s", ErrInvalidAccessToken, status, detail),
			AdditionalInfoURL:  "https://developer.adobe.com/developer-console/docs/guides/authentication/",
			AdditionalInfoText: "Learn how to obtain an access token",
		}
	case http.StatusForbidden:
		return &alloy.ReportableError{
			Message:            "You do not have access to this resource",
			Originating:        fmt.Errorf("%w (status %d): %s", ErrForbidden, status, detail),
			AdditionalInfoURL:  "https://experienceleague.adobe.com/docs/experience-platform/access-control/home.html",
			AdditionalInfoText: "Learn more about permissions",
		}
	case http.StatusNotFound:
		return &alloy.ReportableError{
			Message:     "The requested resource was not found",
			Originating: fmt.Errorf("%w (status %d): %s", ErrNotFound, status, detail),
		}
	}
	return &alloy.ReportableError{
		Message:     "The server returned an error",
		Originating: fmt.Errorf("registry: unexpected status %d: %s", status, detail),
	}
}
