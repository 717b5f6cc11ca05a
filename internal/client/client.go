// Package client is a typed Go client for the radio directory HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vyrodovalexey/radiodir/internal/model"
)

// DefaultUserAgent identifies the client to the directory service.
const DefaultUserAgent = "radiodir-client/1.0"

// APIError is returned for every non-2xx answer of the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to a radio directory service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the service at baseURL. Requests have no
// timeout unless WithTimeout is given.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets a timeout for every request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// ListStations returns every station in the directory.
func (c *Client) ListStations(ctx context.Context) ([]model.Station, error) {
	var stations []model.Station
	if err := c.do(ctx, http.MethodGet, "/radios", nil, &stations); err != nil {
		return nil, err
	}
	if stations == nil {
		stations = []model.Station{}
	}
	return stations, nil
}

// GetStation returns a single station.
func (c *Client) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	var station model.Station
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/radios/%d", id), nil, &station); err != nil {
		return nil, err
	}
	return &station, nil
}

// AddStation creates a station and returns the id assigned by the service.
func (c *Client) AddStation(ctx context.Context, in *model.StationInput) (int64, error) {
	var resp model.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/add-radio", in, &resp); err != nil {
		return 0, err
	}
	if resp.ID == nil {
		return 0, fmt.Errorf("add station: response carries no id")
	}
	return *resp.ID, nil
}

// UpdateStation replaces all mutable fields of a station.
func (c *Client) UpdateStation(ctx context.Context, id int64, in *model.StationInput) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/update-radio/%d", id), in, nil)
}

// DeleteStation removes a station.
func (c *Client) DeleteStation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/delete-radio/%d", id), nil, nil)
}

// do performs a request and decodes a successful answer into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError builds an APIError from the service's {"error": "..."} body,
// falling back to the raw body text.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp model.ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
