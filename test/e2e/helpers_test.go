//go:build e2e

package e2e_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/vyrodovalexey/radiodir/internal/client"
	"github.com/vyrodovalexey/radiodir/internal/model"
)

// Environment variable names for E2E test configuration.
const (
	EnvServerURL = "INTEGRATION_SERVER_URL"
)

// Default configuration values.
const (
	DefaultServerURL = "http://localhost:3001"
	DefaultTimeout   = 15 * time.Second
)

// getEnvOrDefault returns the value of the environment variable
// identified by key, or defaultVal if the variable is not set.
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// e2eServerURL returns the base URL of the server under test.
func e2eServerURL() string {
	return getEnvOrDefault(EnvServerURL, DefaultServerURL)
}

// skipIfServerUnavailable checks whether the server is reachable
// and skips the test if it is not.
func skipIfServerUnavailable(t *testing.T) {
	t.Helper()

	base := e2eServerURL()
	httpClient := &http.Client{Timeout: 3 * time.Second}
	resp, err := httpClient.Get(base + "/health")
	if err != nil {
		t.Skipf("Server unavailable at %s: %v", base, err)
	}
	resp.Body.Close()
}

// newAPIClient returns a station API client for the server under test.
func newAPIClient() *client.Client {
	return client.NewClient(e2eServerURL(), client.WithTimeout(DefaultTimeout))
}

// testContext returns a context bounded by DefaultTimeout.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// uniqueName returns a station name that will not collide with data
// already present on a shared server.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

// addStation creates a station and registers its removal with t.Cleanup.
func addStation(t *testing.T, c *client.Client, in *model.StationInput) int64 {
	t.Helper()

	id, err := c.AddStation(testContext(t), in)
	if err != nil {
		t.Fatalf("AddStation() error = %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		if err := c.DeleteStation(ctx, id); err != nil && !client.IsNotFound(err) {
			t.Logf("cleanup: deleting station %d: %v", id, err)
		}
	})

	return id
}

// findStation looks a station up in the full listing.
func findStation(t *testing.T, c *client.Client, id int64) (model.Station, bool) {
	t.Helper()

	stations, err := c.ListStations(testContext(t))
	if err != nil {
		t.Fatalf("ListStations() error = %v", err)
	}
	for _, s := range stations {
		if s.ID == id {
			return s, true
		}
	}
	return model.Station{}, false
}

// apiError unwraps err into an *client.APIError or fails the test.
func apiError(t *testing.T, err error) *client.APIError {
	t.Helper()

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *client.APIError, got %T: %v", err, err)
	}
	return apiErr
}

// doRequest performs a raw HTTP request and returns the response and body.
func doRequest(t *testing.T, method, path string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(testContext(t), method, e2eServerURL()+path, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := (&http.Client{Timeout: DefaultTimeout}).Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return resp, body
}
