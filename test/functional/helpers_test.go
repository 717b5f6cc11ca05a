//go:build functional

// Package functional provides black-box tests of the radio directory HTTP API.
package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/radiodir/internal/config"
	"github.com/vyrodovalexey/radiodir/internal/server"
	"github.com/vyrodovalexey/radiodir/internal/store"
)

// Environment variable names for test configuration.
const (
	EnvTestServerHost    = "TEST_SERVER_HOST"
	EnvTestMetricsEnable = "TEST_METRICS_ENABLED"
)

// Default test configuration values.
const (
	DefaultTestHost        = "127.0.0.1"
	DefaultTestTimeout     = 30 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// TestConfig holds test configuration loaded from environment.
type TestConfig struct {
	Host           string
	DatabaseURL    string
	MetricsEnabled bool
}

// LoadTestConfig loads test configuration from environment variables.
// Every server gets its own SQLite file.
func LoadTestConfig(t *testing.T) *TestConfig {
	cfg := &TestConfig{
		Host:        DefaultTestHost,
		DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "radios.sqlite"),
	}

	if host := os.Getenv(EnvTestServerHost); host != "" {
		cfg.Host = host
	}

	if metricsStr := os.Getenv(EnvTestMetricsEnable); metricsStr != "" {
		if enabled, err := strconv.ParseBool(metricsStr); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}

	return cfg
}

// TestServer wraps the server for testing purposes.
type TestServer struct {
	Server  *server.Server
	Store   store.Store
	BaseURL string
	Port    int
	t       *testing.T
	mu      sync.Mutex
	started bool
}

// NewTestServer creates a server on a free port backed by a fresh store.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testCfg := LoadTestConfig(t)

	// Find an available port
	listener, err := net.Listen("tcp", net.JoinHostPort(testCfg.Host, "0"))
	if err != nil {
		t.Fatalf("Failed to find available port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	cfg := &config.Config{
		ServerPort:         port,
		LogLevel:           "error",
		ShutdownTimeout:    DefaultShutdownTimeout,
		MetricsEnabled:     testCfg.MetricsEnabled,
		DatabaseURL:        testCfg.DatabaseURL,
		DBMaxOpenConns:     4,
		CORSAllowedOrigins: []string{"*"},
		RateLimitBurst:     config.DefaultRateLimitBurst,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	stationStore, err := store.Open(ctx, cfg.DatabaseURL, store.Options{MaxOpenConns: cfg.DBMaxOpenConns}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = stationStore.Close()
	})

	return &TestServer{
		Server:  server.New(cfg, zap.NewNop(), stationStore),
		Store:   stationStore,
		BaseURL: fmt.Sprintf("http://%s", net.JoinHostPort(testCfg.Host, strconv.Itoa(port))),
		Port:    port,
		t:       t,
	}
}

// Start starts the test server and waits until it answers.
func (ts *TestServer) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.started {
		return
	}

	go func() {
		if err := ts.Server.Start(); err != nil {
			ts.t.Logf("Server error: %v", err)
		}
	}()

	ts.waitForReady()
	ts.started = true
}

// waitForReady waits for the server to be ready to accept connections.
func (ts *TestServer) waitForReady() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.t.Fatalf("Server did not become ready within timeout")
		case <-ticker.C:
			resp, err := http.Get(ts.BaseURL + "/ready")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return
				}
			}
		}
	}
}

// Stop stops the test server.
func (ts *TestServer) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := ts.Server.Shutdown(ctx); err != nil {
		ts.t.Logf("Server shutdown error: %v", err)
	}

	ts.started = false
}

// StartTestServer creates, starts and registers the shutdown of a server.
func StartTestServer(t *testing.T) (*TestServer, *HTTPClient) {
	t.Helper()
	ts := NewTestServer(t)
	ts.Start()
	t.Cleanup(ts.Stop)
	return ts, NewHTTPClient(t, ts.BaseURL)
}

// HTTPClient provides a configured HTTP client for tests.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	t       *testing.T
}

// NewHTTPClient creates a new HTTP client for testing.
func NewHTTPClient(t *testing.T, baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		baseURL: baseURL,
		t:       t,
	}
}

// Request represents an HTTP request configuration. A string Body is sent
// verbatim; anything else is JSON encoded.
type Request struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do executes an HTTP request and returns the response.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	switch b := req.Body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshaling body: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post performs a POST request.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// StationRequest is the body of create and update requests.
type StationRequest struct {
	Name      string  `json:"name,omitempty"`
	StreamURL string  `json:"stream_url,omitempty"`
	Genre     *string `json:"genre,omitempty"`
	Country   *string `json:"country,omitempty"`
}

// StationResponse mirrors a station as served by the API.
type StationResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	StreamURL string  `json:"stream_url"`
	Genre     *string `json:"genre"`
	Country   *string `json:"country"`
}

// MessageResponse is the body of successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
	ID      *int64 `json:"id"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseStations parses a station list.
func ParseStations(t *testing.T, body []byte) []StationResponse {
	t.Helper()
	var stations []StationResponse
	if err := json.Unmarshal(body, &stations); err != nil {
		t.Fatalf("Failed to parse stations %s: %v", body, err)
	}
	return stations
}

// ParseMessage parses a message response.
func ParseMessage(t *testing.T, body []byte) MessageResponse {
	t.Helper()
	var msg MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("Failed to parse message %s: %v", body, err)
	}
	return msg
}

// AssertStatusCode asserts that the response has the expected status code.
func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

// AssertError asserts the error message of the response.
func AssertError(t *testing.T, resp *Response, expected string) {
	t.Helper()
	var errResp ErrorResponse
	if err := json.Unmarshal(resp.Body, &errResp); err != nil {
		t.Fatalf("Failed to parse error response %s: %v", resp.Body, err)
	}
	if errResp.Error != expected {
		t.Errorf("Expected error %q, got %q", expected, errResp.Error)
	}
}

// CreateStation adds a station and returns its id.
func CreateStation(t *testing.T, ctx context.Context, c *HTTPClient, req StationRequest) int64 {
	t.Helper()
	resp, err := c.Post(ctx, "/add-radio", req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusOK)
	msg := ParseMessage(t, resp.Body)
	if msg.ID == nil {
		t.Fatalf("Create response carries no id: %s", resp.Body)
	}
	return *msg.ID
}

// LogTestStart logs the start of a test.
func LogTestStart(t *testing.T, testID, testName string) {
	t.Helper()
	t.Logf("=== START %s: %s ===", testID, testName)
}

// LogTestEnd logs the end of a test.
func LogTestEnd(t *testing.T, testID string) {
	t.Helper()
	t.Logf("=== END %s ===", testID)
}

func strPtr(v string) *string {
	return &v
}
