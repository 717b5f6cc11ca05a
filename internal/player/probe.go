package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPProber reads a stream's content type with a HEAD request.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober. A nil client means a client without timeout.
func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPProber{client: client}
}

// Probe returns the Content-Type header of the stream, whatever the status
// code of the answer.
func (p *HTTPProber) Probe(ctx context.Context, streamURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streamURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", streamURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.Header.Get("Content-Type"), nil
}
