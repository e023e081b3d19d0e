package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/SmitBdangar/Morph1x/internal/detect"
	"github.com/SmitBdangar/Morph1x/internal/httputil"
)

// Client drives a remote detection engine over its HTTP API. The replay
// tool uses it to feed recorded frames to a running server instead of an
// in-process engine.
type Client struct {
	baseURL string
	hc      httputil.HTTPClient
}

// NewClient creates a Client for the server at baseURL. A nil hc falls
// back to the standard library HTTP client.
func NewClient(baseURL string, hc httputil.HTTPClient) *Client {
	if hc == nil {
		hc = httputil.NewStandardClient(nil)
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), hc: hc}
}

// Health checks the remote server and returns its health payload.
func (c *Client) Health() (*HealthResponse, error) {
	resp, err := c.hc.Get(c.baseURL + "/api/health")
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}

// PostFrame submits one frame of detections and returns the processed
// result.
func (c *Client) PostFrame(detections []detect.Detection) (*DetectResponse, error) {
	payload, err := json.Marshal(DetectRequest{Detections: detections})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	resp, err := c.hc.Post(c.baseURL+"/api/detect", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("detect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detect returned status %d", resp.StatusCode)
	}
	var result DetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode detect response: %w", err)
	}
	return &result, nil
}

// Reset clears the remote engine's tracking state.
func (c *Client) Reset() error {
	resp, err := c.hc.Post(c.baseURL+"/api/reset", "application/json", nil)
	if err != nil {
		return fmt.Errorf("reset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reset returned status %d", resp.StatusCode)
	}
	return nil
}
