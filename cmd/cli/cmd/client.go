package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shieldhive/pkg/api"
)

// HiveClient handles API calls to the hive controller.
type HiveClient struct {
	BaseURL    string
	Key        string
	HTTPClient *http.Client
}

// NewHiveClient creates a new client with the given base URL and server key.
func NewHiveClient(baseURL, key string) *HiveClient {
	return &HiveClient{
		BaseURL: baseURL,
		Key:     key,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// ListAgents fetches GET /api/v1/agents.
func (c *HiveClient) ListAgents() (*api.AgentsResponse, error) {
	var result api.AgentsResponse
	if err := c.get("/api/v1/agents", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListThreats fetches GET /api/v1/threats.
func (c *HiveClient) ListThreats() (*api.ThreatsResponse, error) {
	var result api.ThreatsResponse
	if err := c.get("/api/v1/threats", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FleetBrief fetches GET /api/v1/ai_brief.
func (c *HiveClient) FleetBrief() (*api.BriefResponse, error) {
	var result api.BriefResponse
	if err := c.get("/api/v1/ai_brief", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats fetches GET /api/v1/stats.
func (c *HiveClient) Stats() (*api.StatsResponse, error) {
	var result api.StatsResponse
	if err := c.get("/api/v1/stats", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateJob sends POST /api/v1/jobs to queue a command for an agent.
func (c *HiveClient) CreateJob(req api.CreateJobRequest) (*api.CreateJobResponse, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/v1/jobs", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	var result api.CreateJobResponse
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HiveClient) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	return c.do(req, out)
}

func (c *HiveClient) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *HiveClient) setHeaders(req *http.Request) {
	if c.Key != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Key))
	}
	req.Header.Add("Content-Type", "application/json")
}
