package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haskel/studycost/internal/server"
)

// Client is an HTTP client for the studycost API
type Client struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
}

// NewClient creates a new API client
func NewClient() *Client {
	return &Client{
		baseURL: GetServerURL(),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		user:     user,
		password: password,
	}
}

// Get performs a GET request
func (c *Client) Get(path string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}

	return c.do(req)
}

// Post performs a POST request with JSON body
func (c *Client) Post(path string, body any) ([]byte, int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, 0, err
		}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	// Add auth if provided
	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return data, resp.StatusCode, nil
}

// Health checks if server is running
func (c *Client) Health() error {
	_, status, err := c.Get("/health")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d", status)
	}
	return nil
}

// APIError is a non-2xx response with the server's error body.
type APIError struct {
	Status int
	server.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return e.Message
}

// getJSON fetches path into v, turning error statuses into *APIError.
func (c *Client) getJSON(path string, v any) error {
	data, status, err := c.Get(path)
	if err != nil {
		return err
	}
	return decodeResponse(data, status, v)
}

func decodeResponse(data []byte, status int, v any) error {
	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status}
		json.Unmarshal(data, &apiErr.ErrorResponse)
		return apiErr
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Estimate submits input, remembering the result in sessionID when it is set.
func (c *Client) Estimate(input map[string]any, sessionID string) (*server.EstimateResponse, error) {
	path := "/v1/estimate"
	if sessionID != "" {
		path = "/v1/sessions/" + sessionID + "/estimate"
	}

	data, status, err := c.Post(path, input)
	if err != nil {
		return nil, err
	}

	var resp server.EstimateResponse
	if err := decodeResponse(data, status, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Schema fetches the form schema.
func (c *Client) Schema() (*server.SchemaResponse, error) {
	var resp server.SchemaResponse
	if err := c.getJSON("/v1/schema", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
