package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is returned for any response with status >= 400.
type APIError struct {
	StatusCode int
	Errors     []ErrorObject
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
	}
	details := make([]string, len(e.Errors))
	for i, obj := range e.Errors {
		details[i] = obj.Title + " - " + obj.Detail
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, strings.Join(details, "; "))
}

// Client is a REST client for the turbo-export API
type Client struct {
	baseURL        string
	httpClient     *http.Client
	identityHeader string
}

// NewClient creates a client for the API rooted at baseURL (for example
// http://localhost:8000/api/v1). identityHeader is sent as x-rh-identity.
func NewClient(baseURL, identityHeader string) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		identityHeader: identityHeader,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) createRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-rh-identity", c.identityHeader)

	return req, nil
}

// doRequest executes an HTTP request and decodes the response into result
func (c *Client) doRequest(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Errors = errResp.Errors
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// CreateExport runs a single-file export on the server
func (c *Client) CreateExport(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	return c.postExport(ctx, "/exports", req)
}

// CreateSplitZip runs a split+zip export on the server
func (c *Client) CreateSplitZip(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	return c.postExport(ctx, "/exports/split-zip", req)
}

func (c *Client) postExport(ctx context.Context, endpoint string, body ExportRequest) (*ExportResponse, error) {
	req, err := c.createRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	var result ExportResponse
	if err := c.doRequest(req, &result); err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}

	return &result, nil
}

// ListRuns retrieves one page of the caller's export runs
func (c *Client) ListRuns(ctx context.Context, params *ListParams) (*RunListResponse, error) {
	endpoint := "/runs"

	if params != nil {
		queryParams := url.Values{}
		if params.Limit != nil {
			queryParams.Add("limit", strconv.Itoa(*params.Limit))
		}
		if params.Offset != nil {
			queryParams.Add("offset", strconv.Itoa(*params.Offset))
		}
		if len(queryParams) > 0 {
			endpoint += "?" + queryParams.Encode()
		}
	}

	req, err := c.createRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result RunListResponse
	if err := c.doRequest(req, &result); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return &result, nil
}

// GetRun retrieves a single export run
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	req, err := c.createRequest(ctx, http.MethodGet, "/runs/"+url.PathEscape(runID), nil)
	if err != nil {
		return nil, err
	}

	var result Run
	if err := c.doRequest(req, &result); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &result, nil
}
