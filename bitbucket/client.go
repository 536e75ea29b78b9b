package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// restSuffix is the required path suffix of the server's REST root.
	restSuffix = "/rest"
	// apiVersion is the versioned API segment appended to the REST root.
	apiVersion = "api/latest"

	defaultTimeout  = 30 * time.Second
	defaultPageSize = 50
)

// Client wraps the Bitbucket Data Center REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
	pageSize   int
}

// NewClient creates a new Bitbucket client. The server URL must end with
// /rest (trailing slashes are stripped); the derived API root is
// <server>/api/latest. No network I/O happens here.
func NewClient(serverURL, token string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if !strings.HasSuffix(serverURL, restSuffix) {
		return nil, fmt.Errorf("%w: must end with '%s', got: %s", ErrInvalidServerURL, restSuffix, serverURL)
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	client := &Client{
		baseURL:    serverURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
		pageSize:   defaultPageSize,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// apiRoot returns the versioned API root derived from the base URL.
func (c *Client) apiRoot() string {
	return fmt.Sprintf("%s/%s", c.baseURL, apiVersion)
}

// Request performs a single API call and returns the decoded response body.
// An empty body decodes to an empty map; a non-JSON body is returned as
// {"raw": <text>}. Responses with status >= 400 and transport failures are
// returned as *RequestError.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, jsonBody any) (map[string]any, error) {
	requestURL := fmt.Sprintf("%s/%s", c.apiRoot(), strings.TrimPrefix(path, "/"))
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var body io.Reader
	if jsonBody != nil {
		encoded, err := json.Marshal(jsonBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json;charset=UTF-8")
	if jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", requestURL).
		Msg("Making Bitbucket API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: method, URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: method, URL: requestURL, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        requestURL,
			Message:    extractErrorMessage(respBody),
		}
	}

	if len(respBody) == 0 {
		return map[string]any{}, nil
	}

	// Some endpoints return plain text on 2xx; keep it robust
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return map[string]any{"raw": string(respBody)}, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s %s: %w", method, requestURL, err)
	}
	return decoded, nil
}

// extractErrorMessage pulls a human-readable message out of an error body.
// Bitbucket usually returns {"errors":[{"message":"..."}]}, sometimes
// {"message":"..."}. Any decode failure yields an empty message; the status
// code alone classifies the error.
func extractErrorMessage(body []byte) string {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if len(envelope.Errors) > 0 {
		return envelope.Errors[0].Message
	}
	return envelope.Message
}
