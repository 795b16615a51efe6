// Package platform wraps the hosting platform's integration API. The client
// is constructed once and passed explicitly to the services that need it,
// keeping the boundary with the external platform visible and testable.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const invokeTimeout = 60 * time.Second

// InvokeLLMRequest describes one content-generation call. ResponseJSONSchema
// constrains the shape of the model's answer; callers still validate the
// result before trusting it.
type InvokeLLMRequest struct {
	Prompt                 string          `json:"prompt"`
	AddContextFromInternet bool            `json:"add_context_from_internet"`
	ResponseJSONSchema     json.RawMessage `json:"response_json_schema,omitempty"`
}

// LLMInvoker is the capability the content service depends on.
type LLMInvoker interface {
	InvokeLLM(ctx context.Context, req InvokeLLMRequest) (json.RawMessage, error)
}

// Client calls the platform's integration endpoints over HTTP.
type Client struct {
	baseURL    string
	appID      string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a platform client for the given app.
func NewClient(baseURL, appID, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		appID:   appID,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: invokeTimeout,
		},
	}
}

// InvokeLLM runs a content-generation request and returns the raw JSON result.
func (c *Client) InvokeLLM(ctx context.Context, req InvokeLLMRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoke-llm request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/apps/%s/integrations/invoke-llm", c.baseURL, c.appID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build invoke-llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api_key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoke-llm request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoke-llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invoke-llm returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}
