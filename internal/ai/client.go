package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	apiVersion    = "2023-06-01"
)

// Completer is the consumed contract of the language-model provider:
// one prompt in, generated text out.
type Completer interface {
	Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// Client calls the Claude Messages API.
type Client struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewClient creates a client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		client: &http.Client{},
	}
}

// NewClientWithURL creates a client pointed at a non-default endpoint.
// Used by tests.
func NewClientWithURL(apiKey, apiURL string) *Client {
	c := NewClient(apiKey)
	c.apiURL = apiURL
	return c
}

// Complete sends a single-turn prompt to the given model and returns
// the concatenated text of the response.
func (c *Client) Complete(
	ctx context.Context,
	model, prompt string,
	maxTokens int,
) (string, error) {
	reqBody := apiRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []apiMessage{
			{
				Role:    "user",
				Content: []apiContentBlock{{Type: "text", Text: prompt}},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apiError(model, resp.StatusCode, respBody)
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}

	return strings.Join(parts, ""), nil
}

// apiError maps a non-200 response to the error taxonomy. A missing
// model maps to ModelUnavailableError so the gateway can advance its
// model list; everything else stops the list walk.
func apiError(model string, status int, body []byte) error {
	var envelope apiErrorResponse
	message := string(body)
	errType := ""
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
		errType = envelope.Error.Type
	}

	if status == http.StatusNotFound || errType == "not_found_error" {
		return &ModelUnavailableError{Model: model}
	}
	if status == http.StatusBadRequest {
		return &InvalidRequestError{Message: message}
	}

	return fmt.Errorf("model API error (%d): %s", status, message)
}

// --- Messages API types ---

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
