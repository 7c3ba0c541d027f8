// Package localembed provides a client for the lightweight local embedding
// service: a plain HTTP endpoint accepting {"text": ...} and returning
// {"embedding": [...]}. It emits low-dimensional vectors (384 for the default
// MiniLM model), which the caller pads to the configured dimension.
package localembed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rareminds/skillhub/internal/apperrors"
)

// The local model's context window is smaller than the remote APIs'.
const maxInputRunes = 5000

const defaultTimeout = 30 * time.Second

// Client calls the local embedding service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the embedding service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// errorEnvelope is the provider's error body. All fields are optional; a bare
// non-2xx status without a parseable body is still a classified failure.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateEmbedding posts the text to the service and returns the vector at its
// native dimensionality. Failures are reported as *apperrors.ProviderError
// carrying the HTTP status and, when present, the error envelope fields.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, apperrors.ErrEmptyInput
	}

	if runes := []rune(input); len(runes) > maxInputRunes {
		input = string(runes[:maxInputRunes])
	}

	body, err := json.Marshal(embedRequest{Text: input})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, providerError(resp.StatusCode, respBody)
	}

	var out embedResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &apperrors.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "malformed embedding response: " + err.Error(),
		}
	}

	if len(out.Embedding) == 0 {
		return nil, &apperrors.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "response contains no embedding",
		}
	}

	return out.Embedding, nil
}

// providerError builds a ProviderError from a non-2xx response, preferring the
// structured envelope and falling back to the raw body.
func providerError(statusCode int, body []byte) *apperrors.ProviderError {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &apperrors.ProviderError{
			StatusCode: statusCode,
			Code:       envelope.Error.Code,
			Status:     envelope.Error.Status,
			Message:    envelope.Error.Message,
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}

	return &apperrors.ProviderError{StatusCode: statusCode, Message: msg}
}
