// Package openai provides a thin wrapper around the official OpenAI Go SDK for embeddings.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/rareminds/skillhub/internal/apperrors"
)

// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
var ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")

// Input longer than this is truncated before the request; text-embedding-3-small
// rejects inputs past its token window.
const maxInputRunes = 8000

// Client calls the OpenAI embeddings API via the official SDK.
// The returned vector keeps the model's native dimensionality (or the
// requested one when WithDimensions is set); callers normalize it before
// persisting.
type Client struct {
	sdk        openaisdk.Client
	dimensions int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions asks the API to emit vectors of the given dimension.
// Zero leaves the model's native dimensionality in place.
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// NewClient creates an OpenAI embeddings client using the official SDK.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		sdk: openaisdk.NewClient(option.WithAPIKey(apiKey)),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// CreateEmbedding returns the embedding vector for the given text using
// text-embedding-3-small. API failures are translated into
// *apperrors.ProviderError so callers can classify throttling.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, apperrors.ErrEmptyInput
	}

	if runes := []rune(input); len(runes) > maxInputRunes {
		input = string(runes[:maxInputRunes])
	}

	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model: openaisdk.EmbeddingModelTextEmbedding3Small,
	}
	if c.dimensions > 0 {
		params.Dimensions = param.NewOpt(int64(c.dimensions))
	}

	resp, err := c.sdk.Embeddings.New(ctx, params)
	if err != nil {
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) {
			return nil, &apperrors.ProviderError{
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
			}
		}

		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}
