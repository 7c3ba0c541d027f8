// Package embed defines the embedding client interface and the resilience
// wrappers around it: retry with exponential backoff on throttling, a
// token-bucket limited client, dimension normalization, and a deterministic
// mock for tests and local development.
package embed

import "context"

// Client generates an embedding vector for a text.
// Implemented by provider-specific clients (e.g. OpenAI, the local embedding
// service) and by the wrappers in this package.
type Client interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}
