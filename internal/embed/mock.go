package embed

import (
	"context"
	"crypto/sha256"
	"math"
	"strings"

	"github.com/rareminds/skillhub/internal/apperrors"
)

// MockClient implements Client for tests and local development.
// It generates deterministic unit vectors from the input text hash, so the
// same text always embeds to the same vector.
type MockClient struct {
	dimensions int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock client emitting vectors of the given dimension.
func NewMockClient(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// CreateEmbedding returns a deterministic embedding derived from the text hash.
func (c *MockClient) CreateEmbedding(_ context.Context, input string) ([]float32, error) {
	if strings.TrimSpace(input) == "" {
		return nil, apperrors.ErrEmptyInput
	}

	hash := sha256.Sum256([]byte(input))
	vec := make([]float32, c.dimensions)

	for i := range vec {
		// Hash bytes used cyclically, mapped into [-1, 1].
		vec[i] = (float32(hash[i%len(hash)]) / 127.5) - 1.0
	}

	return unitVector(vec), nil
}

// unitVector normalizes v to unit length; a zero vector is returned unchanged.
func unitVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	magnitude := float32(math.Sqrt(sum))
	if magnitude == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = val / magnitude
	}

	return out
}
