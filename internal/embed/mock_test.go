package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rareminds/skillhub/internal/apperrors"
)

func TestMockClient_CreateEmbedding_deterministic(t *testing.T) {
	client := NewMockClient(64)

	a, err := client.CreateEmbedding(context.Background(), "golang course")
	require.NoError(t, err)

	b, err := client.CreateEmbedding(context.Background(), "golang course")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	other, err := client.CreateEmbedding(context.Background(), "python course")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestMockClient_CreateEmbedding_unitLength(t *testing.T) {
	client := NewMockClient(128)

	vec, err := client.CreateEmbedding(context.Background(), "some profile text")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockClient_CreateEmbedding_emptyInput(t *testing.T) {
	client := NewMockClient(8)

	_, err := client.CreateEmbedding(context.Background(), "   ")

	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}
