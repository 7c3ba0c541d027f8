package localembed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rareminds/skillhub/internal/apperrors"
)

func TestClient_CreateEmbedding_success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req.Text)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2}})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	vec, err := client.CreateEmbedding(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
}

func TestClient_CreateEmbedding_throttledWithEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.CreateEmbedding(context.Background(), "hello")

	require.Error(t, err)

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.Equal(t, "RESOURCE_EXHAUSTED", pe.Status)
	assert.Equal(t, "quota exceeded", pe.Message)
	assert.True(t, apperrors.IsRateLimited(err))
}

func TestClient_CreateEmbedding_serverErrorRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model crashed"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.CreateEmbedding(context.Background(), "hello")

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode)
	assert.Equal(t, "model crashed", pe.Message)
	assert.False(t, apperrors.IsRateLimited(err))
}

func TestClient_CreateEmbedding_emptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.CreateEmbedding(context.Background(), "hello")

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "no embedding")
}

func TestClient_CreateEmbedding_emptyInput(t *testing.T) {
	client := NewClient("http://localhost:1")

	_, err := client.CreateEmbedding(context.Background(), "  \n ")

	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}

func TestClient_CreateEmbedding_longInputTruncated(t *testing.T) {
	var gotLen int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotLen = len([]rune(req.Text))

		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1}})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	long := make([]rune, maxInputRunes+500)
	for i := range long {
		long[i] = 'a'
	}

	_, err := client.CreateEmbedding(context.Background(), string(long))

	require.NoError(t, err)
	assert.Equal(t, maxInputRunes, gotLen)
}
