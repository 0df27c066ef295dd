package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddingServer(t *testing.T, dims int) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req struct {
			Inputs []string `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		vectors := make([][]float32, len(req.Inputs))
		for i := range vectors {
			vec := make([]float32, dims)
			for j := range vec {
				vec[j] = float32(i + 1)
			}
			vectors[i] = vec
		}
		json.NewEncoder(w).Encode(vectors)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestEmbed(t *testing.T) {
	server, _ := newEmbeddingServer(t, 4)

	client, err := NewClient("huggingface",
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithModel(""),
	)
	require.NoError(t, err)

	vec, err := client.Embed(context.Background(), "dharma is duty")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestEmbedEmptyText(t *testing.T) {
	client, err := NewClient("huggingface", WithAPIKey("test-key"))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, ErrCodeEmptyText, err.(EmbeddingError).Code)
}

func TestEmbedBatchSplitsRequests(t *testing.T) {
	server, calls := newEmbeddingServer(t, 3)

	client, err := NewClient("huggingface",
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithModel(""),
		WithBatchSize(2),
	)
	require.NoError(t, err)

	texts := []string{"one", "two", "three", "four", "five"}
	vectors, err := client.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Equal(t, 3, *calls) // 2 + 2 + 1
}

func TestEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient("huggingface",
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithModel(""),
		WithMaxRetries(0),
	)
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, ErrCodeServerError, err.(EmbeddingError).Code)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("huggingface")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidAPIKey, err.(EmbeddingError).Code)

	_, err = NewClient("no-such-backend", WithAPIKey("k"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidRequest, err.(EmbeddingError).Code)
}
