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

func embeddingsServer(t *testing.T, wantAuth, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		var req struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req.Input)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestOpenAIEmbedder(t *testing.T) {
	srv := embeddingsServer(t, "Bearer test-key",
		`{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5,0.1]}],"usage":{"prompt_tokens":2,"total_tokens":2}}`)
	defer srv.Close()

	t.Setenv("TEST_OPENAI_KEY", "test-key")
	e, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", e.ModelName())

	v, err := e.EmbedContent(context.Background(), "hello world")
	require.NoError(t, err)
	require.Len(t, v, 3)
	assert.Equal(t, float32(0.25), v[0])
	assert.Equal(t, float32(-0.5), v[1])
	assert.Equal(t, float32(0.1), v[2])
}

func TestOpenAIEmbedderEmptyData(t *testing.T) {
	srv := embeddingsServer(t, "Bearer test-key",
		`{"object":"list","model":"text-embedding-3-small","data":[],"usage":{"prompt_tokens":2,"total_tokens":2}}`)
	defer srv.Close()

	t.Setenv("TEST_OPENAI_KEY", "test-key")
	e, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "", srv.URL+"/")
	require.NoError(t, err)

	_, err = e.EmbedContent(context.Background(), "hello world")
	assert.ErrorContains(t, err, "no embeddings")
}

func TestOllamaEmbedder(t *testing.T) {
	srv := embeddingsServer(t, "Bearer ollama",
		`{"object":"list","model":"nomic-embed-text","data":[{"object":"embedding","index":0,"embedding":[1,0]}]}`)
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", srv.URL+"/")
	v, err := e.EmbedContent(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, []float32(v))
}

func TestNewOpenAIEmbedderRequiresKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	_, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "", "")
	assert.Error(t, err)
}
