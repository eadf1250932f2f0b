package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestMockClient_Deterministic(t *testing.T) {
	c := NewMockClient()
	ctx := context.Background()

	a, err := c.Embed(ctx, "postgres vector index")
	require.NoError(t, err)
	b, _ := c.Embed(ctx, "Postgres vector INDEX")
	other, _ := c.Embed(ctx, "banana bread recipe")

	assert.Len(t, a, Dimensions)
	assert.InDelta(t, 1.0, dot(a, a), 1e-5)
	assert.InDelta(t, 1.0, dot(a, b), 1e-5)
	assert.Less(t, dot(a, other), 0.5)
}

func TestMockClient_EmptyText(t *testing.T) {
	v, err := NewMockClient().Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, 0.0, dot(v, v))
}

func TestOpenAIClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"), r.URL.Path)
		var req struct {
			Model      string `json:"model"`
			Input      string `json:"input"`
			Dimensions int    `json:"dimensions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Input)
		assert.Equal(t, "text-embedding-3-small", req.Model)
		assert.Equal(t, Dimensions, req.Dimensions)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",` +
			`"data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],` +
			`"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	v, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, v)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with base url", Config{Provider: ProviderOpenAI, APIKey: "sk", BaseURL: "http://localhost:8081/v1"}, false},
		{"mock", Config{Provider: ProviderMock}, false},
		{"unknown", Config{Provider: "voyage", APIKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}
