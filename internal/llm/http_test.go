package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendJSON_PostsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		b, _ := io.ReadAll(r.Body)
		var got map[string]any
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, "hello", got["prompt"])
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{"prompt": "hello"}, map[string]string{"X-Api-Key": "secret"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestSendJSON_DecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded for quota metric","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	_, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{}, nil, nil)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
	assert.Equal(t, "Quota exceeded for quota metric", apiErr.Message)
}

func TestDecodeAPIError_PlainBody(t *testing.T) {
	apiErr := decodeAPIError(http.StatusBadGateway, []byte("  upstream exploded \n"))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.False(t, apiErr.RateLimited())
}

func TestDecodeAPIError_OpenAIType(t *testing.T) {
	apiErr := decodeAPIError(http.StatusTooManyRequests, []byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	assert.Equal(t, "requests", apiErr.Status)
	assert.True(t, apiErr.RateLimited())
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://x/y?key=REDACTED", redactURL("https://x/y?key=abc123"))
	assert.Equal(t, "https://x/y", redactURL("https://x/y"))
}
