package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_NoAPIKeyReturnsMock(t *testing.T) {
	t.Parallel()

	c := NewGeminiClient("", "", "", logging.Discard())
	out := c.Generate(context.Background(), "Carrots")
	assert.Equal(t, MockRecipe("Carrots"), out)
	assert.Contains(t, out, "Wash the Carrots.")
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	var got GeminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"1. Roast "},{"text":"the carrots."}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", srv.URL, "", logging.Discard())
	out := c.Generate(context.Background(), "Carrots")

	assert.Equal(t, "1. Roast the carrots.", out)
	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Equal(t, Prompt("Carrots"), got.Contents[0].Parts[0].Text)
}

func TestGenerate_Fallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "api error", status: http.StatusForbidden, body: `{"error":"denied"}`, want: FailureText},
		{name: "bad json", status: http.StatusOK, body: `{`, want: FailureText},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, want: EmptyText},
		{name: "blank text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, want: EmptyText},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewGeminiClient("secret", srv.URL, "", logging.Discard())
			assert.Equal(t, tt.want, c.Generate(context.Background(), "Milk"))
		})
	}
}

func TestGenerate_UnreachableServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	var logs bytes.Buffer
	c := NewGeminiClient("super-secret-key", url, "", logging.NewWithWriter(&logs, "debug"))
	assert.Equal(t, FailureText, c.Generate(context.Background(), "Milk"))

	assert.Contains(t, logs.String(), "recipe_generate_error")
	assert.NotContains(t, logs.String(), "super-secret-key")
}
