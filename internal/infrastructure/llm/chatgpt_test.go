package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FieldOps/internal/config"
)

func TestChatGPTGenerate(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"line\":\"hi\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewChatGPTClient(config.ChatGPTConfig{Endpoint: srv.URL, Model: "gpt-test", APIKey: "key-1"})
	text, err := client.Generate(context.Background(), "write an opener")
	require.NoError(t, err)
	assert.Equal(t, `{"line":"hi"}`, text)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "write an opener", got.Messages[1].Content)
}

func TestChatGPTStatusErrors(t *testing.T) {
	t.Parallel()

	cases := map[int]bool{
		http.StatusTooManyRequests:    true,
		http.StatusServiceUnavailable: true,
		http.StatusUnauthorized:       false,
	}
	for code, temporary := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))

		client := NewChatGPTClient(config.ChatGPTConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
		_, err := client.Generate(context.Background(), "p")
		srv.Close()

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr, "code %d", code)
		assert.Equal(t, temporary, statusErr.Temporary(), "code %d", code)
	}
}

func TestChatGPTMisconfigured(t *testing.T) {
	t.Parallel()

	_, err := NewChatGPTClient(config.ChatGPTConfig{}).Generate(context.Background(), "p")
	assert.Error(t, err)
}
