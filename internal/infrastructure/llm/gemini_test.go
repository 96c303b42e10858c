package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FieldOps/internal/config"
)

func TestGeminiGenerate(t *testing.T) {
	t.Parallel()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"briefing\":\"ok\"}"}]}}]}`))
	}))
	defer srv.Close()

	gen, err := NewGeminiGenerator(context.Background(), config.GeminiConfig{APIKey: "k", Model: "gemini-test", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), "brief me")
	require.NoError(t, err)
	assert.Equal(t, `{"briefing":"ok"}`, text)
	assert.Contains(t, path, "gemini-test:generateContent")
}

func TestGeminiMapsAPIErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	gen, err := NewGeminiGenerator(context.Background(), config.GeminiConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), "p")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.Code)
	assert.True(t, statusErr.Temporary())
}

func TestGeminiRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGeminiGenerator(context.Background(), config.GeminiConfig{}, nil)
	assert.Error(t, err)
}
