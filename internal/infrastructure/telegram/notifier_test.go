package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "token-1", "42")
	require.NoError(t, n.PublishDigest(context.Background(), "Good morning, Dana!"))
	assert.Equal(t, "/bottoken-1/sendMessage", gotPath)
	assert.Equal(t, "42", gotChat)
	assert.Equal(t, "Good morning, Dana!", gotText)
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusForbidden)
	}))
	defer srv.Close()

	assert.Error(t, NewNotifier(srv.URL, "token", "42").PublishDigest(context.Background(), "x"), "403")
	assert.Error(t, NewNotifier(srv.URL, "", "").PublishDigest(context.Background(), "x"), "misconfigured")
}
