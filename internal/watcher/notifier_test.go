package watcher

import (
	"buildwatch/internal/structures"
	"buildwatch/internal/testutil"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordNotifier_PostsContent(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logger := &testutil.MockLogger{}
	n := NewNotifier(&structures.Config{Notifier: structures.NotifierConfig{DiscordWebhookURL: srv.URL}}, logger)
	n.Notify(context.Background(), "Watcher error for title g1: boom")

	require.NotNil(t, got)
	assert.JSONEq(t, `{"content":"Watcher error for title g1: boom"}`, string(got))
	assert.Empty(t, logger.Logs)
}

func TestDiscordNotifier_LogsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	logger := &testutil.MockLogger{}
	n := NewNotifier(&structures.Config{Notifier: structures.NotifierConfig{DiscordWebhookURL: srv.URL}}, logger)
	n.Notify(context.Background(), "x")

	assert.True(t, logger.HasEntry("error", "unexpected status 429"))
}

func TestNewNotifier_NoopWithoutURL(t *testing.T) {
	n := NewNotifier(&structures.Config{}, &testutil.MockLogger{})
	_, ok := n.(*noopNotifier)
	assert.True(t, ok)
	n.Notify(context.Background(), "ignored")
}
