package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAllNoChannels(t *testing.T) {
	sender := NewSender(Config{Log: zerolog.Nop()})

	assert.False(t, sender.Configured())
	err := sender.SendAll(context.Background(), "title", "content")
	require.Error(t, err)
}

func TestSendAllPushChannel(t *testing.T) {
	var gotPath, gotTitle, gotDesp string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotTitle = r.FormValue("title")
		gotDesp = r.FormValue("desp")
	}))
	defer srv.Close()

	sender := NewSender(Config{
		PushBaseURL: srv.URL,
		PushKey:     "SCT123",
		Log:         zerolog.Nop(),
	})

	require.NoError(t, sender.SendAll(context.Background(), "Daily Report", "all good"))
	assert.Equal(t, "/SCT123.send", gotPath)
	assert.Equal(t, "Daily Report", gotTitle)
	assert.Equal(t, "all good", gotDesp)
}

func TestSendAllCorpChatPayload(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
	}))
	defer srv.Close()

	sender := NewSender(Config{CorpChatWebhook: srv.URL, Log: zerolog.Nop()})
	require.NoError(t, sender.SendAll(context.Background(), "Report", "body text"))

	assert.Equal(t, "markdown", payload["msgtype"])
	markdown := payload["markdown"].(map[string]interface{})
	assert.Contains(t, markdown["content"], "Report")
	assert.Contains(t, markdown["content"], "body text")
}

func TestSendAllDingTalkPayload(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
	}))
	defer srv.Close()

	sender := NewSender(Config{DingTalkWebhook: srv.URL, Log: zerolog.Nop()})
	require.NoError(t, sender.SendAll(context.Background(), "Report", "body"))

	markdown := payload["markdown"].(map[string]interface{})
	assert.Equal(t, "Report", markdown["title"])
	assert.Contains(t, markdown["text"], "## Report")
}

func TestCorpChatTruncatesOnRuneBoundary(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
	}))
	defer srv.Close()

	sender := NewSender(Config{CorpChatWebhook: srv.URL, Log: zerolog.Nop()})

	// Three-byte runes guarantee the byte cap lands mid-rune
	content := strings.Repeat("基", 2000)
	require.NoError(t, sender.SendAll(context.Background(), "报告", content))

	text := payload["markdown"].(map[string]interface{})["content"].(string)
	assert.LessOrEqual(t, len(text), corpChatContentLimit)
	assert.True(t, utf8.ValidString(text), "truncation must not split a rune")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	assert.Equal(t, "基", truncateRunes("基金", 4), "cap inside the second rune backs off to the first")
	assert.Equal(t, "", truncateRunes("基", 2))
}

func TestSendAllAnySuccessWins(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rejected", http.StatusForbidden)
	}))
	defer failing.Close()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ok.Close()

	sender := NewSender(Config{
		CorpChatWebhook: failing.URL,
		DingTalkWebhook: ok.URL,
		Log:             zerolog.Nop(),
	})

	assert.NoError(t, sender.SendAll(context.Background(), "t", "c"))
}

func TestSendAllEveryChannelFails(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rejected", http.StatusInternalServerError)
	}))
	defer failing.Close()

	sender := NewSender(Config{
		CorpChatWebhook: failing.URL,
		DingTalkWebhook: failing.URL,
		Log:             zerolog.Nop(),
	})

	err := sender.SendAll(context.Background(), "t", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 notification channels failed")
}
