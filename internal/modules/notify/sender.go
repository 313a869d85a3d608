// Package notify pushes report summaries to webhook channels. Channels are
// independent: every configured channel is attempted, and delivery counts as
// successful when at least one accepts the message.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 10 * time.Second

	// corpChatContentLimit is the documented markdown size cap for
	// enterprise chat webhooks
	corpChatContentLimit = 4096
)

// Config holds notification channel configuration. Empty values disable the
// corresponding channel.
type Config struct {
	PushBaseURL     string // key-based push service
	PushKey         string
	CorpChatWebhook string
	DingTalkWebhook string
	Timeout         time.Duration
	Log             zerolog.Logger
}

// channel is one delivery target
type channel struct {
	name string
	send func(ctx context.Context, title, content string) error
}

// Sender fans a message out to the configured channels
type Sender struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// NewSender creates a new notification sender
func NewSender(cfg Config) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    cfg.Log.With().Str("service", "notify").Logger(),
	}
}

// Configured reports whether at least one channel is set up
func (s *Sender) Configured() bool {
	return len(s.channels()) > 0
}

func (s *Sender) channels() []channel {
	var chans []channel
	if s.cfg.PushKey != "" && s.cfg.PushBaseURL != "" {
		chans = append(chans, channel{name: "push", send: s.sendPush})
	}
	if s.cfg.CorpChatWebhook != "" {
		chans = append(chans, channel{name: "corp_chat", send: s.sendCorpChat})
	}
	if s.cfg.DingTalkWebhook != "" {
		chans = append(chans, channel{name: "dingtalk", send: s.sendDingTalk})
	}
	return chans
}

// SendAll delivers the message to every configured channel. It succeeds when
// any channel accepts the message and fails only when all of them refuse, or
// when no channel is configured at all.
func (s *Sender) SendAll(ctx context.Context, title, content string) error {
	chans := s.channels()
	if len(chans) == 0 {
		return fmt.Errorf("no notification channel configured")
	}

	delivered := 0
	for _, ch := range chans {
		if err := ch.send(ctx, title, content); err != nil {
			s.log.Warn().Err(err).Str("channel", ch.name).Msg("Notification channel failed")
			continue
		}
		s.log.Info().Str("channel", ch.name).Msg("Notification delivered")
		delivered++
	}

	if delivered == 0 {
		return fmt.Errorf("all %d notification channels failed", len(chans))
	}
	return nil
}

// sendPush posts a form to the key-based push service
func (s *Sender) sendPush(ctx context.Context, title, content string) error {
	form := url.Values{}
	form.Set("title", title)
	form.Set("desp", content)

	endpoint := fmt.Sprintf("%s/%s.send", strings.TrimRight(s.cfg.PushBaseURL, "/"), s.cfg.PushKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.do(req)
}

// sendCorpChat posts a markdown message to an enterprise chat webhook
func (s *Sender) sendCorpChat(ctx context.Context, title, content string) error {
	text := truncateRunes(title+"\n\n"+content, corpChatContentLimit)

	payload := map[string]interface{}{
		"msgtype":  "markdown",
		"markdown": map[string]string{"content": text},
	}
	return s.postJSON(ctx, s.cfg.CorpChatWebhook, payload)
}

// sendDingTalk posts a markdown message to a DingTalk webhook
func (s *Sender) sendDingTalk(ctx context.Context, title, content string) error {
	payload := map[string]interface{}{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"title": title,
			"text":  "## " + title + "\n\n" + content,
		},
	}
	return s.postJSON(ctx, s.cfg.DingTalkWebhook, payload)
}

func (s *Sender) postJSON(ctx context.Context, endpoint string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req)
}

// truncateRunes caps a string at limit bytes without splitting a UTF-8 rune
func truncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func (s *Sender) do(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
