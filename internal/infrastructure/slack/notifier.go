// Package slack delivers the digest to a channel. The bot-token path posts
// the primary message and threads the full list under it; the webhook path
// carries the primary message only and doubles as the fallback transport.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"StartupDigest/internal/config"
	"StartupDigest/internal/digest"
	"StartupDigest/internal/domain"
	"StartupDigest/internal/ports"
)

// Notifier posts digests via the Slack Web API with webhook fallback.
type Notifier struct {
	cfg    config.SlackConfig
	client *http.Client
	logger *slog.Logger
	apiURL string
	now    func() time.Time
}

var _ ports.Notifier = (*Notifier)(nil)

// New wires credentials; apiURL "" selects the production Slack API.
func New(cfg config.SlackConfig, apiURL string, logger *slog.Logger) *Notifier {
	if apiURL == "" {
		apiURL = "https://slack.com/api"
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		apiURL: apiURL,
		now:    time.Now,
	}
}

// Deliver sends the two-part digest. Nothing to send is a success. A false
// return means every configured transport failed; marking records as
// delivered is the caller's responsibility.
func (n *Notifier) Deliver(ctx context.Context, categorized map[domain.Category][]domain.Article) bool {
	if len(categorized) == 0 {
		n.log("nothing new to deliver")
		return true
	}

	if n.cfg.BotToken != "" && n.cfg.ChannelID != "" {
		if err := n.sendViaBot(ctx, categorized); err == nil {
			n.log("digest delivered", "transport", "bot")
			return true
		} else if n.cfg.WebhookURL != "" {
			n.warn("bot delivery failed, falling back to webhook", "error", err)
		} else {
			n.warn("bot delivery failed, no fallback configured", "error", err)
			return false
		}
	} else if n.cfg.WebhookURL == "" {
		n.warn("no delivery transport configured")
		return false
	}

	if err := n.sendViaWebhook(ctx, categorized); err != nil {
		n.warn("webhook delivery failed", "error", err)
		return false
	}
	n.log("digest delivered", "transport", "webhook")
	return true
}

func (n *Notifier) sendViaBot(ctx context.Context, categorized map[domain.Category][]domain.Article) error {
	// Join is best-effort: already-joined and missing-permission answers
	// are indistinguishable from our point of view and equally fine.
	if err := n.postAPI(ctx, "conversations.join", map[string]any{"channel": n.cfg.ChannelID}, nil); err != nil {
		n.log("channel join skipped", "error", err)
	}

	var posted struct {
		TS string `json:"ts"`
	}
	err := n.postAPI(ctx, "chat.postMessage", map[string]any{
		"channel":      n.cfg.ChannelID,
		"text":         digest.BuildPrimary(categorized, n.now()),
		"unfurl_links": false,
		"unfurl_media": false,
	}, &posted)
	if err != nil {
		return fmt.Errorf("post primary message: %w", err)
	}

	err = n.postAPI(ctx, "chat.postMessage", map[string]any{
		"channel":      n.cfg.ChannelID,
		"text":         digest.BuildThread(categorized, n.now()),
		"thread_ts":    posted.TS,
		"unfurl_links": false,
		"unfurl_media": false,
	}, nil)
	if err != nil {
		return fmt.Errorf("post thread message: %w", err)
	}

	return nil
}

func (n *Notifier) sendViaWebhook(ctx context.Context, categorized map[domain.Category][]domain.Article) error {
	payload, err := json.Marshal(map[string]any{
		"text":         digest.BuildPrimary(categorized, n.now()),
		"unfurl_links": false,
		"unfurl_media": false,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook error: %s", resp.Status)
	}
	return nil
}

// postAPI calls one Slack Web API method and decodes its envelope; an
// ok=false answer is an error carrying Slack's error token.
func (n *Notifier) postAPI(ctx context.Context, method string, payload map[string]any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.BotToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack %s: %s", method, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !envelope.OK {
		return fmt.Errorf("slack %s: %s", method, strings.TrimSpace(envelope.Error))
	}

	if v != nil {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("decode response payload: %w", err)
		}
	}
	return nil
}

func (n *Notifier) log(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Info(msg, args...)
	}
}

func (n *Notifier) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
