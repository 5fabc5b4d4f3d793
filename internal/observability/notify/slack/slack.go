// Package slack posts staff notifications to a Slack incoming webhook.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/hostelhub/hostel-api/internal/observability/notify"
)

// Config configures the webhook sink.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// BaseURL, when absolute, turns the subject into a link to the API resource.
	BaseURL string
}

// Client implements notify.Sink for Slack.
type Client struct {
	webhookURL string
	channel    string
	username   string
	baseURL    string
	poster     *notify.Poster
}

var _ notify.Sink = (*Client)(nil)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// NewClient requires a webhook URL.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}
	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "hostel"
	}
	return &Client{
		webhookURL: webhookURL,
		channel:    strings.TrimSpace(cfg.Channel),
		username:   username,
		baseURL:    absoluteBase(cfg.BaseURL),
		poster:     notify.NewPoster("slack", cfg.Client, cfg.Timeout, cfg.RetryLimit),
	}, nil
}

// Send posts one formatted message.
func (c *Client) Send(ctx context.Context, ev notify.Event) error {
	body, err := json.Marshal(c.message(ev))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	return c.poster.Post(ctx, c.webhookURL, body)
}

func (c *Client) message(ev notify.Event) map[string]any {
	var b strings.Builder
	b.WriteString(severityIcon(ev.Severity))
	b.WriteString(" *")
	b.WriteString(ev.Title())
	b.WriteString("*")
	if subject := c.subject(ev); subject != "" {
		b.WriteByte(' ')
		b.WriteString(subject)
	}
	b.WriteByte('\n')

	line := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(&b, "• %s: %s\n", label, escaper.Replace(value))
	}
	line("Student", ev.Student)
	line("Room", ev.Room)
	line("Summary", ev.Summary)
	for _, k := range slices.Sorted(maps.Keys(ev.Details)) {
		line(k, ev.Details[k])
	}

	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	b.WriteString("• At: ")
	b.WriteString(at.UTC().Format(time.RFC3339))

	msg := map[string]any{"text": b.String(), "username": c.username}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

// subject renders the event's subject ID, linked when a base URL is configured.
func (c *Client) subject(ev notify.Event) string {
	id := escaper.Replace(strings.TrimSpace(ev.SubjectID))
	if id == "" {
		return ""
	}
	if path := ev.Path(); c.baseURL != "" && path != "" {
		return fmt.Sprintf("<%s%s|%s>", c.baseURL, path, id)
	}
	return "`" + id + "`"
}

func severityIcon(sev string) string {
	switch sev {
	case notify.SeverityCritical:
		return ":rotating_light:"
	case notify.SeverityWarning:
		return ":warning:"
	default:
		return ":information_source:"
	}
}

func absoluteBase(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.TrimRight(u.String(), "/")
}
