// Package pagerduty raises staff notifications as PagerDuty Events API v2 triggers.
package pagerduty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hostelhub/hostel-api/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config configures the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// Endpoint overrides APIEndpoint.
	Endpoint string
}

// Client implements notify.Sink for PagerDuty.
type Client struct {
	routingKey string
	source     string
	component  string
	endpoint   string
	poster     *notify.Poster
}

var _ notify.Sink = (*Client)(nil)

type event struct {
	RoutingKey  string  `json:"routing_key"`
	EventAction string  `json:"event_action"`
	DedupKey    string  `json:"dedup_key,omitempty"`
	Payload     payload `json:"payload"`
}

type payload struct {
	Summary       string            `json:"summary"`
	Severity      string            `json:"severity"`
	Source        string            `json:"source"`
	Component     string            `json:"component"`
	Group         string            `json:"group,omitempty"`
	Timestamp     string            `json:"timestamp"`
	CustomDetails map[string]string `json:"custom_details,omitempty"`
}

// NewClient requires a routing key.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}
	return &Client{
		routingKey: key,
		source:     orDefault(cfg.Source, "hostel-api"),
		component:  orDefault(cfg.Component, "hostel"),
		endpoint:   orDefault(cfg.Endpoint, APIEndpoint),
		poster:     notify.NewPoster("pagerduty", cfg.Client, cfg.Timeout, cfg.RetryLimit),
	}, nil
}

// Send submits a trigger event.
func (c *Client) Send(ctx context.Context, ev notify.Event) error {
	body, err := json.Marshal(c.build(ev))
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}
	return c.poster.Post(ctx, c.endpoint, body)
}

func (c *Client) build(ev notify.Event) event {
	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}

	details := make(map[string]string, len(ev.Details)+3)
	for k, v := range ev.Details {
		details[k] = v
	}
	for k, v := range map[string]string{"subject_id": ev.SubjectID, "student": ev.Student, "room": ev.Room} {
		if v != "" {
			details[k] = v
		}
	}

	summary := ev.Title()
	if ev.Summary != "" {
		summary += ": " + ev.Summary
	}

	dedup := string(ev.Kind)
	if ev.SubjectID != "" {
		dedup += ":" + ev.SubjectID
	}

	return event{
		RoutingKey:  c.routingKey,
		EventAction: "trigger",
		DedupKey:    dedup,
		Payload: payload{
			Summary:       summary,
			Severity:      severity(ev.Severity),
			Source:        c.source,
			Component:     c.component,
			Group:         string(ev.Kind),
			Timestamp:     at.UTC().Format(time.RFC3339),
			CustomDetails: details,
		},
	}
}

// severity maps onto the values the Events API accepts.
func severity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case notify.SeverityInfo:
		return "info"
	case notify.SeverityWarning:
		return "warning"
	default:
		return "critical"
	}
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
