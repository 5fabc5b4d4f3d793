package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single webhook request when the caller configures none.
const DefaultTimeout = 5 * time.Second

const retryStep = 200 * time.Millisecond

// Poster sends JSON bodies to a webhook with linear-backoff retries.
type Poster struct {
	// Name prefixes error messages, e.g. "slack".
	Name    string
	Client  *http.Client
	Retries int
}

// NewPoster returns a Poster with an http.Client bounded by timeout.
func NewPoster(name string, client *http.Client, timeout time.Duration, retries int) *Poster {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Poster{Name: name, Client: client, Retries: max(retries, 0)}
}

// Post delivers body to url, retrying up to Retries more times on any failure.
func (p *Poster) Post(ctx context.Context, url string, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * retryStep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if lastErr = p.once(ctx, url, body); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (p *Poster) once(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Name, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, drainErr := io.Copy(io.Discard, resp.Body)
		return errors.Join(wrapErr("drain "+p.Name+" response", drainErr), wrapErr("close response body", resp.Body.Close()))
	}

	msg, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err := errors.Join(wrapErr("read "+p.Name+" error response", readErr), wrapErr("close response body", resp.Body.Close())); err != nil {
		return err
	}
	return fmt.Errorf("%s %s: %s", p.Name, resp.Status, strings.TrimSpace(string(msg)))
}

func wrapErr(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
