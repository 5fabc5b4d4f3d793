// Package client talks to the hostel API over HTTP. It implements the session and
// role/profile ports so an authstate.Context can run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBodyLen = 64 << 10
	userAgent       = "hostelctl"
)

// Options configures a Client.
type Options struct {
	BaseURL string // Required: e.g. https://hostel.example.edu
	// Token is a previously issued session token to start with (optional).
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	base   *url.URL
	hc     *http.Client
	jar    *sessionJar
	logger *slog.Logger

	mu      sync.Mutex
	token   string
	current *domainauth.Session

	subMu  sync.Mutex
	subs   map[uint64]func(domainauth.SessionEvent)
	nextID uint64
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", base.Scheme)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Jar = jar
	// Guarded pages answer with 303; the status is the answer.
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   base,
		hc:     hc,
		jar:    jar,
		logger: logger.With("component", "api_client"),
		token:  strings.TrimSpace(opts.Token),
		subs:   make(map[uint64]func(domainauth.SessionEvent)),
	}, nil
}

// Token returns the session token currently presented, if any.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// raw is sent as-is with contentType instead of JSON-encoding body.
	raw         io.Reader
	contentType string
}

// do sends req and decodes a 2xx JSON response into out (when non-nil). Non-2xx responses
// become *apperrors.AppError values.
func (c *Client) do(ctx context.Context, req request, out any) (*http.Response, error) {
	u := *c.base
	u.Path = c.base.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	body, contentType := req.raw, req.contentType
	if body == nil && req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body, contentType = bytes.NewReader(buf), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if tok := c.Token(); tok != "" {
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return resp, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp, fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return resp, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// decodeError turns an API error response into an AppError. Unknown error codes fall back to
// the category implied by the HTTP status.
func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	_ = json.Unmarshal(raw, &body)

	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &apperrors.AppError{
		Code:    errorCode(body.Error, resp.StatusCode),
		Message: msg,
		Field:   body.Field,
	}
}

func errorCode(code string, status int) apperrors.ErrorCode {
	switch c := apperrors.ErrorCode(code); c {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeConflict, apperrors.ErrCodeValidation,
		apperrors.ErrCodeForeignKey, apperrors.ErrCodeUnauthorized, apperrors.ErrCodeForbidden,
		apperrors.ErrCodeTimeout, apperrors.ErrCodeCanceled, apperrors.ErrCodeInternal:
		return c
	}
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return apperrors.ErrCodeValidation
	case http.StatusUnauthorized:
		return apperrors.ErrCodeUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrCodeForbidden
	case http.StatusNotFound:
		return apperrors.ErrCodeNotFound
	case http.StatusConflict:
		return apperrors.ErrCodeConflict
	case http.StatusGatewayTimeout:
		return apperrors.ErrCodeTimeout
	default:
		return apperrors.ErrCodeInternal
	}
}

// sessionJar is a cookie jar that can be emptied on sign-out.
type sessionJar struct {
	mu  sync.Mutex
	jar *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &sessionJar{jar: j}, nil
}

func (s *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar.SetCookies(u, cookies)
}

func (s *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

func (s *sessionJar) reset() {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return
	}
	s.mu.Lock()
	s.jar = j
	s.mu.Unlock()
}
