// Package httpclient is the request pipeline: the single path every backend
// call takes. It attaches identity headers, retries transient failures with
// exponential backoff, normalizes errors into *domain.APIError and publishes a
// failure toast.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/api/metrics"
	"github.com/99minutos/catalog-console/internal/core/domain"
	"github.com/99minutos/catalog-console/internal/core/ports"
)

const (
	DefaultTenantHeader = "X-Tenant-Id"
	defaultBaseDelay    = 300 * time.Millisecond
	maxAttempts         = 3
	defaultTimeout      = 30 * time.Second
	maxBodyBytes        = 10 << 20
)

// Config holds the pipeline settings.
type Config struct {
	BaseURL      string
	TenantHeader string
	Timeout      time.Duration
	// BaseDelay is the wait before the first retry; it doubles per attempt.
	BaseDelay time.Duration
	// MaxAttempts counts the original attempt plus retries. It is capped at 3.
	MaxAttempts int
}

// Client is the request pipeline.
type Client struct {
	cfg      Config
	http     *http.Client
	notifier ports.Notifier
	sleep    SleepFunc
	log      zerolog.Logger

	mu      sync.RWMutex
	session ports.SessionSource
	tenant  ports.TenantSource
}

// New builds a Client. Identity sources are attached later with Attach because
// the session manager itself talks to the backend through this client.
func New(cfg Config, notifier ports.Notifier, log zerolog.Logger, opts ...ClientOption) *Client {
	if cfg.TenantHeader == "" {
		cfg.TenantHeader = DefaultTenantHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.MaxAttempts <= 0 || cfg.MaxAttempts > maxAttempts {
		cfg.MaxAttempts = maxAttempts
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		notifier: notifier,
		sleep:    sleepContext,
		log:      log.With().Str("component", "httpclient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach wires the session and tenant the pipeline reads on every call.
// Either may be nil.
func (c *Client) Attach(session ports.SessionSource, tenant ports.TenantSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.tenant = tenant
}

func (c *Client) sources() (ports.SessionSource, ports.TenantSource) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.tenant
}

// Result is a successful response.
type Result struct {
	Status int
	Raw    []byte
	// Empty is set when the response had no body (e.g. 204).
	Empty bool
	// Text is set when the body was not JSON; Raw then holds the text.
	Text bool
}

// Decode unmarshals the JSON body into v. An empty result leaves v untouched.
// A text result can only be decoded into a *string.
func (r *Result) Decode(v any) error {
	if r == nil || r.Empty || v == nil {
		return nil
	}
	if r.Text {
		sp, ok := v.(*string)
		if !ok {
			return fmt.Errorf("decode %T: response body is not JSON", v)
		}
		*sp = string(r.Raw)
		return nil
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// Call runs Do and decodes the result into a T. Empty responses yield T's zero value.
func Call[T any](ctx context.Context, c *Client, method, path string, body any, opts ...Option) (T, error) {
	var out T
	res, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return out, err
	}
	if err := res.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// Do sends one logical request. Responses with status 429 or 5xx are retried
// after BaseDelay*2^attempt until MaxAttempts have been made. A final 401
// clears the session. Any final non-2xx response is returned as
// *domain.APIError after a failure toast is published. Transport failures are
// not retried and wrap domain.ErrNetwork.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...Option) (*Result, error) {
	o := newCallOptions(opts)
	start := time.Now()

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		payload = b
	}

	var (
		status           int
		raw              []byte
		usedSessionToken bool
	)
	for attempt := 0; ; attempt++ {
		var err error
		status, raw, usedSessionToken, err = c.send(ctx, method, path, payload, o)
		if err != nil {
			metrics.BackendRequestsTotal.WithLabelValues(method, "network_error").Inc()
			metrics.BackendCallDuration.WithLabelValues("network_error").Observe(time.Since(start).Seconds())
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, ctxErr)
			}
			return nil, fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrNetwork, err)
		}
		metrics.BackendRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()

		if !isRetryable(status) || attempt >= c.cfg.MaxAttempts-1 {
			break
		}

		delay := c.cfg.BaseDelay << attempt
		metrics.BackendRetriesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
		c.log.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("transient backend response, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	if !isSuccess(status) {
		metrics.BackendCallDuration.WithLabelValues("api_error").Observe(time.Since(start).Seconds())
		return nil, c.fail(method, path, status, raw, usedSessionToken, o)
	}

	metrics.BackendCallDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	res := &Result{Status: status, Raw: raw}
	switch {
	case len(bytes.TrimSpace(raw)) == 0:
		res.Empty = true
		res.Raw = nil
	case !json.Valid(raw):
		res.Text = true
		c.log.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Msg("backend returned a non-JSON body, using raw text")
	}
	return res, nil
}

func (c *Client) fail(method, path string, status int, raw []byte, usedSessionToken bool, o *callOptions) error {
	if status == http.StatusUnauthorized && usedSessionToken {
		session, _ := c.sources()
		if session != nil {
			metrics.ForcedLogoutsTotal.Inc()
			c.log.Info().Str("path", path).Msg("backend rejected the session token, signing out")
			session.ForceLogout()
		}
	}

	apiErr := normalizeError(status, raw)
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Str("message", apiErr.Message).
		Msg("backend request failed")

	if c.notifier != nil && !o.silenced(status) {
		c.notifier.Publish(domain.Notification{
			Severity: domain.SeverityError,
			Title:    fmt.Sprintf("Request failed (%d)", status),
			Message:  truncate(apiErr.Message, maxToastMessage),
		})
	}
	return apiErr
}

// send performs one attempt. usedSessionToken reports whether the session's
// own bearer token was attached.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, o *callOptions) (status int, raw []byte, usedSessionToken bool, err error) {
	target, err := c.url(path, o.query)
	if err != nil {
		return 0, nil, false, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, false, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range o.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	session, tenant := c.sources()
	switch {
	case o.anonymous:
	case o.bearer != "":
		req.Header.Set("Authorization", "Bearer "+o.bearer)
	case session != nil:
		if token := session.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			usedSessionToken = true
		}
	}
	if tenant != nil {
		if id := tenant.ActiveTenantID(); id != "" {
			req.Header.Set(c.cfg.TenantHeader, id)
		}
	}

	c.log.Debug().Str("method", method).Str("url", target).Msg("backend request")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, false, err
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, nil, false, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, usedSessionToken, nil
}

func (c *Client) url(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.cfg.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
