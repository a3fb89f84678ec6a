package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// SleepFunc waits d or until ctx is done. It is swapped out in tests so
// backoff can be asserted without real waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ClientOption customises a Client at construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithSleep replaces the backoff delay function.
func WithSleep(fn SleepFunc) ClientOption {
	return func(c *Client) { c.sleep = fn }
}

type callOptions struct {
	query     url.Values
	header    http.Header
	bearer    string
	anonymous bool
	quietAll  bool
	quiet     map[int]bool
}

// Option customises a single call.
type Option func(*callOptions)

// WithQuery adds query parameters to the request URL.
func WithQuery(q url.Values) Option {
	return func(o *callOptions) {
		for k, vs := range q {
			for _, v := range vs {
				o.query.Add(k, v)
			}
		}
	}
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) Option {
	return func(o *callOptions) { o.header.Set(key, value) }
}

// WithBearer authenticates the call with token instead of the session's
// token. A 401 on such a call does not tear down the current session.
func WithBearer(token string) Option {
	return func(o *callOptions) { o.bearer = token }
}

// Anonymous sends the call without any Authorization header. Login uses it so
// a rejected sign-in attempt never tears down the session already in place.
func Anonymous() Option {
	return func(o *callOptions) { o.anonymous = true }
}

// Quiet suppresses the failure toast for the given statuses, or for every
// status when none are given. Callers use it when they publish their own,
// more specific notification.
func Quiet(statuses ...int) Option {
	return func(o *callOptions) {
		if len(statuses) == 0 {
			o.quietAll = true
			return
		}
		for _, s := range statuses {
			o.quiet[s] = true
		}
	}
}

func newCallOptions(opts []Option) *callOptions {
	o := &callOptions{
		query:  url.Values{},
		header: http.Header{},
		quiet:  map[int]bool{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *callOptions) silenced(status int) bool {
	return o.quietAll || o.quiet[status]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
