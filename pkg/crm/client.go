// Package crm provides JWT-authenticated REST API access to the
// Salesforce org that receives imported records.
package crm

import (
	"context"
	"fmt"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospector/internal/resilience"
)

// Client defines the CRM operations used by the import pipeline.
type Client interface {
	Query(ctx context.Context, soql string, out any) error
	InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error)
}

// ClientOption configures the CRM client.
type ClientOption func(*sfClient)

// WithRateLimit sets a per-second rate limit for CRM API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) ClientOption {
	return func(c *sfClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithSession ties the client to an auth session: a call rejected as
// unauthorized invalidates the session, refreshes once, and retries.
func WithSession(s *Session) ClientOption {
	return func(c *sfClient) { c.session = s }
}

// sfClient wraps the go-salesforce/v3 Salesforce struct.
//
// NOTE: The underlying go-salesforce/v3 library does not accept
// context.Context, so the ctx parameter covers only the rate limiter
// wait and the session refresh; callers can still cancel those.
type sfClient struct {
	sf      *salesforce.Salesforce
	limiter *rate.Limiter
	session *Session
}

// NewClient creates a CRM Client wrapping the given go-salesforce instance.
func NewClient(sf *salesforce.Salesforce, opts ...ClientOption) Client {
	c := &sfClient{sf: sf}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *sfClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// call runs one CRM operation behind the rate limiter. An unauthorized
// rejection triggers exactly one session refresh and retry; a second
// rejection surfaces as an auth failure requiring re-login.
func (c *sfClient) call(ctx context.Context, op string, fn func() error) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "crm: rate limit")
	}

	err := fn()
	if err == nil || c.session == nil || !resilience.IsAuthError(err) {
		return err
	}

	c.session.Invalidate()
	if _, refreshErr := c.session.Token(ctx); refreshErr != nil {
		return eris.Wrapf(resilience.ErrAuthExpired, "crm: %s: refresh failed: %v", op, refreshErr)
	}
	if err = fn(); err != nil && resilience.IsAuthError(err) {
		return eris.Wrapf(resilience.ErrAuthExpired, "crm: %s", op)
	}
	return err
}

func (c *sfClient) Query(ctx context.Context, soql string, out any) error {
	err := c.call(ctx, "query", func() error {
		return c.sf.Query(soql, out)
	})
	return eris.Wrap(err, "crm: query")
}

func (c *sfClient) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	var id string
	err := c.call(ctx, "insert "+sObjectName, func() error {
		result, err := c.sf.InsertOne(sObjectName, record)
		if err != nil {
			return err
		}
		if !result.Success {
			return eris.New(fmt.Sprintf("insert %s failed: %v", sObjectName, result.Errors))
		}
		id = result.Id
		return nil
	})
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("crm: insert %s", sObjectName))
	}
	return id, nil
}
