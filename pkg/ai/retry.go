package ai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig bounds the retry decorator. Zero values fall back to the
// defaults used in production.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 2
	}
	if c.InitialWait <= 0 {
		c.InitialWait = 500 * time.Millisecond
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 5 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2
	}
	return c
}

// retryClient decorates a Client with bounded retries on transient
// failures. Malformed responses are never retried: the schema
// violation must reach the caller untouched.
type retryClient struct {
	inner  Client
	config RetryConfig
}

// WithRetry wraps a Client with bounded exponential backoff.
func WithRetry(inner Client, cfg RetryConfig) Client {
	return &retryClient{inner: inner, config: cfg.withDefaults()}
}

func (r *retryClient) Complete(ctx context.Context, system string, history []Message) (string, error) {
	var result string
	err := r.attempt(ctx, func() error {
		var err error
		result, err = r.inner.Complete(ctx, system, history)
		return err
	})
	return result, err
}

func (r *retryClient) CompleteJSON(ctx context.Context, system string, user string, schema *Schema) (json.RawMessage, error) {
	var result json.RawMessage
	err := r.attempt(ctx, func() error {
		var err error
		result, err = r.inner.CompleteJSON(ctx, system, user, schema)
		return err
	})
	return result, err
}

func (r *retryClient) attempt(ctx context.Context, call func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}

	return lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return false
	}

	var external *ExternalServiceError
	return errors.As(err, &external)
}

func (r *retryClient) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
