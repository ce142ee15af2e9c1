package llm

import (
	"context"
	"time"
)

// WithTimeout wraps a client so every call carries a deadline. A
// non-positive duration returns the client unchanged.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{inner: c, d: d}
}

type timeoutClient struct {
	inner Client
	d     time.Duration
}

func (t *timeoutClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutClient) GenerateStream(ctx context.Context, req Request, fn TokenFunc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.GenerateStream(ctx, req, fn)
}
