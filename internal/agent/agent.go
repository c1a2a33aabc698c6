// Package agent reaches the two remote conversational agents behind a single
// invocation contract. Replies come back as a raw result (object or text)
// plus an optional plain message; interpretation happens upstream.
package agent

import (
	"context"
	"fmt"
	"time"
)

// Result mirrors the response half of the invocation contract. Raw holds
// response.result as either a decoded object or a string; Message carries
// response.message, used as display fallback when no payload is extracted.
type Result struct {
	Raw     any
	Message string
}

// Options is the conversational context for an invocation.
type Options struct {
	SessionID string
}

type Invoker interface {
	Invoke(ctx context.Context, message, agentID string, opts Options) (Result, error)
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}
