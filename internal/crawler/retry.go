package crawler

import (
	"context"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the first failed attempt.
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the fixed backoff before a failed URL is re-queued.
	DefaultRetryDelay = 3 * time.Second
)

// RetryPolicy bounds how often a failing URL is retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries allowed per URL, not counting the
	// first attempt.
	MaxRetries int

	// Delay is the fixed wait before each retry.
	Delay time.Duration
}

// DefaultRetryPolicy returns a policy with the default retry count and delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		Delay:      DefaultRetryDelay,
	}
}

// RetryState tracks failed attempts per URL for one crawl.
type RetryState struct {
	policy   RetryPolicy
	attempts map[string]int
}

// NewRetryState creates empty retry bookkeeping governed by policy.
func NewRetryState(policy RetryPolicy) *RetryState {
	return &RetryState{
		policy:   policy,
		attempts: make(map[string]int),
	}
}

// Decide records a navigation failure of rawURL.
//
// When retries remain it increments the retry count and returns retry=true.
// Otherwise it returns retry=false with the total number of attempts made,
// which is MaxRetries+1 for a URL that failed every time.
func (s *RetryState) Decide(rawURL string) (retry bool, attempts int) {
	n := s.attempts[rawURL]
	if n < s.policy.MaxRetries {
		s.attempts[rawURL] = n + 1
		return true, n + 1
	}
	return false, n + 1
}

// Attempts returns the retries recorded so far for rawURL.
func (s *RetryState) Attempts(rawURL string) int {
	return s.attempts[rawURL]
}

// Wait blocks for the backoff delay or until ctx is done.
func (s *RetryState) Wait(ctx context.Context) error {
	if s.policy.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.policy.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
