// Package ratelimit implements fixed-window request limiting over a
// pluggable counter store.
package ratelimit

import (
	"context"
	"math"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Count      int64
	ResetAt    time.Time
	RetryAfter int
}

// Store counts hits per key within a window. The first Increment for a key
// starts its window; resetAt is when that window ends.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Policy names a limit of Max hits per Window.
type Policy struct {
	Name   string
	Max    int
	Window time.Duration
}

// FixedWindowLimiter applies one Policy over a Store.
type FixedWindowLimiter struct {
	policy Policy
	store  Store
	prefix string
	now    func() time.Time
}

// NewFixedWindowLimiter creates a limiter. Keys are stored as
// prefix + policy name + ":" + key.
func NewFixedWindowLimiter(policy Policy, store Store, prefix string) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		policy: policy,
		store:  store,
		prefix: prefix,
		now:    time.Now,
	}
}

func (l *FixedWindowLimiter) Policy() Policy {
	return l.policy
}

// Allow counts the hit and reports whether it fits within the policy.
// On store failure the returned Decision allows the request and the error
// is returned for logging.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, resetAt, err := l.store.Increment(ctx, l.prefix+l.policy.Name+":"+key, l.policy.Window)
	if err != nil {
		return Decision{Allowed: true, Limit: l.policy.Max, Remaining: l.policy.Max}, err
	}

	d := Decision{
		Allowed: count <= int64(l.policy.Max),
		Limit:   l.policy.Max,
		Count:   count,
		ResetAt: resetAt,
	}
	if remaining := int64(l.policy.Max) - count; remaining > 0 {
		d.Remaining = int(remaining)
	}
	if !d.Allowed {
		d.RetryAfter = retryAfterSeconds(resetAt.Sub(l.now()))
	}
	return d, nil
}

// retryAfterSeconds rounds up and never returns less than 1.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
