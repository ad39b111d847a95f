package issuance

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PollPolicy bounds a remote-convergence wait: at most MaxAttempts probes,
// Interval apart. ACME validation and issuance both converge within seconds
// under normal conditions, so a constant interval beats exponential growth.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollPolicy matches the issuance flow expected for Let's Encrypt:
// thirty seconds of total patience per wait.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: 2 * time.Second, MaxAttempts: 15}
}

// budget is the wall-clock ceiling implied by the policy. Used to cap the
// context handed to single long-running calls such as order finalization.
func (p PollPolicy) budget() time.Duration {
	return p.Interval * time.Duration(p.MaxAttempts)
}

// run invokes op once per attempt until it succeeds, returns a permanent
// error, the attempts run out, or ctx is cancelled. The first attempt fires
// immediately; backoff only applies between attempts.
func (p PollPolicy) run(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(p.MaxAttempts-1)),
		ctx,
	)
	return backoff.Retry(op, policy)
}
