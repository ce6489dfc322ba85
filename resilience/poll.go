package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPollExhausted is matched by the error Poll returns when no attempt
// reached a terminal result.
var ErrPollExhausted = errors.New("poll attempts exhausted")

// PollExhaustedError reports how many attempts were made.
type PollExhaustedError struct {
	Attempts int
}

func (e *PollExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts", ErrPollExhausted, e.Attempts)
}

// Is matches ErrPollExhausted.
func (e *PollExhaustedError) Is(target error) bool {
	return target == ErrPollExhausted
}

// PollConfig configures a bounded poll loop.
type PollConfig struct {
	// MaxAttempts bounds the number of checks. Defaults to 30.
	MaxAttempts int
	// Interval is the fixed wait between checks. Defaults to 1s.
	Interval time.Duration
	// OnAttempt is called before each check with its 1-based number.
	OnAttempt func(attempt int)
}

// DefaultPollConfig returns 30 attempts one second apart.
func DefaultPollConfig() PollConfig {
	return PollConfig{MaxAttempts: 30, Interval: time.Second}
}

// PollCheck inspects the remote state once. It returns done=true with the
// final value when a terminal success is observed, or a non-nil error to
// stop polling immediately.
type PollCheck[T any] func(ctx context.Context, attempt int) (value T, done bool, err error)

// Poll runs check until it reports done, fails, or MaxAttempts is reached.
// Checks run strictly one after another in attempt order, with Interval
// between them and no wait after the last one. Exhaustion returns a
// *PollExhaustedError.
func Poll[T any](ctx context.Context, cfg PollConfig, check PollCheck[T]) (T, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 30
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if cfg.OnAttempt != nil {
			cfg.OnAttempt(attempt)
		}

		value, done, err := check(ctx, attempt)
		if err != nil {
			return zero, err
		}
		if done {
			return value, nil
		}

		if attempt < cfg.MaxAttempts {
			if err := sleep(ctx, cfg.Interval); err != nil {
				return zero, err
			}
		}
	}

	return zero, &PollExhaustedError{Attempts: cfg.MaxAttempts}
}
