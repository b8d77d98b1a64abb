package fetch

import "time"

// RetryPolicy bounds repeated attempts of a fallible operation. Sleep is
// injectable so tests run without waiting.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Sleep       func(time.Duration)
}

// LinearBackoff returns a backoff growing as base times the attempt number.
func LinearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return base * time.Duration(attempt)
	}
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. It returns
// nil on the first success, otherwise the error of the final attempt.
// MaxAttempts of one means a single attempt with no retry.
func (p RetryPolicy) Do(fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt < attempts && p.Backoff != nil {
			sleep(p.Backoff(attempt))
		}
	}
	return err
}
