// Package retry is the small bounded-backoff policy used around remote
// ledger and gateway calls.
package retry

import "time"

// maxBackoff caps the wait between attempts no matter how many there are.
const maxBackoff = 8 * time.Second

// Do runs op up to maxAttempts times, sleeping base, 2*base, 4*base, ...
// between attempts. It returns nil on the first success, or the last
// error once the attempts are spent. Only wrap idempotent operations:
// a retried append can land twice.
func Do(maxAttempts int, base time.Duration, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt < maxAttempts {
			time.Sleep(backoff(attempt, base))
		}
	}
	return err
}

// backoff doubles per attempt, saturating at maxBackoff. The overflow
// check matters once the shift passes 63 bits.
func backoff(attempt int, base time.Duration) time.Duration {
	d := base << uint(attempt-1)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	return d
}
