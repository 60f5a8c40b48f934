package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"BetPilot/internal/model"
)

// Do runs op up to attempts times with exponential backoff between tries.
// Only transient failures are retried: an AuthError or any other error type
// passes straight through after the first attempt. The returned error wraps
// the last failure, so errors.As still matches the underlying type.
func Do(ctx context.Context, name string, attempts int, backoff time.Duration, op func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := op()
		if err == nil {
			return nil
		}
		var tErr *model.TransientIOError
		if !errors.As(err, &tErr) {
			return err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		wait := backoff * time.Duration(1<<uint(i))
		log.Printf("[WARN] %s failed (attempt %d/%d): %v, retrying in %v", name, i+1, attempts, err, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s: all %d attempts exhausted: %w", name, attempts, lastErr)
}
