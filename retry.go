package nodestore

import (
	"context"
	"errors"
	log "log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryBase is the first backoff interval used by Retry. Tests shorten it.
var RetryBase = 100 * time.Millisecond

const maxRetries = 5

// Retry executes task with Fibonacci backoff up to 5 retries.
// On failure gaveUpTask is invoked (when not nil) and the final error is returned.
// task signals a transient failure by returning retry.RetryableError(err); any other error ends
// the loop at once and is not logged here.
func Retry(ctx context.Context, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error {
	b := retry.NewFibonacci(RetryBase)
	attempts := 0
	if err := retry.Do(ctx, retry.WithMaxRetries(maxRetries, b), func(ctx context.Context) error {
		attempts++
		return task(ctx)
	}); err != nil {
		if attempts > maxRetries {
			log.Warn(err.Error()+", gave up", "attempts", attempts)
		}
		if gaveUpTask != nil {
			gaveUpTask(ctx)
		}
		return err
	}
	return nil
}

// RetryIO runs an I/O step under Retry, marking errors that ShouldRetry as retryable
// and wrapping every failure as a FileIOError.
func RetryIO(ctx context.Context, step func() error) error {
	return Retry(ctx, func(context.Context) error {
		err := step()
		if err == nil {
			return nil
		}
		e := Error{Code: FileIOError, Err: err}
		if ShouldRetry(err) {
			return retry.RetryableError(e)
		}
		return e
	}, nil)
}

// ShouldRetry reports whether the error is retryable (non-nil and not a known permanent failure).
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	// Context cancellations/timeouts are permanent from the caller's POV.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, os.ErrExist) {
		return false
	}

	// Resource, quota, read-only and path errors are permanent; retrying them only spins.
	switch {
	case errors.Is(err, syscall.EROFS),
		errors.Is(err, syscall.ENOSPC),
		errors.Is(err, syscall.EDQUOT),
		errors.Is(err, syscall.EMFILE),
		errors.Is(err, syscall.ENFILE),
		errors.Is(err, syscall.EACCES),
		errors.Is(err, syscall.EPERM),
		errors.Is(err, syscall.ENAMETOOLONG),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.EISDIR),
		errors.Is(err, syscall.EXDEV),
		errors.Is(err, syscall.EEXIST),
		errors.Is(err, syscall.EINVAL):
		return false
	}

	if strings.Contains(err.Error(), "read-only file system") {
		return false
	}

	return true
}
