package nodestore

import (
	"bytes"
	"context"
	"errors"
	log "log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Default()
	log.SetDefault(log.New(log.NewTextHandler(&buf, &log.HandlerOptions{Level: log.LevelDebug})))
	t.Cleanup(func() { log.SetDefault(prev) })
	return &buf
}

func shortRetries(t *testing.T) {
	prev := RetryBase
	RetryBase = time.Millisecond
	t.Cleanup(func() { RetryBase = prev })
}

func TestRetryPermanentErrorIsQuiet(t *testing.T) {
	shortRetries(t)
	buf := captureLog(t)
	calls := 0
	err := RetryIO(context.Background(), func() error {
		calls++
		_, err := os.ReadFile("/nonexistent/nodestore/index")
		return err
	})
	if !errors.Is(err, os.ErrNotExist) || CodeOf(err) != FileIOError {
		t.Errorf("got %v, want a FileIOError wrapping ErrNotExist", err)
	}
	if calls != 1 {
		t.Errorf("permanent error retried, %d calls", calls)
	}
	if strings.Contains(buf.String(), "gave up") {
		t.Errorf("permanent error logged as exhausted retries: %s", buf.String())
	}
}

func TestRetryExhaustedIsLogged(t *testing.T) {
	shortRetries(t)
	buf := captureLog(t)
	gaveUp := false
	calls := 0
	err := Retry(context.Background(), func(context.Context) error {
		calls++
		return retry.RetryableError(errors.New("disk busy"))
	}, func(context.Context) { gaveUp = true })
	if err == nil || !gaveUp {
		t.Fatalf("got %v, gave up %v", err, gaveUp)
	}
	if calls != maxRetries+1 {
		t.Errorf("calls got %d, want %d", calls, maxRetries+1)
	}
	if !strings.Contains(buf.String(), "gave up") {
		t.Errorf("exhausted retries not logged: %q", buf.String())
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	shortRetries(t)
	calls := 0
	err := Retry(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return retry.RetryableError(errors.New("disk busy"))
		}
		return nil
	}, nil)
	if err != nil || calls != 3 {
		t.Errorf("got %v after %d calls", err, calls)
	}
}
