package fps

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors surfaced on a command's result handle. Callers should use
// errors.Is against these, since each is additionally wrapped with
// call-specific context.
var (
	// ErrTimeout indicates no envelope was received within the configured
	// per-command timeout. It provokes a restart of the child interpreter.
	ErrTimeout = errors.New("fps: command timed out")

	// ErrClosed indicates the child exited, spontaneously or via Destroy,
	// before the command completed. Queued-but-unstarted commands receive
	// this on shutdown and on restart of a prior generation.
	ErrClosed = errors.New("fps: shell closed")

	// ErrWriteFailed indicates the stdin write for a command returned an
	// error. Dispatching treats it the same as ErrClosed.
	ErrWriteFailed = errors.New("fps: write to child failed")

	// ErrDecode indicates the extracted envelope payload was not valid JSON
	// in the expected shape. It provokes a restart, since the reader's frame
	// may be corrupt.
	ErrDecode = errors.New("fps: envelope decode failed")
)

// timeoutError carries the configured duration so the message is
// self-describing.
type timeoutError struct {
	d time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("fps: command timed out after %s", e.d)
}

func (e *timeoutError) Unwrap() error { return ErrTimeout }

func newTimeoutError(d time.Duration) error {
	return &timeoutError{d: d}
}
