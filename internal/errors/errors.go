// Package errors holds the error types shared across netinfo.
//
// NativeQueryError is the only error the core hands back to callers: it wraps
// a failed OS query (counter read, interface enumeration, mask lookup) and
// carries the platform errno. Malformed resolver configuration and counter
// range overflow are never errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
)

// NativeQueryError reports a failed native OS query together with the
// platform error code it produced.
type NativeQueryError struct {
	Op   string
	Code syscall.Errno
	Err  error
}

func (e *NativeQueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: errno %d (%s): %v", e.Op, int(e.Code), e.Code.Error(), e.Err)
	}
	return fmt.Sprintf("%s: errno %d (%s)", e.Op, int(e.Code), e.Code.Error())
}

func (e *NativeQueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same errno as this error's code.
func (e *NativeQueryError) Is(target error) bool {
	if errno, ok := target.(syscall.Errno); ok {
		return errno == e.Code
	}
	return false
}

// NewNativeQueryError wraps err as a failure of op. The code is taken from the
// first syscall.Errno in err's chain, or EIO when there is none.
func NewNativeQueryError(op string, err error) error {
	if err == nil {
		return nil
	}

	var existing *NativeQueryError
	if stderrors.As(err, &existing) {
		return &NativeQueryError{Op: op, Code: existing.Code, Err: err}
	}

	code := unix.EIO
	var errno syscall.Errno
	if stderrors.As(err, &errno) && errno != 0 {
		code = errno
	}

	return &NativeQueryError{Op: op, Code: code, Err: err}
}

// NativeQueryErrorf builds a NativeQueryError with an explicit code.
func NativeQueryErrorf(op string, code syscall.Errno, format string, args ...interface{}) error {
	return &NativeQueryError{
		Op:   op,
		Code: code,
		Err:  fmt.Errorf(format, args...),
	}
}

// CodeOf extracts the platform error code from a NativeQueryError in err's chain
func CodeOf(err error) (syscall.Errno, bool) {
	var nqe *NativeQueryError
	if stderrors.As(err, &nqe) {
		return nqe.Code, true
	}
	return 0, false
}

// Wrap wraps an error with additional context
func Wrap(err error, context string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	contextMsg := fmt.Sprintf(context, args...)
	return fmt.Errorf("%s: %w", contextMsg, err)
}

// WrapWithLog wraps an error with context and logs it
func WrapWithLog(err error, context string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, context, args...)
	logger.Error("%v", wrapped)
	return wrapped
}

// ComponentError represents an error from a specific component
type ComponentError struct {
	Component string
	Operation string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// NewComponentError creates a new component-specific error
func NewComponentError(component, operation string, err error) error {
	return &ComponentError{
		Component: component,
		Operation: operation,
		Err:       err,
	}
}

// Is and As forward to the standard library so callers need one import
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// New forwards to the standard library
func New(text string) error {
	return stderrors.New(text)
}

// RetryConfig defines configuration for retry behavior
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry configuration used for store writes
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// Native queries never go through here: a failed OS read is reported as is.
func RetryWithBackoff(operation string, config RetryConfig, fn func() error) error {
	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("Operation '%s' succeeded after %d attempts", operation, attempt)
			}
			return nil
		}

		lastErr = err

		// If this is the last attempt, don't wait
		if attempt == config.MaxAttempts {
			logger.Error("Operation '%s' failed after %d attempts: %v", operation, config.MaxAttempts, err)
			break
		}

		logger.Warn("Operation '%s' failed (attempt %d/%d): %v. Retrying in %v...",
			operation, attempt, config.MaxAttempts, err, delay)

		time.Sleep(delay)

		// Calculate next delay with exponential backoff
		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("operation '%s' failed after %d attempts: %w", operation, config.MaxAttempts, lastErr)
}

// SafeClose safely closes a resource and logs any errors
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		logger.Warn("Failed to close %s: %v", resourceName, err)
	}
}
