// Package corerr defines the error taxonomy asynccore's sender chains use
// to report outcomes, grounded in the same cause-chain-friendly style as
// github.com/joeycumines/go-eventloop's error types (Unwrap, errors.Is/As
// support) but mapped onto the five error kinds spec.md §7 names:
// cancellation, transient-recoverable, resource-not-found, programming
// invariant violation, and device/OS fatal.
package corerr

import (
	"errors"
	"fmt"
)

// ErrCancelled is the sentinel used for the cooperative-cancellation
// ("done") outcome. It is never logged as an error — receivers routing to
// set_done must check for it explicitly and skip the error log path.
var ErrCancelled = errors.New("asynccore: operation cancelled")

// TransientError represents a condition the caller is expected to retry
// or skip next frame: swapchain out-of-date, a busy file, and similar.
// It is never fatal.
type TransientError struct {
	// Op names the operation that hit the transient condition, e.g.
	// "swapchain.AcquireNext".
	Op string
	// Retry indicates whether the same operation should be retried this
	// frame (true) or skipped until next frame (false).
	Retry bool
	Cause error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("asynccore: transient error in %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("asynccore: transient error in %s", e.Op)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// AssetNotFoundError represents a resource-not-found condition: an asset
// load that failed to locate its target. Surfaced to the caller of the
// async load; never fatal to the core.
type AssetNotFoundError struct {
	Handle any
	Cause  error
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asynccore: asset not found: %v", e.Handle)
}

func (e *AssetNotFoundError) Unwrap() error { return e.Cause }

// InvariantError represents a programming invariant violation: slot-table
// corruption, a double-wake, an Op parked in two lots at once. Code that
// detects one of these should panic with it rather than attempt to
// recover, since the data structure's internal state can no longer be
// trusted.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("asynccore: invariant violated: %s", e.Invariant)
	}
	return fmt.Sprintf("asynccore: invariant violated: %s: %s", e.Invariant, e.Detail)
}

// FatalError represents a device/OS fatal condition: fence wait timeout
// (device lost), Vulkan device loss, an allocation failure with no
// recovery policy. Code that detects one of these should log it and
// terminate the process; there is no recovery path defined by this core.
type FatalError struct {
	Reason string
	Cause  error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("asynccore: fatal: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("asynccore: fatal: %s", e.Reason)
}

func (e *FatalError) Unwrap() error { return e.Cause }

// IsCancelled reports whether err is (or wraps) ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
