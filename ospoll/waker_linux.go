//go:build linux

package ospoll

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// eventfdWaker implements Waker on Linux using an eventfd, the same
// mechanism github.com/joeycumines/go-eventloop's wakeup_linux.go uses
// for its loop wake-up pipe.
type eventfdWaker struct {
	fd int
}

// NewWaker constructs the platform Waker. On Linux this is a blocking,
// close-on-exec eventfd: Wait blocks the calling goroutine's OS thread
// until a Wake, same as the original's native OS-event-wait call.
func NewWaker() (Waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("ospoll: creating eventfd: %w", err)
	}
	return &eventfdWaker{fd: fd}, nil
}

func (w *eventfdWaker) Wake() error {
	var buf [8]byte
	buf[7] = 1
	if _, err := unix.Write(w.fd, buf[:]); err != nil {
		return fmt.Errorf("ospoll: writing eventfd: %w", err)
	}
	return nil
}

func (w *eventfdWaker) Wait() error {
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		if err == nil {
			return nil
		}
		if err == unix.EINTR {
			continue
		}
		return fmt.Errorf("ospoll: reading eventfd: %w", err)
	}
}

func (w *eventfdWaker) Close() error {
	return unix.Close(w.fd)
}
