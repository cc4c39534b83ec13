//go:build !linux

package ospoll

// chanWaker implements Waker on platforms without an eventfd-equivalent
// readily available via golang.org/x/sys/unix, using a buffered channel
// as the wake signal instead. Semantically equivalent to the eventfd
// implementation: a single pending wake coalesces repeat calls to Wake
// before the next Wait.
type chanWaker struct {
	ch     chan struct{}
	closed chan struct{}
}

// NewWaker constructs the platform Waker.
func NewWaker() (Waker, error) {
	return &chanWaker{
		ch:     make(chan struct{}, 1),
		closed: make(chan struct{}),
	}, nil
}

func (w *chanWaker) Wake() error {
	select {
	case w.ch <- struct{}{}:
	default:
	}
	return nil
}

func (w *chanWaker) Wait() error {
	select {
	case <-w.ch:
		return nil
	case <-w.closed:
		return nil
	}
}

func (w *chanWaker) Close() error {
	close(w.closed)
	return nil
}
