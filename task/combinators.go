package task

import "sync"

// Then maps a successful value through f, producing a new value sender.
// Error and done outcomes pass through unchanged. f runs synchronously on
// whatever goroutine s delivers its value from.
func Then[T, U any](s Sender[T], f func(T) U) Sender[U] {
	return SenderFunc[U](func(r Receiver[U]) {
		s.Start(FuncReceiver[T]{
			Value: func(v T) { r.SetValue(f(v)) },
			Error: r.SetError,
			Done:  r.SetDone,
		})
	})
}

// ThenSender is the flat-mapping counterpart of Then: f produces a new
// sender to chain into rather than a plain value, for steps whose
// continuation is itself asynchronous.
func ThenSender[T, U any](s Sender[T], f func(T) Sender[U]) Sender[U] {
	return SenderFunc[U](func(r Receiver[U]) {
		s.Start(FuncReceiver[T]{
			Value: func(v T) { f(v).Start(r) },
			Error: r.SetError,
			Done:  r.SetDone,
		})
	})
}

// On starts s only after transferring to sched — i.e. after sched's
// schedule sender has delivered its value. If sched's schedule sender
// itself errors or is cancelled, s never starts.
func On[T any](sched Scheduler, s Sender[T]) Sender[T] {
	return SenderFunc[T](func(r Receiver[T]) {
		sched.Schedule().Start(FuncReceiver[struct{}]{
			Value: func(struct{}) { s.Start(r) },
			Error: r.SetError,
			Done:  r.SetDone,
		})
	})
}

// LetError replaces a failed s with the sender produced by h(err). A
// successful or cancelled s passes through unchanged.
func LetError[T any](s Sender[T], h func(error) Sender[T]) Sender[T] {
	return SenderFunc[T](func(r Receiver[T]) {
		s.Start(FuncReceiver[T]{
			Value: r.SetValue,
			Error: func(err error) { h(err).Start(r) },
			Done:  r.SetDone,
		})
	})
}

// WhenAll starts every sender concurrently (from the caller's point of
// view — each Start is invoked synchronously in turn, but a sender is
// free to complete asynchronously from another goroutine) and resolves
// with the slice of values in input order once every sender has
// delivered a value. The first error or done outcome from any sender
// short-circuits the whole group, delivering that single outcome; later
// outcomes from the remaining senders are discarded.
func WhenAll[T any](senders ...Sender[T]) Sender[[]T] {
	return SenderFunc[[]T](func(r Receiver[[]T]) {
		n := len(senders)
		if n == 0 {
			r.SetValue(nil)
			return
		}

		var (
			mu       sync.Mutex
			once     sync.Once
			results  = make([]T, n)
			remaining = n
		)

		settle := func(f func()) {
			once.Do(f)
		}

		for i, s := range senders {
			i, s := i, s
			s.Start(FuncReceiver[T]{
				Value: func(v T) {
					mu.Lock()
					results[i] = v
					remaining--
					done := remaining == 0
					mu.Unlock()
					if done {
						settle(func() { r.SetValue(results) })
					}
				},
				Error: func(err error) {
					settle(func() { r.SetError(err) })
				},
				Done: func() {
					settle(func() { r.SetDone() })
				},
			})
		}
	})
}
