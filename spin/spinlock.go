package spin

import "sync/atomic"

// Lock is a test-and-test-and-set spinlock. It implements sync.Locker so it
// can be used anywhere a *sync.Mutex would be, including as the argument to
// [parking.Lot.WakeOne]. Prefer a real mutex for anything held across a
// blocking call; Lock is for the short, uncontended critical sections that
// guard parking-lot linked lists and pool dispatch state.
type Lock struct {
	locked atomic.Bool
}

// Lock blocks until the lock is acquired, spinning and then yielding.
func (l *Lock) Lock() {
	var w Wait
	for !l.locked.CompareAndSwap(false, true) {
		for l.locked.Load() {
			w.Spin()
		}
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *Lock) TryLock() bool {
	return l.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking an unlocked Lock is undefined, same
// as sync.Mutex.
func (l *Lock) Unlock() {
	l.locked.Store(false)
}
