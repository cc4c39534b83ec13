package parking

import "sync"

// MultiCancelAll atomically splices every given lot under the single held
// lock, releases it, then invokes Cancel on every spliced node of every
// lot, in lot order. It is the only safe way to cancel work that might be
// parked in any of several queues without racing a concurrent WakeOne on
// one of them: by detaching all the lots' lists before releasing the
// lock, a racing WakeOne either completes before this call takes the
// lock (and its op is never visible here) or blocks on the lock and,
// once it gets in, finds its lot already emptied.
//
// Each op is delivered exactly one of (Wake, Cancel), never both.
func MultiCancelAll[Args any](lock sync.Locker, lots ...*Lot[Args]) {
	if len(lots) == 0 {
		return
	}
	heads := make([]*Op[Args], len(lots))
	for i, lot := range lots {
		heads[i] = lot.splice()
	}
	lock.Unlock()

	for _, current := range heads {
		for current != nil {
			next := current.next
			current.Cancel()
			current = next
		}
	}
}
