package ospoll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ngcore/asynccore/task"
	"github.com/ngcore/asynccore/workerpool"
)

func TestCaptureAndScheduleStayOnSameWorker(t *testing.T) {
	pool := workerpool.New(4)
	defer func() {
		pool.RequestStop()
		pool.Wait()
	}()

	captured := make(chan *Slot, 1)
	Capture(pool).Start(task.FuncReceiver[*Slot]{
		Value: func(s *Slot) { captured <- s },
	})

	var slot *Slot
	select {
	case slot = <-captured:
	case <-time.After(time.Second):
		t.Fatal("capture never resolved")
	}

	const n = 50
	for i := 0; i < n; i++ {
		done := make(chan struct{})
		slot.Schedule().Start(task.FuncReceiver[struct{}]{
			Value: func(struct{}) { close(done) },
		})
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("slot schedule never resumed")
		}
	}
}

func TestAsSchedulerResumesOnSlot(t *testing.T) {
	pool := workerpool.New(2)
	defer func() {
		pool.RequestStop()
		pool.Wait()
	}()

	captured := make(chan *Slot, 1)
	Capture(pool).Start(task.FuncReceiver[*Slot]{
		Value: func(s *Slot) { captured <- s },
	})
	slot := <-captured

	done := make(chan struct{})
	task.On[struct{}](slot.AsScheduler(), task.Just(struct{}{})).Start(task.FuncReceiver[struct{}]{
		Value: func(struct{}) { close(done) },
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("On(slot.AsScheduler(), ...) never resumed")
	}
}

func TestWakerWakeBeforeWaitDoesNotBlock(t *testing.T) {
	w, err := NewWaker()
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Wake())

	done := make(chan struct{})
	go func() {
		require.NoError(t, w.Wait())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after a prior Wake")
	}
}

func TestWakerWaitBlocksUntilWake(t *testing.T) {
	w, err := NewWaker()
	require.NoError(t, err)
	defer w.Close()

	done := make(chan struct{})
	go func() {
		require.NoError(t, w.Wait())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before any Wake")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, w.Wake())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after Wake")
	}
}
