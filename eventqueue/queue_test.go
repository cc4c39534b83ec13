package eventqueue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngcore/asynccore/task"
)

func TestExecuteAllOnEmptyQueueIsNoop(t *testing.T) {
	var q Queue
	require.NotPanics(t, func() { q.ExecuteAll() })
}

func TestExecuteAllWakesInFIFOOrder(t *testing.T) {
	var q Queue
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.Schedule().Start(task.FuncReceiver[struct{}]{
			Value: func(struct{}) { order = append(order, i) },
		})
	}
	q.ExecuteAll()
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestReparkDuringExecuteAllWaitsForNextCall(t *testing.T) {
	var q Queue
	var secondRoundRan bool

	q.Schedule().Start(task.FuncReceiver[struct{}]{
		Value: func(struct{}) {
			q.Schedule().Start(task.FuncReceiver[struct{}]{
				Value: func(struct{}) { secondRoundRan = true },
			})
		},
	})

	q.ExecuteAll()
	require.False(t, secondRoundRan)

	q.ExecuteAll()
	require.True(t, secondRoundRan)
}

func TestCloseCancelsParkedOps(t *testing.T) {
	var q Queue
	var cancelled bool
	q.Schedule().Start(task.FuncReceiver[struct{}]{
		Done: func() { cancelled = true },
	})
	q.Close()
	require.True(t, cancelled)
}
