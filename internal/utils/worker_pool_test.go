package utils

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_ExecutesSubmittedTasks(t *testing.T) {
	pool := NewWorkerPool(4, 16)

	var executed atomic.Int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			executed.Add(1)
		})
	}

	pool.Shutdown()
	assert.Equal(t, int64(100), executed.Load())
}

func TestWorkerPool_GuardsAgainstBadSizes(t *testing.T) {
	pool := NewWorkerPool(0, -1)

	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done

	pool.Shutdown()
}
