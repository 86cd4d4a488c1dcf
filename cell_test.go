// FILE: lixenwraith/reload/cell_test.go
package reload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type component struct {
	id int
}

func TestCellLoadAfterSwap(t *testing.T) {
	cell := NewCell(&component{id: 1})

	old := cell.Swap(&component{id: 2})
	require.Equal(t, 1, old.id, "Swap should return the previous instance")

	// A read that starts after a completed swap must observe the new value.
	assert.Equal(t, 2, cell.Load().id)
}

func TestCellReaderKeepsOldReference(t *testing.T) {
	first := &component{id: 1}
	cell := NewCell(first)

	captured := cell.Load()
	cell.Swap(&component{id: 2})

	// The reference captured before the swap stays valid and unchanged.
	assert.Same(t, first, captured)
	assert.Equal(t, 1, captured.id)
	assert.Equal(t, 2, cell.Load().id)
}

func TestCellConcurrentReadersAndWriter(t *testing.T) {
	cell := NewCell(&component{id: 0})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers must always observe a fully-constructed instance, never nil.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					v := cell.Load()
					if v == nil {
						t.Error("Load returned nil during concurrent swaps")
						return
					}
				}
			}
		}()
	}

	for i := 1; i <= 1000; i++ {
		cell.Swap(&component{id: i})
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, 1000, cell.Load().id)
}

func TestCellWithInterfaceValue(t *testing.T) {
	queue := NewMemoryQueue()
	cell := NewCell[JobQueue](queue)

	require.NotNil(t, cell.Load())
	old := cell.Swap(NewMemoryQueue())
	assert.Same(t, queue, old)
}
