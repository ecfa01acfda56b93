package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueueOrdering(t *testing.T) {
	q := NewInMemoryQueue(4)
	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.Equal(t, 4, q.Size())

	for i := 0; i < 4; i++ {
		item, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueueFull(t *testing.T) {
	q := NewInMemoryQueue(1)
	require.NoError(t, q.Enqueue("a"))
	assert.Error(t, q.Enqueue("b"))
}

func TestInMemoryQueueClose(t *testing.T) {
	q := NewInMemoryQueue(4)
	require.NoError(t, q.Enqueue("a"))
	q.Close()

	assert.Error(t, q.Enqueue("b"))

	// Items already queued are still drained.
	item, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "a", item)

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestInMemoryQueueCloseTwice(t *testing.T) {
	q := NewInMemoryQueue(1)
	q.Close()
	assert.NotPanics(t, func() { q.Close() })
}
