package queue

import (
	"fmt"
	"sync"
)

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	lock   sync.Mutex
	ch     chan interface{}
	closed bool
}

// NewInMemoryQueue creates a new queue with the given capacity.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	return &InMemoryQueue{
		ch: make(chan interface{}, capacity),
	}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue) Enqueue(item interface{}) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	select {
	case q.ch <- item:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

// Dequeue blocks until an item is available or the queue is closed
// and drained.
func (q *InMemoryQueue) Dequeue() (interface{}, bool) {
	item, ok := <-q.ch
	return item, ok
}

// Size returns the current size of the queue.
func (q *InMemoryQueue) Size() int {
	return len(q.ch)
}

// Close closes the queue. Further Enqueue calls fail; pending items
// remain dequeueable.
func (q *InMemoryQueue) Close() {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
