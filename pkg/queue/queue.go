package queue

// Queue represents a basic FIFO queue with a blocking consumer side.
type Queue interface {
	// Enqueue adds an item without blocking. It fails if the queue is
	// full or closed.
	Enqueue(item interface{}) error
	// Dequeue blocks until an item is available. It returns false once
	// the queue is closed and drained.
	Dequeue() (interface{}, bool)
	// Size returns the number of items waiting in the queue.
	Size() int
	// Close closes the queue. Pending items can still be dequeued.
	Close()
}
