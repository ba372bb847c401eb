package provisioning

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process FIFO queue for tests and the dev environment.
type MemoryQueue struct {
	mu   sync.Mutex
	msgs []Message
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, false, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.msgs) == 0 {
		return Message{}, false, nil
	}
	msg := q.msgs[0]
	q.msgs = q.msgs[1:]
	return msg, true, nil
}

// Len reports the number of pending messages.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}
