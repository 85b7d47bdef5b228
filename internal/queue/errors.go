package queue

import "errors"

// Custom queue errors
var (
	// ErrQueueEmpty indicates the queue has no pending items
	ErrQueueEmpty = errors.New("no videos in queue")
)

// IsQueueEmpty checks if the error is a queue empty error
func IsQueueEmpty(err error) bool {
	return errors.Is(err, ErrQueueEmpty)
}
