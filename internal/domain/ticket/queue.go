package ticket

import (
	"slices"
	"sync"
)

// Queue issues waiting-room tickets and serves them in issuance order.
// Ticket numbers start at 1 and are not persisted.
type Queue struct {
	mu      sync.Mutex
	counter int
	waiting []int
}

func NewQueue() *Queue {
	return &Queue{}
}

// Issue increments the counter and enqueues the new ticket number.
func (q *Queue) Issue() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.counter++
	q.waiting = append(q.waiting, q.counter)
	return q.counter
}

// ServeNext removes and returns the ticket at the head of the queue.
func (q *Queue) ServeNext() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) == 0 {
		return 0, ErrQueueEmpty
	}
	next := q.waiting[0]
	q.waiting = q.waiting[1:]
	return next, nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Waiting returns a copy of the waiting tickets, head first.
func (q *Queue) Waiting() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.waiting)
}

// Position reports how many tickets are ahead of n.
func (q *Queue) Position(n int) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := slices.Index(q.waiting, n); i >= 0 {
		return i, nil
	}
	return 0, ErrTicketNotWaiting
}

// LastIssued is the most recent ticket number, or 0 before the first Issue.
func (q *Queue) LastIssued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counter
}
