package audit

import (
	"sync"
)

// Target is a page scheduled for auditing
type Target struct {
	Loc     string
	RelPath string
}

// Queue is a thread-safe FIFO of targets with deduplication by path
type Queue struct {
	mu      sync.Mutex
	items   []Target
	visited map[string]bool
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		items:   make([]Target, 0),
		visited: make(map[string]bool),
	}
}

// Push adds a target unless its path was already queued.
// Returns true if added, false if duplicate
func (q *Queue) Push(target Target) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.visited[target.RelPath] {
		return false
	}

	q.visited[target.RelPath] = true
	q.items = append(q.items, target)
	return true
}

// Pop removes and returns the first target, false when empty
func (q *Queue) Pop() (Target, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Target{}, false
	}

	target := q.items[0]
	q.items = q.items[1:]
	return target, true
}

// Size returns the current number of items in the queue
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
