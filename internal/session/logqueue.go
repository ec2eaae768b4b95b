package session

import (
	"sync"
	"time"
)

// Line is one activity log entry.
type Line struct {
	At      time.Time
	Level   string
	Message string
}

// LogQueue is an append-only, concurrency-safe activity log. Workers
// push lines as they run; a consumer drains them on its own schedule.
type LogQueue struct {
	mu    sync.Mutex
	lines []Line
}

// NewLogQueue constructs an empty queue.
func NewLogQueue() *LogQueue {
	return &LogQueue{}
}

// Push appends a line.
func (q *LogQueue) Push(level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lines = append(q.lines, Line{At: time.Now(), Level: level, Message: message})
}

// Drain returns all queued lines and empties the queue.
func (q *LogQueue) Drain() []Line {
	q.mu.Lock()
	defer q.mu.Unlock()
	lines := q.lines
	q.lines = nil
	return lines
}

// Len reports the number of queued lines.
func (q *LogQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}
