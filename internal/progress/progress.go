// Package progress carries one-way status messages from the background
// worker to whatever surface is showing them.
package progress

import (
	"fmt"
	"sync"
)

// Sink accepts progress messages. Push never blocks the caller.
type Sink interface {
	Push(format string, args ...interface{})
}

// Feed is an append-only message queue. Workers Push, the surface Drains.
// Drained messages are released, so a long-running feed holds only what
// has not been read yet.
type Feed struct {
	mu       sync.Mutex
	messages []string
	notify   chan struct{}
}

// NewFeed creates an empty Feed
func NewFeed() *Feed {
	return &Feed{notify: make(chan struct{}, 1)}
}

// Push appends a formatted message and wakes a waiting reader
func (f *Feed) Push(format string, args ...interface{}) {
	f.mu.Lock()
	f.messages = append(f.messages, fmt.Sprintf(format, args...))
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Drain returns the messages pushed since the previous Drain
func (f *Feed) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.messages) == 0 {
		return nil
	}
	out := f.messages
	f.messages = nil
	return out
}

// Ready is signalled after a Push. A single signal may cover several messages.
func (f *Feed) Ready() <-chan struct{} {
	return f.notify
}

// Pending returns the number of messages not yet drained
func (f *Feed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// Discard is a Sink that drops every message
var Discard Sink = discard{}

type discard struct{}

func (discard) Push(string, ...interface{}) {}
