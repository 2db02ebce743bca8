// internal/outcome/channel.go
package outcome

import (
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is used when NewChannel is given a non-positive size.
const DefaultQueueSize = 4096

// Event is the outcome of one completed transmit cycle.
type Event struct {
	LinkID int
	Faults FaultSet
}

// Message is one entry on the channel.
// A Message without an Event marks the end of a cycle's events.
// It is a flush signal only and never means the channel is closed.
type Message struct {
	Event *Event
}

func (m Message) IsMarker() bool {
	return m.Event == nil
}

// Channel is the single many-producer, one-consumer outcome stream.
// Publish never blocks a producer: when the buffer is full the event is dropped and counted.
type Channel struct {
	mu      sync.RWMutex // guards closed against concurrent Publish
	closed  bool
	ch      chan Message
	dropped atomic.Uint64
}

func NewChannel(size int) *Channel {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Channel{ch: make(chan Message, size)}
}

// Publish enqueues ev followed by an end-of-cycle marker.
// It reports false when ev was dropped (buffer full or channel closed).
func (c *Channel) Publish(ev Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.ch <- Message{Event: &ev}:
	default:
		c.dropped.Add(1)
		return false
	}

	// The marker is best effort; losing it loses no state.
	select {
	case c.ch <- Message{}:
	default:
	}
	return true
}

// Drain hands every currently queued event to fn and returns how many it handed over.
// Markers are skipped. It never waits for producers.
func (c *Channel) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case m, ok := <-c.ch:
			if !ok {
				return n
			}
			if m.IsMarker() {
				continue
			}
			fn(*m.Event)
			n++
		default:
			return n
		}
	}
}

// Dropped returns the number of events lost to a full buffer so far.
func (c *Channel) Dropped() uint64 {
	return c.dropped.Load()
}

// Len returns the number of queued messages, markers included.
func (c *Channel) Len() int {
	return len(c.ch)
}

func (c *Channel) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close stops accepting events. Already queued events can still be drained.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
