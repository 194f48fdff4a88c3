package progress

import (
	"sync/atomic"

	"github.com/ytget/ytdx/internal/model"
)

// DefaultBufferSize is the channel capacity used by the download service
const DefaultBufferSize = 64

// Sink receives events from a running job
type Sink interface {
	Emit(model.Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(model.Event)

// Emit calls f
func (f SinkFunc) Emit(e model.Event) { f(e) }

// Channel is a bounded event queue with one producer and one consumer.
// Only the producer may call Close.
type Channel struct {
	ch      chan model.Event
	dropped atomic.Int64
}

// NewChannel creates a channel holding up to size undelivered events
func NewChannel(size int) *Channel {
	if size < 1 {
		size = DefaultBufferSize
	}
	return &Channel{ch: make(chan model.Event, size)}
}

// Emit queues e. Non-terminal events are discarded when the buffer is full;
// terminal events wait for room.
func (c *Channel) Emit(e model.Event) {
	if e.Terminal() {
		c.ch <- e
		return
	}
	select {
	case c.ch <- e:
	default:
		c.dropped.Add(1)
	}
}

// Events returns the receive side
func (c *Channel) Events() <-chan model.Event {
	return c.ch
}

// Close ends the stream
func (c *Channel) Close() {
	close(c.ch)
}

// Dropped returns how many non-terminal events were discarded
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}
