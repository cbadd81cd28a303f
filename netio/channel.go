package netio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stjet/rsban-node-sub005/internal/metrics"
)

// ChannelID identifies a Channel within its owning Network. Per the
// network registry's ownership rule, a Channel only ever holds its own
// ID and a pointer back to the Network — never the reverse map — so
// the registry is the single place that can enumerate or mutate the
// peer set.
type ChannelID uint64

// ErrChannelClosed is returned by SendBuffer/TrySend once the channel
// has been closed (by timeout, protocol error, or explicit shutdown).
var ErrChannelClosed = errors.New("netio: channel closed")

// Sink is the transport a Channel's writer goroutine drains its
// per-traffic-type queues into. A real implementation wraps a TCP
// connection; tests use an in-memory fake.
type Sink interface {
	Write(payload []byte) error
}

// Channel is one accepted or initiated TCP connection. Outbound
// traffic is queued per TrafficType (bounded, QueueCapacity entries
// each) and drained by a single writer goroutine per channel, shaped
// by a shared Limiter.
type Channel struct {
	id         ChannelID
	remoteAddr string
	network    *Network
	sink       Sink
	limiter    *Limiter

	queues [trafficTypeCount]chan []byte

	lastActivity atomic.Int64 // unix nanos

	closeOnce sync.Once
	done      chan struct{}
}

func newChannel(id ChannelID, remoteAddr string, net *Network, sink Sink, limiter *Limiter) *Channel {
	c := &Channel{
		id:         id,
		remoteAddr: remoteAddr,
		network:    net,
		sink:       sink,
		limiter:    limiter,
		done:       make(chan struct{}),
	}
	for i := range c.queues {
		c.queues[i] = make(chan []byte, QueueCapacity)
	}
	c.touch(time.Now())
	return c
}

// ID returns the channel's registry identifier.
func (c *Channel) ID() ChannelID { return c.id }

// RemoteAddr returns the channel's remote network address.
func (c *Channel) RemoteAddr() string { return c.remoteAddr }

func (c *Channel) touch(now time.Time) { c.lastActivity.Store(now.UnixNano()) }

// LastActivity reports the last time a message was enqueued or
// delivered on this channel.
func (c *Channel) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// SendBuffer enqueues payload on the given traffic class's queue. With
// policy NoDrop it blocks (cooperatively, via ctx) until the queue has
// room; with CanDrop it drops immediately and records a stat rather
// than blocking.
func (c *Channel) SendBuffer(ctx context.Context, tt TrafficType, payload []byte, policy DropPolicy) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	q := c.queues[tt]
	switch policy {
	case CanDrop:
		select {
		case q <- payload:
			c.touch(time.Now())
			return nil
		default:
			metrics.Inc(metrics.StatNetwork, metrics.DetailType("drop_"+tt.String()), metrics.DirectionOut)
			return nil
		}
	default: // NoDrop
		select {
		case q <- payload:
			c.touch(time.Now())
			return nil
		case <-c.done:
			return ErrChannelClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TrySend is shorthand for SendBuffer with DropPolicy::CanDrop.
func (c *Channel) TrySend(tt TrafficType, payload []byte) error {
	return c.SendBuffer(context.Background(), tt, payload, CanDrop)
}

// runWriter drains every traffic-type queue in priority order
// (VoteRebroadcast, then Generic, then Bootstrap) shaping throughput
// through the channel's limiter, until the channel is closed.
func (c *Channel) runWriter() {
	priority := [trafficTypeCount]TrafficType{VoteRebroadcast, Generic, Bootstrap}
	for {
		select {
		case <-c.done:
			return
		default:
		}

		sent := false
		for _, tt := range priority {
			select {
			case payload := <-c.queues[tt]:
				c.writeThrottled(payload)
				sent = true
			default:
			}
		}
		if !sent {
			select {
			case <-c.done:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

func (c *Channel) writeThrottled(payload []byte) {
	if c.limiter != nil {
		for {
			ok, retryAfter := c.limiter.TryToFulfill(len(payload))
			if ok {
				break
			}
			select {
			case <-c.done:
				return
			case <-time.After(retryAfter):
			}
		}
	}
	if c.sink != nil {
		_ = c.sink.Write(payload)
	}
	c.touch(time.Now())
}

// Close shuts the channel down, stopping its writer goroutine. Safe to
// call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// IsClosed reports whether Close has been called.
func (c *Channel) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
