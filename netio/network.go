package netio

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/stjet/rsban-node-sub005/internal/log"
	"github.com/stjet/rsban-node-sub005/internal/metrics"
)

// Endpoint is a peer's network address, as carried in a Keepalive
// payload and used to initiate a reachout connection.
type Endpoint struct {
	Addr string
	Port uint16
}

// Config bounds the Network's timing and bandwidth behavior.
type Config struct {
	// ChannelTimeout is how long a channel may sit idle before the
	// checkup loop closes it.
	ChannelTimeout time.Duration
	// CheckupInterval is how often the checkup loop runs (2s per §4.J).
	CheckupInterval time.Duration
	// CleanupInterval is how often the cleanup loop purges dead
	// channels and expired handshake cookies (5s live, 1s dev).
	CleanupInterval time.Duration
	// KeepalivePeriod is how often a Keepalive is sent to every
	// channel (15s live, 1s dev).
	KeepalivePeriod time.Duration
	// MergePeriod is how often the reachout loop samples a recent
	// keepalive and attempts new connections.
	MergePeriod time.Duration

	LimiterRateBytesPerSec float64
	LimiterBurstRatio      float64

	External Endpoint
}

// DefaultConfig returns the live-network timing constants.
func DefaultConfig() Config {
	return Config{
		ChannelTimeout:         180 * time.Second,
		CheckupInterval:        2 * time.Second,
		CleanupInterval:        5 * time.Second,
		KeepalivePeriod:        15 * time.Second,
		MergePeriod:            5 * time.Second,
		LimiterRateBytesPerSec: 10 * 1024 * 1024,
		LimiterBurstRatio:      2,
	}
}

// CookiePurger purges expired handshake state, called from the
// network-level cleanup loop so cookie purging needs no timer of its
// own. Cleanup passes now minus ChannelTimeout as cutoff;
// handshake.Machine ignores it and applies its own SyncCookieCutoff.
type CookiePurger interface {
	Purge(cutoff time.Time)
}

// Dialer opens an outbound connection to ep, returning the Sink its
// writer goroutine will drain into and the remote address to register
// the resulting Channel under.
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (sink Sink, remoteAddr string, err error)
}

// Network owns the set of live channels plus the checkup, cleanup,
// keepalive, and reachout loops that keep it healthy. Channels never
// hold a reference to other channels or to the registry's internals —
// only their own ChannelID and a pointer back to *Network — so Network
// is the sole place the peer set can be enumerated or mutated.
type Network struct {
	cfg Config
	log *log.Logger

	mu       sync.RWMutex
	channels map[ChannelID]*Channel
	nextID   uint64

	limiter *Limiter

	cookies CookiePurger

	// recentKeepalives holds endpoints learned from peers' Keepalive
	// messages, sampled by the reachout loop.
	recentMu         sync.Mutex
	recentKeepalives []Endpoint
}

// NewNetwork builds a Network ready to register channels and run its
// maintenance loops.
func NewNetwork(cfg Config, cookies CookiePurger) *Network {
	return &Network{
		cfg:      cfg,
		log:      log.Module("netio"),
		channels: make(map[ChannelID]*Channel),
		limiter:  NewLimiter(cfg.LimiterRateBytesPerSec, cfg.LimiterBurstRatio),
		cookies:  cookies,
	}
}

// Register adds a new channel for an accepted or dialed connection and
// starts its writer goroutine.
func (n *Network) Register(remoteAddr string, sink Sink) *Channel {
	n.mu.Lock()
	n.nextID++
	id := ChannelID(n.nextID)
	c := newChannel(id, remoteAddr, n, sink, n.limiter)
	n.channels[id] = c
	n.mu.Unlock()

	metrics.Inc(metrics.StatNetwork, "channel_registered", metrics.DirectionNA)
	go c.runWriter()
	return c
}

// Unregister removes and closes a channel.
func (n *Network) Unregister(id ChannelID) {
	n.mu.Lock()
	c, ok := n.channels[id]
	if ok {
		delete(n.channels, id)
	}
	n.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Get returns the channel registered under id, if any.
func (n *Network) Get(id ChannelID) (*Channel, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.channels[id]
	return c, ok
}

// Channels returns a snapshot of every currently registered channel.
func (n *Network) Channels() []*Channel {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Channel, 0, len(n.channels))
	for _, c := range n.channels {
		out = append(out, c)
	}
	return out
}

// Len reports the number of registered channels.
func (n *Network) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.channels)
}

// Checkup closes every channel that has been idle longer than
// ChannelTimeout, as of now.
func (n *Network) Checkup(now time.Time) {
	for _, c := range n.Channels() {
		if now.Sub(c.LastActivity()) > n.cfg.ChannelTimeout {
			n.log.Info("closing idle channel", "remote", c.RemoteAddr())
			n.Unregister(c.id)
		}
	}
}

// Cleanup purges closed channels from the registry and, if a
// CookiePurger was configured, calls its Purge with a cutoff of now
// minus ChannelTimeout.
func (n *Network) Cleanup(now time.Time) {
	n.mu.Lock()
	for id, c := range n.channels {
		if c.IsClosed() {
			delete(n.channels, id)
		}
	}
	n.mu.Unlock()

	if n.cookies != nil {
		n.cookies.Purge(now.Add(-n.cfg.ChannelTimeout))
	}
}

// RecordKeepalive remembers peer, for the reachout loop to sample
// later.
func (n *Network) RecordKeepalive(peers []Endpoint) {
	n.recentMu.Lock()
	defer n.recentMu.Unlock()
	n.recentKeepalives = append(n.recentKeepalives, peers...)
	const maxRemembered = 4096
	if len(n.recentKeepalives) > maxRemembered {
		n.recentKeepalives = n.recentKeepalives[len(n.recentKeepalives)-maxRemembered:]
	}
}

// sampleSelfGenerated picks up to n endpoints from the currently
// registered channels' remote addresses, used to fill the
// self-generated 75% of a Keepalive payload.
func (n *Network) sampleSelfGenerated(count int) []Endpoint {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Endpoint, 0, count)
	for _, c := range n.channels {
		if len(out) >= count {
			break
		}
		out = append(out, Endpoint{Addr: c.RemoteAddr()})
	}
	return out
}

// BuildKeepalivePayload assembles the 8 endpoints a Keepalive carries:
// roughly 75% sampled from our own live channels, the rest enriched
// with our own external address so a peer always learns at least one
// route back to us.
func (n *Network) BuildKeepalivePayload() [8]Endpoint {
	var payload [8]Endpoint
	selfGenerated := n.sampleSelfGenerated(6)
	i := 0
	for ; i < len(selfGenerated) && i < 6; i++ {
		payload[i] = selfGenerated[i]
	}
	for ; i < 8; i++ {
		payload[i] = n.cfg.External
	}
	return payload
}

// RunLoops starts the checkup, cleanup, and keepalive maintenance
// loops and blocks until ctx is cancelled. broadcast is called once
// per keepalive tick with the payload to send to every channel.
func (n *Network) RunLoops(ctx context.Context, broadcastKeepalive func([8]Endpoint)) {
	checkup := time.NewTicker(n.cfg.CheckupInterval)
	cleanup := time.NewTicker(n.cfg.CleanupInterval)
	keepalive := time.NewTicker(n.cfg.KeepalivePeriod)
	defer checkup.Stop()
	defer cleanup.Stop()
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-checkup.C:
			n.Checkup(now)
		case now := <-cleanup.C:
			n.Cleanup(now)
		case <-keepalive.C:
			if broadcastKeepalive != nil {
				broadcastKeepalive(n.BuildKeepalivePayload())
			}
		}
	}
}

// RunReachout samples one recently-learned keepalive endpoint every
// MergePeriod and dials it via d, throttling between attempts so a
// burst of keepalives doesn't fan out into a burst of connection
// attempts.
func (n *Network) RunReachout(ctx context.Context, d Dialer) {
	ticker := time.NewTicker(n.cfg.MergePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ep, ok := n.sampleOneKeepalive()
			if !ok {
				continue
			}
			sink, remoteAddr, err := d.Dial(ctx, ep)
			if err != nil {
				n.log.Warn("reachout dial failed", "addr", ep.Addr, "error", err)
				continue
			}
			n.Register(remoteAddr, sink)
		}
	}
}

func (n *Network) sampleOneKeepalive() (Endpoint, bool) {
	n.recentMu.Lock()
	defer n.recentMu.Unlock()
	if len(n.recentKeepalives) == 0 {
		return Endpoint{}, false
	}
	idx := rand.Intn(len(n.recentKeepalives))
	ep := n.recentKeepalives[idx]
	n.recentKeepalives = append(n.recentKeepalives[:idx], n.recentKeepalives[idx+1:]...)
	return ep, true
}
