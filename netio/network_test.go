package netio

import (
	"testing"
	"time"
)

func TestCheckupClosesIdleChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChannelTimeout = time.Minute
	net := NewNetwork(cfg, nil)

	c := net.Register("peer:1", &fakeSink{})
	past := time.Now().Add(-2 * time.Minute)
	c.lastActivity.Store(past.UnixNano())

	net.Checkup(time.Now())

	if _, ok := net.Get(c.ID()); ok {
		t.Fatalf("expected idle channel to be unregistered")
	}
	if !c.IsClosed() {
		t.Fatalf("expected idle channel to be closed")
	}
}

func TestCheckupKeepsActiveChannels(t *testing.T) {
	net := NewNetwork(DefaultConfig(), nil)
	c := net.Register("peer:1", &fakeSink{})

	net.Checkup(time.Now())

	if _, ok := net.Get(c.ID()); !ok {
		t.Fatalf("expected active channel to remain registered")
	}
}

func TestCleanupPurgesClosedChannels(t *testing.T) {
	net := NewNetwork(DefaultConfig(), nil)
	c := net.Register("peer:1", &fakeSink{})
	c.Close()

	net.Cleanup(time.Now())

	if _, ok := net.Get(c.ID()); ok {
		t.Fatalf("expected closed channel purged from registry")
	}
}

type countingPurger struct{ calls int }

func (p *countingPurger) Purge(time.Time) { p.calls++ }

func TestCleanupPurgesCookieTable(t *testing.T) {
	purger := &countingPurger{}
	net := NewNetwork(DefaultConfig(), purger)
	net.Cleanup(time.Now())
	if purger.calls != 1 {
		t.Fatalf("expected cleanup to purge the cookie table once, got %d calls", purger.calls)
	}
}

func TestBuildKeepalivePayloadFillsEightEndpoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.External = Endpoint{Addr: "203.0.113.1", Port: 7075}
	net := NewNetwork(cfg, nil)
	net.Register("peer:1", &fakeSink{})
	net.Register("peer:2", &fakeSink{})

	payload := net.BuildKeepalivePayload()
	if len(payload) != 8 {
		t.Fatalf("expected 8 endpoints, got %d", len(payload))
	}
	foundExternal := false
	for _, ep := range payload {
		if ep == cfg.External {
			foundExternal = true
		}
	}
	if !foundExternal {
		t.Fatalf("expected external address to fill remaining keepalive slots")
	}
}

func TestRecordAndSampleKeepalive(t *testing.T) {
	net := NewNetwork(DefaultConfig(), nil)
	net.RecordKeepalive([]Endpoint{{Addr: "10.0.0.1", Port: 7075}})

	ep, ok := net.sampleOneKeepalive()
	if !ok || ep.Addr != "10.0.0.1" {
		t.Fatalf("expected to sample the recorded endpoint, got %+v ok=%v", ep, ok)
	}
	if _, ok := net.sampleOneKeepalive(); ok {
		t.Fatalf("expected sampled endpoint to be consumed")
	}
}
