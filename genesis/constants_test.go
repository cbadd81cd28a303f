package genesis

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/wire"
)

func TestNewConstantsLivePortsAndMagic(t *testing.T) {
	c, err := NewConstants(Live)
	if err != nil {
		t.Fatalf("new constants: %v", err)
	}
	if c.WireMagic != wire.NetworkLive {
		t.Fatalf("expected live wire magic, got %v", c.WireMagic)
	}
	if c.PeeringPort != 7075 || c.RPCPort != 7076 || c.WebSocketPort != 7078 {
		t.Fatalf("unexpected ports: %+v", c)
	}
	if c.GenesisAccount.IsZero() {
		t.Fatalf("expected live genesis account to decode to a non-zero key")
	}
}

func TestNewConstantsDevAndBetaPorts(t *testing.T) {
	dev, err := NewConstants(Dev)
	if err != nil {
		t.Fatalf("dev: %v", err)
	}
	if dev.PeeringPort != 44000 {
		t.Fatalf("expected dev port 44000, got %d", dev.PeeringPort)
	}

	beta, err := NewConstants(Beta)
	if err != nil {
		t.Fatalf("beta: %v", err)
	}
	if beta.PeeringPort != 54000 {
		t.Fatalf("expected beta port 54000, got %d", beta.PeeringPort)
	}
}

func TestNewConstantsRejectsUnknownNetwork(t *testing.T) {
	if _, err := NewConstants(Name("nonsense")); err != ErrUnknownNetwork {
		t.Fatalf("expected ErrUnknownNetwork, got %v", err)
	}
}

func TestEpochSignerAdapter(t *testing.T) {
	c, err := NewConstants(Test)
	if err != nil {
		t.Fatalf("new constants: %v", err)
	}
	var signer [32]byte
	signer[0] = 0x42
	c.EpochSigners[1] = signer

	acct, ok := c.EpochSigner(1)
	if !ok || acct != signer {
		t.Fatalf("expected epoch 1 signer to resolve")
	}
	if _, ok := c.EpochSigner(2); ok {
		t.Fatalf("expected epoch 2 signer to be unset")
	}
}
