// Package genesis holds the per-network constants a node is built
// against: protocol version triple, wire network magic, default ports,
// the canonical genesis account, and the epoch-signer account for each
// epoch upgrade. These are process-wide and immutable once the node
// selects a network at startup, matching how the reference node treats
// its "active network" selection as fixed configuration rather than
// runtime-mutable state.
package genesis

import (
	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/wire"
)

// Name identifies one of the four networks a build may target.
type Name string

const (
	Live Name = "live"
	Beta Name = "beta"
	Dev  Name = "dev"
	Test Name = "test"
)

// ProtocolVersion is the three-byte (max, using, min) version triple
// carried in every message header.
type ProtocolVersion struct {
	Max   byte
	Using byte
	Min   byte
}

// Constants bundles everything a node's subsystems need to know about
// the network they're running on. It is constructed once at process
// startup and passed by reference everywhere a subsystem needs it,
// never mutated afterward.
type Constants struct {
	Network       Name
	WireMagic     wire.Network
	Protocol      ProtocolVersion
	PeeringPort   int
	RPCPort       int
	WebSocketPort int

	GenesisAccount        primitives.Account
	GenesisRepresentative primitives.Account
	// GenesisOpenBlock is the network's embedded canonical open block,
	// supplied by the caller (loaded from the network's bundled genesis
	// JSON) rather than hardcoded here: its signature and work are
	// network-specific data this package has no authoritative source
	// for, not a behavior this package defines.
	GenesisOpenBlock *blocks.StateBlock

	// EpochSigners maps each defined epoch version to the account whose
	// signature is accepted on that epoch's upgrade block.
	EpochSigners map[blocks.Epoch]primitives.Account
}

// EpochSigner adapts Constants into the ledger.EpochSigner function
// shape consumed by ledger.New.
func (c *Constants) EpochSigner(epoch blocks.Epoch) (primitives.Account, bool) {
	acct, ok := c.EpochSigners[epoch]
	return acct, ok
}

// genesisAccounts are the real, network-identifying genesis account
// addresses; everything else about a network's genesis block (its
// signature, work, and any non-default representative) is supplied by
// the caller via Constants.GenesisOpenBlock.
var genesisAccounts = map[Name]string{
	Live: "nano_3t6k35gi95xu6tergt6p69ck76ogmitsa8mnijtpxm9fkcm736xtoncuohr3",
}

// NewConstants builds the fixed constants for name, decoding the
// well-known genesis account address where one is defined for the
// network. For Beta/Dev/Test, callers supply GenesisAccount themselves
// (those networks mint a fresh key pair per deployment) by overwriting
// the returned value's GenesisAccount/GenesisRepresentative fields
// before use.
func NewConstants(name Name) (*Constants, error) {
	c := &Constants{
		Network:      name,
		EpochSigners: make(map[blocks.Epoch]primitives.Account),
	}

	switch name {
	case Live:
		c.WireMagic = wire.NetworkLive
		c.Protocol = ProtocolVersion{Max: 0x15, Using: 0x15, Min: 0x14}
		c.PeeringPort = 7075
	case Beta:
		c.WireMagic = wire.NetworkBeta
		c.Protocol = ProtocolVersion{Max: 0x15, Using: 0x15, Min: 0x14}
		c.PeeringPort = 54000
	case Dev:
		c.WireMagic = wire.NetworkDev
		c.Protocol = ProtocolVersion{Max: 0x15, Using: 0x15, Min: 0x14}
		c.PeeringPort = 44000
	case Test:
		c.WireMagic = wire.NetworkTest
		c.Protocol = ProtocolVersion{Max: 0x15, Using: 0x15, Min: 0x14}
		c.PeeringPort = 17075
	default:
		return nil, ErrUnknownNetwork
	}
	c.RPCPort = 7076
	c.WebSocketPort = 7078

	if addr, ok := genesisAccounts[name]; ok {
		account, err := primitives.DecodeAddress(addr)
		if err != nil {
			return nil, err
		}
		c.GenesisAccount = account
		c.GenesisRepresentative = account
	}

	return c, nil
}
