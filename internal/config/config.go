// Package config holds the node's in-process configuration surface:
// a flat struct populated however the caller likes (flags, env, test
// fixtures). No TOML/YAML loader lives here — parsing a config file
// into this struct is a named external collaborator.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stjet/rsban-node-sub005/genesis"
)

// ActiveElectionsConfig bounds the Active Elections Container.
type ActiveElectionsConfig struct {
	// Size caps the number of concurrently tracked elections.
	Size int
	// ConfirmationCache bounds the recently-cemented ring buffer.
	ConfirmationCache int
	// MaxElectionWinners caps confirmations processed per confirming
	// batch before yielding.
	MaxElectionWinners int
}

// DefaultActiveElectionsConfig mirrors the reference node's defaults.
func DefaultActiveElectionsConfig() ActiveElectionsConfig {
	return ActiveElectionsConfig{
		Size:               5000,
		ConfirmationCache:  65536,
		MaxElectionWinners: 200,
	}
}

// Config is the node's complete in-process configuration.
type Config struct {
	// DataDir is the root directory for all persisted tables.
	DataDir string

	// Network selects which genesis.Constants this node runs under.
	Network genesis.Name

	// PeeringPort is the TCP listen port for node-to-node traffic.
	// Zero means "use the network's default" (see genesis.Constants).
	PeeringPort uint16

	// ExternalAddress/ExternalPort are advertised in keepalives in
	// place of the locally-bound address, for nodes behind NAT/a
	// reverse proxy.
	ExternalAddress string
	ExternalPort    uint16

	// OnlineWeightMinimum floors the quorum_delta computation so a
	// young or thinly-voted network still requires meaningful weight
	// to confirm.
	OnlineWeightMinimum uint64

	// VoteMinimum is the representative weight below which this node
	// does not generate votes at all.
	VoteMinimum uint64

	// BootstrapConnections/BootstrapConnectionsMax bound ascending
	// bootstrap's outbound pull concurrency.
	BootstrapConnections    int
	BootstrapConnectionsMax int

	// BlockProcessorBatchMaxTime upper-bounds a single block processor
	// batch before it yields to let other work (vote application,
	// network I/O) run.
	BlockProcessorBatchMaxTime time.Duration

	// AllowLocalPeers accepts 127.0.0.0/8 and ::1 peers; true on dev
	// and beta networks, false by default on live.
	AllowLocalPeers bool

	ActiveElections ActiveElectionsConfig
}

// defaultDataDir returns the platform-specific default data directory,
// falling back to a relative directory if the home directory cannot be
// determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rsban-node"
	}
	return filepath.Join(home, ".rsban-node")
}

// Default returns a Config with the reference node's defaults for the
// named network.
func Default(network genesis.Name) Config {
	allowLocal := network != genesis.Live
	return Config{
		DataDir:                    defaultDataDir(),
		Network:                    network,
		OnlineWeightMinimum:        60000000,
		VoteMinimum:                100000,
		BootstrapConnections:       4,
		BootstrapConnectionsMax:    64,
		BlockProcessorBatchMaxTime: 500 * time.Millisecond,
		AllowLocalPeers:            allowLocal,
		ActiveElections:            DefaultActiveElectionsConfig(),
	}
}

// ErrEmptyDataDir is returned when DataDir is unset.
var ErrEmptyDataDir = errors.New("config: datadir must not be empty")

// Validate checks the configuration for internal consistency, mirroring
// the exit-code-1 "config error" boundary named in the node's external
// interfaces.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrEmptyDataDir
	}
	if c.BootstrapConnections < 0 || c.BootstrapConnections > c.BootstrapConnectionsMax {
		return fmt.Errorf("config: bootstrap_connections (%d) must be between 0 and bootstrap_connections_max (%d)", c.BootstrapConnections, c.BootstrapConnectionsMax)
	}
	if c.ActiveElections.Size <= 0 {
		return errors.New("config: active_elections.size must be positive")
	}
	if c.BlockProcessorBatchMaxTime <= 0 {
		return errors.New("config: block_processor_batch_max_time must be positive")
	}
	return nil
}
