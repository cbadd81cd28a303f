package main

import (
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/stjet/rsban-node-sub005/genesis"
	"github.com/stjet/rsban-node-sub005/internal/config"
)

// flags defines the CLI surface, bound directly onto a config.Config
// via cli.Context.String/Int/Bool lookups in applyFlags below — the
// same "flags describe a Config" shape as the teacher's flagSet, just
// backed by urfave/cli instead of a hand-rolled flag.FlagSet.
func flags(defaults config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "network",
			Value: string(defaults.Network),
			Usage: "network to run (live, beta, dev, test)",
		},
		&cli.StringFlag{
			Name:  "datadir",
			Value: defaults.DataDir,
			Usage: "data directory path",
		},
		&cli.IntFlag{
			Name:  "peering-port",
			Value: int(defaults.PeeringPort),
			Usage: "TCP listen port for node-to-node traffic (0 = network default)",
		},
		&cli.StringFlag{
			Name:  "external-address",
			Value: defaults.ExternalAddress,
			Usage: "address advertised in keepalives in place of the local bind address",
		},
		&cli.IntFlag{
			Name:  "external-port",
			Value: int(defaults.ExternalPort),
			Usage: "port advertised in keepalives in place of the local bind port",
		},
		&cli.Uint64Flag{
			Name:  "online-weight-minimum",
			Value: defaults.OnlineWeightMinimum,
			Usage: "floor for the quorum_delta computation",
		},
		&cli.Uint64Flag{
			Name:  "vote-minimum",
			Value: defaults.VoteMinimum,
			Usage: "representative weight below which this node does not vote",
		},
		&cli.IntFlag{
			Name:  "bootstrap-connections",
			Value: defaults.BootstrapConnections,
			Usage: "steady-state outbound bootstrap pull concurrency",
		},
		&cli.IntFlag{
			Name:  "bootstrap-connections-max",
			Value: defaults.BootstrapConnectionsMax,
			Usage: "maximum outbound bootstrap pull concurrency",
		},
		&cli.BoolFlag{
			Name:  "allow-local-peers",
			Value: defaults.AllowLocalPeers,
			Usage: "accept peers on loopback/private addresses",
		},
		&cli.IntFlag{
			Name:  "active-elections-size",
			Value: defaults.ActiveElections.Size,
			Usage: "maximum number of concurrently tracked elections",
		},
		&cli.IntFlag{
			Name:  "verbosity",
			Value: 3,
			Usage: "log level 0-4 (0=error, 1=warn, 2-3=info, 4=debug)",
		},
	}
}

// applyFlags overlays ctx's flag values onto cfg, leaving any flag the
// caller never set at its pre-populated default.
func applyFlags(cfg *config.Config, ctx *cli.Context) {
	cfg.Network = genesis.Name(ctx.String("network"))
	cfg.DataDir = ctx.String("datadir")
	cfg.PeeringPort = uint16(ctx.Int("peering-port"))
	cfg.ExternalAddress = ctx.String("external-address")
	cfg.ExternalPort = uint16(ctx.Int("external-port"))
	cfg.OnlineWeightMinimum = ctx.Uint64("online-weight-minimum")
	cfg.VoteMinimum = ctx.Uint64("vote-minimum")
	cfg.BootstrapConnections = ctx.Int("bootstrap-connections")
	cfg.BootstrapConnectionsMax = ctx.Int("bootstrap-connections-max")
	cfg.AllowLocalPeers = ctx.Bool("allow-local-peers")
	cfg.ActiveElections.Size = ctx.Int("active-elections-size")
}

// verbosityToLogLevel maps the node's 0-4 verbosity scale onto slog's
// level constants, the same mapping role the teacher's
// node.VerbosityToLogLevel fills for eth2030's 0-5 scale.
func verbosityToLogLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v >= 4:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
