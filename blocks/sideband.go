package blocks

import "github.com/stjet/rsban-node-sub005/primitives"

// Sideband is metadata the ledger derives and attaches to a block once
// it has been applied; it is never part of the block's signed content
// or hash, only of its stored representation.
type Sideband struct {
	Successor primitives.Hash // zero if this is the chain head
	Account   primitives.Account
	Balance   primitives.Amount
	Height    uint64 // 1-indexed position on the account chain
	Timestamp uint64 // unix seconds at local application time
	Details   SidebandDetails
}

// SidebandDetails classifies the block's effect for fast lookup
// without re-deriving it from chain context.
type SidebandDetails struct {
	Epoch      Epoch
	IsSend     bool
	IsReceive  bool
	IsEpoch    bool
}

// ProcessResult enumerates every outcome of attempting to apply a
// block to the ledger. Exactly one variant is returned per attempt;
// only Progress represents a successfully-applied block.
type ProcessResult int

const (
	Progress ProcessResult = iota
	BadSignature
	Old
	Fork
	GapPrevious
	GapSource
	GapEpochOpenPending
	OpenedBurnAccount
	BalanceMismatch
	RepresentativeMismatch
	BlockPosition
	NegativeSpend
	Unreceivable
	InsufficientWork
)

func (r ProcessResult) String() string {
	switch r {
	case Progress:
		return "progress"
	case BadSignature:
		return "bad_signature"
	case Old:
		return "old"
	case Fork:
		return "fork"
	case GapPrevious:
		return "gap_previous"
	case GapSource:
		return "gap_source"
	case GapEpochOpenPending:
		return "gap_epoch_open_pending"
	case OpenedBurnAccount:
		return "opened_burn_account"
	case BalanceMismatch:
		return "balance_mismatch"
	case RepresentativeMismatch:
		return "representative_mismatch"
	case BlockPosition:
		return "block_position"
	case NegativeSpend:
		return "negative_spend"
	case Unreceivable:
		return "unreceivable"
	case InsufficientWork:
		return "insufficient_work"
	default:
		return "unknown"
	}
}
