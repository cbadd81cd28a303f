// Package ledger implements Apply/Rollback against the account-chain
// model: the algorithm that turns a signed block into ledger state
// (or rejects it with a ProcessResult) and the inverse that unwinds an
// uncemented block off the head of its chain.
package ledger

import (
	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
)

// AccountInfo is the ledger's per-account summary: everything needed
// to validate the next block on the chain without replaying history.
type AccountInfo struct {
	Head              primitives.Hash
	Representative    primitives.Account
	OpenBlock         primitives.Hash
	Balance           primitives.Amount
	BlockCount        uint64
	Epoch             blocks.Epoch
	ModifiedTimestamp uint64
}

// PendingKey identifies a pending (unreceived) send by the receiving
// account and the hash of the send block that created it.
type PendingKey struct {
	Account primitives.Account
	Hash    primitives.Hash
}

// PendingInfo is the value associated with a PendingKey: who sent it,
// how much, and at what epoch, so the receiving block can validate
// against it without looking the send block up again.
type PendingInfo struct {
	Source primitives.Account
	Amount primitives.Amount
	Epoch  blocks.Epoch
}

// ConfirmationHeightInfo records how far an account's chain has been
// cemented: Height is the 1-indexed height of the highest cemented
// block, Frontier is that block's hash.
type ConfirmationHeightInfo struct {
	Height   uint64
	Frontier primitives.Hash
}
