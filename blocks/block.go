// Package blocks defines the block model: the state block that every
// account chain is built from today, the legacy block variants kept
// only so old chains remain walkable, and the sideband metadata the
// ledger attaches to each block once it is confirmed into a chain.
package blocks

import (
	"sync/atomic"

	"github.com/stjet/rsban-node-sub005/primitives"
)

// BlockType tags which wire/storage variant a block is. State blocks
// are the only kind new accounts can produce; the legacy kinds exist
// solely so pre-unification chains remain walkable end to end.
type BlockType uint8

const (
	BlockTypeInvalid BlockType = iota
	BlockTypeState
	BlockTypeLegacyOpen
	BlockTypeLegacySend
	BlockTypeLegacyReceive
	BlockTypeLegacyChange
)

func (t BlockType) String() string {
	switch t {
	case BlockTypeState:
		return "state"
	case BlockTypeLegacyOpen:
		return "open"
	case BlockTypeLegacySend:
		return "send"
	case BlockTypeLegacyReceive:
		return "receive"
	case BlockTypeLegacyChange:
		return "change"
	default:
		return "invalid"
	}
}

// Epoch identifies the ledger epoch upgrade level of an account at a
// given block. Epoch upgrades are represented as ordinary state
// blocks with a reserved link value; they carry no balance change.
type Epoch uint8

const (
	EpochUnopened Epoch = iota // account has never been opened
	Epoch0
	Epoch1
	Epoch2
)

func (e Epoch) String() string {
	switch e {
	case Epoch0:
		return "epoch_0"
	case Epoch1:
		return "epoch_1"
	case Epoch2:
		return "epoch_2"
	default:
		return "unopened"
	}
}

// Block is the common capability set every block variant exposes,
// replacing virtual dispatch over block kinds with an explicit
// interface implemented by each variant struct.
type Block interface {
	Type() BlockType
	Hash() primitives.Hash
	Root() primitives.Hash
	Account() primitives.Account
	Previous() primitives.Hash
	Representative() primitives.Account
	Balance() primitives.Amount
	Link() primitives.Hash
	Signature() primitives.Signature
	Work() uint64
}

// StateBlock is the single block format all current chains use. Its
// fields fully determine the account's post-apply state: the block
// itself is the ledger entry, there is no separate "transaction".
type StateBlock struct {
	AccountField        primitives.Account
	PreviousField       primitives.Hash
	RepresentativeField primitives.Account
	BalanceField        primitives.Amount
	LinkField           primitives.Hash
	SignatureField      primitives.Signature
	WorkField           uint64

	hash atomic.Pointer[primitives.Hash]
}

var _ Block = (*StateBlock)(nil)

func (b *StateBlock) Type() BlockType { return BlockTypeState }

// Hash returns the block's content hash, computing and caching it on
// first call. Subsequent calls return the cached value without
// re-hashing, mirroring the reference node's lazy, atomically-cached
// block hash.
func (b *StateBlock) Hash() primitives.Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	h := b.computeHash()
	b.hash.Store(&h)
	return h
}

func (b *StateBlock) computeHash() primitives.Hash {
	sh := primitives.NewBlockHasher()
	var stateBlockPreamble primitives.Hash
	stateBlockPreamble[31] = 0x06 // state block subtype discriminator
	sh.Write(stateBlockPreamble[:])
	sh.Write(b.AccountField[:])
	sh.Write(b.PreviousField[:])
	sh.Write(b.RepresentativeField[:])
	balBytes := b.BalanceField.Bytes()
	sh.Write(balBytes[:])
	sh.Write(b.LinkField[:])
	return sh.Sum()
}

// Root is previous if the account already has a chain, else the
// account itself (for the first block on a chain, there is no
// previous hash to anchor work generation to).
func (b *StateBlock) Root() primitives.Hash {
	if !b.PreviousField.IsZero() {
		return b.PreviousField
	}
	return primitives.Hash(b.AccountField)
}

func (b *StateBlock) Account() primitives.Account             { return b.AccountField }
func (b *StateBlock) Previous() primitives.Hash                { return b.PreviousField }
func (b *StateBlock) Representative() primitives.Account       { return b.RepresentativeField }
func (b *StateBlock) Balance() primitives.Amount                { return b.BalanceField }
func (b *StateBlock) Link() primitives.Hash                     { return b.LinkField }
func (b *StateBlock) Signature() primitives.Signature           { return b.SignatureField }
func (b *StateBlock) Work() uint64                              { return b.WorkField }

// Sign computes the block's signature using priv and stores it.
func (b *StateBlock) Sign(priv primitives.PrivateKey) {
	b.SignatureField = primitives.Sign(priv, b.Hash().Bytes())
}

// VerifySignature reports whether the block's signature is valid for
// its declared account.
func (b *StateBlock) VerifySignature() bool {
	return primitives.Verify(b.AccountField, b.Hash().Bytes(), b.SignatureField)
}

// ValidPredecessor reports whether prev is a legal predecessor type
// for this block. State blocks may follow any prior block type
// (legacy or state), which is what allows old chains to migrate onto
// the unified format one block at a time.
func (b *StateBlock) ValidPredecessor(prev BlockType) bool {
	return true
}
