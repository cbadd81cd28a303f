package blocks

import (
	"sync/atomic"

	"github.com/stjet/rsban-node-sub005/primitives"
)

// Legacy block variants predate the state block unification. No new
// chain may produce them, but existing chains that have not yet
// migrated must remain fully walkable, so each variant keeps its own
// struct and hashing rule rather than being translated into a
// StateBlock on load.

// LegacyOpenBlock is the first block of a pre-unification account: it
// has no previous hash, only a source block to receive from.
type LegacyOpenBlock struct {
	SourceField         primitives.Hash
	RepresentativeField primitives.Account
	AccountField        primitives.Account
	SignatureField      primitives.Signature
	WorkField           uint64

	hash atomic.Pointer[primitives.Hash]
}

var _ Block = (*LegacyOpenBlock)(nil)

func (b *LegacyOpenBlock) Type() BlockType { return BlockTypeLegacyOpen }

func (b *LegacyOpenBlock) Hash() primitives.Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	sh := primitives.NewBlockHasher()
	sh.Write(b.SourceField[:])
	sh.Write(b.RepresentativeField[:])
	sh.Write(b.AccountField[:])
	h := sh.Sum()
	b.hash.Store(&h)
	return h
}

func (b *LegacyOpenBlock) Root() primitives.Hash               { return primitives.Hash(b.AccountField) }
func (b *LegacyOpenBlock) Account() primitives.Account          { return b.AccountField }
func (b *LegacyOpenBlock) Previous() primitives.Hash            { return primitives.Hash{} }
func (b *LegacyOpenBlock) Representative() primitives.Account   { return b.RepresentativeField }
func (b *LegacyOpenBlock) Balance() primitives.Amount           { return primitives.Amount{} }
func (b *LegacyOpenBlock) Link() primitives.Hash                { return b.SourceField }
func (b *LegacyOpenBlock) Signature() primitives.Signature      { return b.SignatureField }
func (b *LegacyOpenBlock) Work() uint64                         { return b.WorkField }

// ValidPredecessor reports false unconditionally: an open block has
// no predecessor by definition, it is only ever the chain's first
// entry.
func (b *LegacyOpenBlock) ValidPredecessor(prev BlockType) bool { return false }

// LegacySendBlock decreases the account balance and names a
// destination account as the link.
type LegacySendBlock struct {
	PreviousField  primitives.Hash
	DestinationField primitives.Account
	BalanceField   primitives.Amount
	SignatureField primitives.Signature
	WorkField      uint64

	accountHint primitives.Account // resolved from chain context, not wire-encoded
	hash        atomic.Pointer[primitives.Hash]
}

var _ Block = (*LegacySendBlock)(nil)

func (b *LegacySendBlock) Type() BlockType { return BlockTypeLegacySend }

func (b *LegacySendBlock) Hash() primitives.Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	sh := primitives.NewBlockHasher()
	sh.Write(b.PreviousField[:])
	sh.Write(b.DestinationField[:])
	balBytes := b.BalanceField.Bytes()
	sh.Write(balBytes[:])
	h := sh.Sum()
	b.hash.Store(&h)
	return h
}

func (b *LegacySendBlock) Root() primitives.Hash             { return b.PreviousField }
func (b *LegacySendBlock) Account() primitives.Account       { return b.accountHint }
func (b *LegacySendBlock) Previous() primitives.Hash         { return b.PreviousField }
func (b *LegacySendBlock) Representative() primitives.Account { return primitives.Account{} }
func (b *LegacySendBlock) Balance() primitives.Amount        { return b.BalanceField }
func (b *LegacySendBlock) Link() primitives.Hash             { return primitives.Hash(b.DestinationField) }
func (b *LegacySendBlock) Signature() primitives.Signature   { return b.SignatureField }
func (b *LegacySendBlock) Work() uint64                      { return b.WorkField }
func (b *LegacySendBlock) ValidPredecessor(prev BlockType) bool {
	switch prev {
	case BlockTypeLegacyOpen, BlockTypeLegacySend, BlockTypeLegacyReceive, BlockTypeLegacyChange:
		return true
	default:
		return false
	}
}

// LegacyReceiveBlock credits the account with funds sent by a prior
// send block identified by SourceField.
type LegacyReceiveBlock struct {
	PreviousField  primitives.Hash
	SourceField    primitives.Hash
	SignatureField primitives.Signature
	WorkField      uint64

	accountHint primitives.Account
	balanceHint primitives.Amount
	hash        atomic.Pointer[primitives.Hash]
}

var _ Block = (*LegacyReceiveBlock)(nil)

func (b *LegacyReceiveBlock) Type() BlockType { return BlockTypeLegacyReceive }

func (b *LegacyReceiveBlock) Hash() primitives.Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	sh := primitives.NewBlockHasher()
	sh.Write(b.PreviousField[:])
	sh.Write(b.SourceField[:])
	h := sh.Sum()
	b.hash.Store(&h)
	return h
}

func (b *LegacyReceiveBlock) Root() primitives.Hash               { return b.PreviousField }
func (b *LegacyReceiveBlock) Account() primitives.Account          { return b.accountHint }
func (b *LegacyReceiveBlock) Previous() primitives.Hash            { return b.PreviousField }
func (b *LegacyReceiveBlock) Representative() primitives.Account   { return primitives.Account{} }
func (b *LegacyReceiveBlock) Balance() primitives.Amount           { return b.balanceHint }
func (b *LegacyReceiveBlock) Link() primitives.Hash                { return b.SourceField }
func (b *LegacyReceiveBlock) Signature() primitives.Signature      { return b.SignatureField }
func (b *LegacyReceiveBlock) Work() uint64                         { return b.WorkField }
func (b *LegacyReceiveBlock) ValidPredecessor(prev BlockType) bool {
	switch prev {
	case BlockTypeLegacyOpen, BlockTypeLegacySend, BlockTypeLegacyReceive, BlockTypeLegacyChange:
		return true
	default:
		return false
	}
}

// LegacyChangeBlock alters the account's chosen representative
// without moving funds.
type LegacyChangeBlock struct {
	PreviousField       primitives.Hash
	RepresentativeField primitives.Account
	SignatureField      primitives.Signature
	WorkField           uint64

	accountHint primitives.Account
	balanceHint primitives.Amount
	hash        atomic.Pointer[primitives.Hash]
}

var _ Block = (*LegacyChangeBlock)(nil)

func (b *LegacyChangeBlock) Type() BlockType { return BlockTypeLegacyChange }

func (b *LegacyChangeBlock) Hash() primitives.Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	sh := primitives.NewBlockHasher()
	sh.Write(b.PreviousField[:])
	sh.Write(b.RepresentativeField[:])
	h := sh.Sum()
	b.hash.Store(&h)
	return h
}

func (b *LegacyChangeBlock) Root() primitives.Hash             { return b.PreviousField }
func (b *LegacyChangeBlock) Account() primitives.Account        { return b.accountHint }
func (b *LegacyChangeBlock) Previous() primitives.Hash          { return b.PreviousField }
func (b *LegacyChangeBlock) Representative() primitives.Account { return b.RepresentativeField }
func (b *LegacyChangeBlock) Balance() primitives.Amount         { return b.balanceHint }
func (b *LegacyChangeBlock) Link() primitives.Hash              { return primitives.Hash{} }
func (b *LegacyChangeBlock) Signature() primitives.Signature    { return b.SignatureField }
func (b *LegacyChangeBlock) Work() uint64                       { return b.WorkField }
func (b *LegacyChangeBlock) ValidPredecessor(prev BlockType) bool {
	switch prev {
	case BlockTypeLegacyOpen, BlockTypeLegacySend, BlockTypeLegacyReceive, BlockTypeLegacyChange:
		return true
	default:
		return false
	}
}
