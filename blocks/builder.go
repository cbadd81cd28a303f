package blocks

import "github.com/stjet/rsban-node-sub005/primitives"

// StateBlockBuilder provides a fluent construction path for state
// blocks, the only variant new code ever produces.
type StateBlockBuilder struct {
	b StateBlock
}

func NewStateBlock() *StateBlockBuilder {
	return &StateBlockBuilder{}
}

func (sb *StateBlockBuilder) Account(a primitives.Account) *StateBlockBuilder {
	sb.b.AccountField = a
	return sb
}

func (sb *StateBlockBuilder) Previous(h primitives.Hash) *StateBlockBuilder {
	sb.b.PreviousField = h
	return sb
}

func (sb *StateBlockBuilder) Representative(a primitives.Account) *StateBlockBuilder {
	sb.b.RepresentativeField = a
	return sb
}

func (sb *StateBlockBuilder) Balance(amt primitives.Amount) *StateBlockBuilder {
	sb.b.BalanceField = amt
	return sb
}

func (sb *StateBlockBuilder) Link(h primitives.Hash) *StateBlockBuilder {
	sb.b.LinkField = h
	return sb
}

func (sb *StateBlockBuilder) Work(w uint64) *StateBlockBuilder {
	sb.b.WorkField = w
	return sb
}

// Build finalizes the block. The caller is expected to call Sign
// before the block is considered complete; Build does not sign.
func (sb *StateBlockBuilder) Build() *StateBlock {
	built := sb.b
	return &built
}

// IsEpochLink reports whether link matches the canonical epoch-upgrade
// marker for the given epoch, used to recognise epoch blocks that
// carry no balance change.
func IsEpochLink(link primitives.Hash, signer primitives.Account, epoch Epoch) bool {
	marker := EpochLinkValue(epoch)
	return link == marker
}

// EpochLinkValue returns the reserved link hash that marks a state
// block as an epoch upgrade to the given epoch. Each epoch's marker is
// the Blake2b hash of a fixed ASCII tag, giving every network the same
// constants without embedding a lookup table.
func EpochLinkValue(epoch Epoch) primitives.Hash {
	switch epoch {
	case Epoch1:
		return primitives.Blake2b256([]byte("epoch v1 block"))
	case Epoch2:
		return primitives.Blake2b256([]byte("epoch v2 block"))
	default:
		return primitives.Hash{}
	}
}
