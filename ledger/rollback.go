package ledger

import (
	"errors"

	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/storage"
)

// ErrRollbackCemented is returned when a rollback target is at or
// below the account's confirmation height: cemented blocks are
// immutable and can never be unwound.
var ErrRollbackCemented = errors.New("ledger: cannot roll back a cemented block")

// Rollback unwinds the given account's chain from its current head
// back to and including hash, restoring every ledger-visible effect
// (pending entries, representative weights, account state) to what it
// was immediately before hash was applied.
func (l *Ledger) Rollback(wtx storage.WriteTx, hash primitives.Hash) ([]primitives.Hash, error) {
	_, targetSb, err := l.GetBlock(wtx, hash)
	if err != nil {
		return nil, err
	}
	account := targetSb.Account

	confHeight, err := l.ConfirmationHeight(wtx, account)
	if err != nil {
		return nil, err
	}
	if targetSb.Height <= confHeight.Height {
		return nil, ErrRollbackCemented
	}

	info, err := l.getAccountInfo(wtx, account)
	if err != nil {
		return nil, err
	}

	var rolledBack []primitives.Hash
	cur := info.Head
	for {
		blk, sb, err := l.GetBlock(wtx, cur)
		if err != nil {
			return rolledBack, err
		}
		if err := l.undoOne(wtx, blk, sb); err != nil {
			return rolledBack, err
		}
		rolledBack = append(rolledBack, cur)
		if cur == hash {
			break
		}
		cur = blk.PreviousField
	}
	return rolledBack, nil
}

// undoOne reverses the ledger effects of a single block and removes
// it from storage, restoring its account to its pre-apply state.
func (l *Ledger) undoOne(wtx storage.WriteTx, blk *blocks.StateBlock, sb blocks.Sideband) error {
	account := sb.Account
	isOpen := blk.PreviousField.IsZero()

	var prevInfo AccountInfo
	var prevBalance primitives.Amount
	var prevRep primitives.Account
	var prevEpoch blocks.Epoch
	if !isOpen {
		prevBlk, prevSb, err := l.GetBlock(wtx, blk.PreviousField)
		if err != nil {
			return err
		}
		prevBalance = prevBlk.BalanceField
		prevRep = prevBlk.RepresentativeField
		prevEpoch = prevSb.Details.Epoch
	}

	switch {
	case sb.Details.IsSend:
		amt := prevBalance.Sub(blk.BalanceField)
		pk := PendingKey{Account: blk.LinkField, Hash: blk.Hash()}
		if err := wtx.Delete(storage.TablePending, pendingKeyBytes(pk)); err != nil {
			return err
		}
		l.Weights.Move(blk.RepresentativeField, prevRep, prevBalance)
		l.Weights.Add(blk.RepresentativeField, amt)

	case sb.Details.IsReceive:
		sendBlk, sendSb, err := l.GetBlock(wtx, blk.LinkField)
		if err != nil {
			return err
		}
		amt, err := l.BlockAmount(wtx, blk.LinkField)
		if err != nil {
			return err
		}
		pend := PendingInfo{Source: sendBlk.AccountField, Amount: amt, Epoch: sendSb.Details.Epoch}
		pk := PendingKey{Account: account, Hash: blk.LinkField}
		if err := wtx.Put(storage.TablePending, pendingKeyBytes(pk), encodePendingInfo(pend)); err != nil {
			return err
		}
		if isOpen {
			l.Weights.Subtract(blk.RepresentativeField, blk.BalanceField)
		} else {
			l.Weights.Move(blk.RepresentativeField, prevRep, prevBalance)
			l.Weights.Subtract(blk.RepresentativeField, blk.BalanceField.Sub(prevBalance))
		}

	default:
		// change or epoch: balance unchanged, only representative moved.
		if !isOpen {
			l.Weights.Move(blk.RepresentativeField, prevRep, blk.BalanceField)
		}
	}

	hash := blk.Hash()
	if err := wtx.Delete(storage.TableBlocks, hash[:]); err != nil {
		return err
	}

	if isOpen {
		if err := wtx.Delete(storage.TableAccounts, account[:]); err != nil {
			return err
		}
		if err := wtx.Delete(storage.TableFrontiers, account[:]); err != nil {
			return err
		}
		return nil
	}

	// Clear the predecessor's forward successor pointer and restore it
	// as the new chain head.
	if err := l.clearSuccessor(wtx, blk.PreviousField); err != nil {
		return err
	}
	restored := AccountInfo{
		Head:           blk.PreviousField,
		Representative: prevRep,
		Balance:        prevBalance,
		BlockCount:     sb.Height - 1,
		Epoch:          prevEpoch,
	}
	// OpenBlock never changes across a chain's lifetime; read it back
	// from the account info being replaced rather than recomputing it.
	if existing, err := l.getAccountInfo(wtx, account); err == nil {
		restored.OpenBlock = existing.OpenBlock
	}
	if err := l.putAccountInfo(wtx, account, restored); err != nil {
		return err
	}
	return wtx.Put(storage.TableFrontiers, account[:], blk.PreviousField[:])
}

func (l *Ledger) clearSuccessor(wtx storage.WriteTx, hash primitives.Hash) error {
	raw, err := wtx.Get(storage.TableBlocks, hash[:])
	if err != nil {
		return err
	}
	blk, sb, err := decodeStateBlock(raw)
	if err != nil {
		return err
	}
	sb.Successor = primitives.Hash{}
	return wtx.Put(storage.TableBlocks, hash[:], encodeStateBlock(blk, sb))
}
