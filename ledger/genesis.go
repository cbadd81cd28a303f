package ledger

import (
	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/storage"
)

// InstallGenesisBlock writes a network's hardcoded genesis open block
// directly into storage, bypassing Apply's normal open-block rule
// (which requires an existing pending entry): a genesis account is
// never the receiver of a prior send, so there is nothing to validate
// it against. This is the one place a block enters the ledger without
// going through Apply, matching how a reference node installs its
// genesis block at first startup rather than "sending" it into
// existence.
func (l *Ledger) InstallGenesisBlock(wtx storage.WriteTx, block *blocks.StateBlock) error {
	hash := block.Hash()
	var sb blocks.Sideband
	sb.Account = block.AccountField
	sb.Balance = block.BalanceField
	sb.Height = 1
	sb.Details = blocks.SidebandDetails{Epoch: blocks.Epoch0}

	if err := wtx.Put(storage.TableBlocks, hash[:], encodeStateBlock(block, sb)); err != nil {
		return err
	}
	info := AccountInfo{
		Head:           hash,
		Representative: block.RepresentativeField,
		OpenBlock:      hash,
		Balance:        block.BalanceField,
		BlockCount:     1,
		Epoch:          blocks.Epoch0,
	}
	if err := l.putAccountInfo(wtx, block.AccountField, info); err != nil {
		return err
	}
	if err := wtx.Put(storage.TableFrontiers, block.AccountField[:], hash[:]); err != nil {
		return err
	}
	l.Weights.Add(block.RepresentativeField, block.BalanceField)
	return nil
}
