package ledger

import (
	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
	"github.com/stjet/rsban-node-sub005/storage"
)

// BurnAccount is the canonical all-zero account. Opening it is
// rejected outright: any funds sent there are deliberately destroyed,
// never recoverable by applying an open block against it.
var BurnAccount primitives.Account

// EpochSigner resolves which account's signature is accepted for an
// epoch-upgrade block of the given epoch. Supplied by genesis
// configuration; a nil-returning default rejects all epoch blocks.
type EpochSigner func(epoch blocks.Epoch) (primitives.Account, bool)

// WorkThresholds holds the minimum work difficulty for each block
// class. Different networks run at different difficulty: live and
// beta use the production values, a local test network can run at
// near-zero difficulty so fixtures don't need a real PoW search.
type WorkThresholds struct {
	Send    uint64
	Receive uint64
}

// DefaultWorkThresholds returns the production difficulty levels.
func DefaultWorkThresholds() WorkThresholds {
	return WorkThresholds{Send: primitives.WorkThresholdSend, Receive: primitives.WorkThresholdReceive}
}

// Ledger applies and rolls back state blocks against a storage.Store,
// maintaining AccountInfo, pending entries, and representative
// weights as a single unit of work per block.
type Ledger struct {
	store   storage.Store
	Weights *RepWeights
	Signer  EpochSigner
	Work    WorkThresholds
}

func New(store storage.Store, signer EpochSigner) *Ledger {
	return &Ledger{store: store, Weights: NewRepWeights(), Signer: signer, Work: DefaultWorkThresholds()}
}

// Apply validates and, if valid, commits a state block within wtx. It
// returns the block's ProcessResult; only Progress means the write
// actually happened. Non-Progress results leave wtx simply un-added-to
// so the caller's surrounding transaction may still commit other work.
func (l *Ledger) Apply(wtx storage.WriteTx, block *blocks.StateBlock) (blocks.ProcessResult, error) {
	hash := block.Hash()

	// 1. already stored?
	if _, err := wtx.Get(storage.TableBlocks, hash[:]); err == nil {
		return blocks.Old, nil
	} else if err != storage.ErrNotFound {
		return 0, err
	}

	// 2. signature, against the account's own key or an epoch signer.
	if !l.verifySignature(wtx, block) {
		return blocks.BadSignature, nil
	}

	// 3. work. The exact class (send vs. receive/epoch) isn't known
	// until step 6 classifies the block, so check against the looser
	// of the two thresholds here; a too-strict check would reject a
	// valid receive before it's been recognized as one.
	if !primitives.ValidateWork(block.Root(), block.WorkField, l.Work.Receive) {
		return blocks.InsufficientWork, nil
	}

	var prevInfo AccountInfo
	var havePrevInfo bool
	var prevBalance primitives.Amount

	if block.PreviousField.IsZero() {
		// 4. open.
		if _, err := l.getAccountInfo(wtx, block.AccountField); err == nil {
			return blocks.Fork, nil
		}
		if block.AccountField == BurnAccount {
			return blocks.OpenedBurnAccount, nil
		}
		if _, ok := l.classifyEpochLink(block.LinkField); ok {
			// An epoch upgrade can never be the first block of a chain:
			// there is no prior representative/balance to carry forward.
			return blocks.GapEpochOpenPending, nil
		}
		pend, err := l.getPending(wtx, PendingKey{Account: block.AccountField, Hash: block.LinkField})
		if err != nil {
			return blocks.GapSource, nil
		}
		if block.BalanceField.Cmp(pend.Amount) != 0 {
			return blocks.BalanceMismatch, nil
		}
		prevBalance = primitives.Amount{}
		havePrevInfo = false
	} else {
		// 5. non-open.
		if _, err := wtx.Get(storage.TableBlocks, block.PreviousField[:]); err != nil {
			return blocks.GapPrevious, nil
		}
		info, err := l.getAccountInfo(wtx, block.AccountField)
		if err != nil {
			return blocks.Fork, nil
		}
		if info.Head != block.PreviousField {
			return blocks.Fork, nil
		}
		prevInfo = info
		havePrevInfo = true
		prevBalance = info.Balance
	}

	var (
		result     = blocks.Progress
		isSend     bool
		isReceive  bool
		isEpoch    bool
		srcEpoch   = blocks.Epoch0
		oldRep     primitives.Account
		newEpoch   blocks.Epoch
	)
	if havePrevInfo {
		oldRep = prevInfo.Representative
		newEpoch = prevInfo.Epoch
	} else {
		newEpoch = blocks.Epoch0
	}

	switch cmp := block.BalanceField.Cmp(prevBalance); {
	case !havePrevInfo:
		// open: already validated as a receive above.
		isReceive = true
		pend, _ := l.getPending(wtx, PendingKey{Account: block.AccountField, Hash: block.LinkField})
		srcEpoch = pend.Epoch
		newEpoch = srcEpoch

	case cmp < 0:
		// send.
		isSend = true

	case cmp > 0:
		// receive.
		pend, err := l.getPending(wtx, PendingKey{Account: block.AccountField, Hash: block.LinkField})
		if err != nil {
			return blocks.Unreceivable, nil
		}
		amt := block.BalanceField.Sub(prevBalance)
		if amt.Cmp(pend.Amount) != 0 {
			return blocks.BalanceMismatch, nil
		}
		isReceive = true
		srcEpoch = pend.Epoch
		// A receive carries the sender's epoch forward if it is newer
		// than the receiver's own: funds from an upgraded chain make
		// the receiving account at least as upgraded.
		if srcEpoch > newEpoch {
			newEpoch = srcEpoch
		}

	default:
		// change or epoch.
		if epoch, ok := l.classifyEpochLink(block.LinkField); ok && epoch > newEpoch {
			if block.RepresentativeField != oldRep {
				return blocks.RepresentativeMismatch, nil
			}
			isEpoch = true
			newEpoch = epoch
		}
		// else: plain representative change, nothing further to check.
	}

	// Negative-spend guard: a send's new balance may never be negative
	// in the underlying integer sense; Amount.Sub already wraps, so
	// detect the underflow explicitly here.
	if isSend && prevBalance.Cmp(block.BalanceField) < 0 {
		return blocks.NegativeSpend, nil
	}

	// 7. Commit.
	var sideband blocks.Sideband
	sideband.Account = block.AccountField
	sideband.Balance = block.BalanceField
	sideband.Details = blocks.SidebandDetails{Epoch: newEpoch, IsSend: isSend, IsReceive: isReceive, IsEpoch: isEpoch}

	newInfo := AccountInfo{
		Head:           hash,
		Representative: block.RepresentativeField,
		Balance:        block.BalanceField,
		Epoch:          newEpoch,
	}
	if havePrevInfo {
		newInfo.OpenBlock = prevInfo.OpenBlock
		newInfo.BlockCount = prevInfo.BlockCount + 1
		sideband.Height = prevInfo.BlockCount + 1
		// link the previous block's successor pointer forward.
		if err := l.setSuccessor(wtx, block.PreviousField, hash); err != nil {
			return 0, err
		}
	} else {
		newInfo.OpenBlock = hash
		newInfo.BlockCount = 1
		sideband.Height = 1
	}

	if err := wtx.Put(storage.TableBlocks, hash[:], encodeStateBlock(block, sideband)); err != nil {
		return 0, err
	}
	if err := l.putAccountInfo(wtx, block.AccountField, newInfo); err != nil {
		return 0, err
	}
	if err := wtx.Put(storage.TableFrontiers, block.AccountField[:], hash[:]); err != nil {
		return 0, err
	}

	switch {
	case isSend:
		amt := prevBalance.Sub(block.BalanceField)
		pk := PendingKey{Account: block.LinkField, Hash: hash}
		pend := PendingInfo{Source: block.AccountField, Amount: amt, Epoch: newEpoch}
		if err := wtx.Put(storage.TablePending, pendingKeyBytes(pk), encodePendingInfo(pend)); err != nil {
			return 0, err
		}
		l.Weights.Move(oldRep, block.RepresentativeField, prevBalance)
		l.Weights.Subtract(block.RepresentativeField, amt)
	case isReceive:
		pk := PendingKey{Account: block.AccountField, Hash: block.LinkField}
		if err := wtx.Delete(storage.TablePending, pendingKeyBytes(pk)); err != nil {
			return 0, err
		}
		if havePrevInfo {
			l.Weights.Move(oldRep, block.RepresentativeField, prevBalance)
			l.Weights.Add(block.RepresentativeField, block.BalanceField.Sub(prevBalance))
		} else {
			l.Weights.Add(block.RepresentativeField, block.BalanceField)
		}
	default:
		// change or epoch: balance unchanged, only representative may move.
		l.Weights.Move(oldRep, block.RepresentativeField, block.BalanceField)
	}

	return result, nil
}

func (l *Ledger) verifySignature(wtx storage.WriteTx, block *blocks.StateBlock) bool {
	if epoch, ok := l.classifyEpochLink(block.LinkField); ok {
		if signer, has := l.Signer(epoch); has {
			if primitives.Verify(signer, block.Hash().Bytes(), block.SignatureField) {
				return true
			}
		}
	}
	return block.VerifySignature()
}

func (l *Ledger) classifyEpochLink(link primitives.Hash) (blocks.Epoch, bool) {
	switch link {
	case blocks.EpochLinkValue(blocks.Epoch1):
		return blocks.Epoch1, true
	case blocks.EpochLinkValue(blocks.Epoch2):
		return blocks.Epoch2, true
	default:
		return 0, false
	}
}

func (l *Ledger) getAccountInfo(rtx storage.ReadTx, account primitives.Account) (AccountInfo, error) {
	b, err := rtx.Get(storage.TableAccounts, account[:])
	if err != nil {
		return AccountInfo{}, err
	}
	return decodeAccountInfo(b)
}

func (l *Ledger) putAccountInfo(wtx storage.WriteTx, account primitives.Account, info AccountInfo) error {
	return wtx.Put(storage.TableAccounts, account[:], encodeAccountInfo(info))
}

func (l *Ledger) getPending(rtx storage.ReadTx, key PendingKey) (PendingInfo, error) {
	b, err := rtx.Get(storage.TablePending, pendingKeyBytes(key))
	if err != nil {
		return PendingInfo{}, err
	}
	return decodePendingInfo(b)
}

// setSuccessor updates the stored predecessor block's sideband to
// point forward at its new successor, keeping the chain walkable
// forwards as well as backwards.
func (l *Ledger) setSuccessor(wtx storage.WriteTx, predecessor, successor primitives.Hash) error {
	raw, err := wtx.Get(storage.TableBlocks, predecessor[:])
	if err != nil {
		return err
	}
	blk, sb, err := decodeStateBlock(raw)
	if err != nil {
		return err
	}
	sb.Successor = successor
	return wtx.Put(storage.TableBlocks, predecessor[:], encodeStateBlock(blk, sb))
}

// GetBlock loads a previously-applied state block by hash.
func (l *Ledger) GetBlock(rtx storage.ReadTx, hash primitives.Hash) (*blocks.StateBlock, blocks.Sideband, error) {
	raw, err := rtx.Get(storage.TableBlocks, hash[:])
	if err != nil {
		return nil, blocks.Sideband{}, err
	}
	return decodeStateBlock(raw)
}

// AccountInfo exposes getAccountInfo to callers outside the package
// (election/confirming need account heads and balances).
func (l *Ledger) AccountInfo(rtx storage.ReadTx, account primitives.Account) (AccountInfo, error) {
	return l.getAccountInfo(rtx, account)
}

// ConfirmationHeight returns the account's cementation progress, or
// the zero value if the account has never been cemented.
func (l *Ledger) ConfirmationHeight(rtx storage.ReadTx, account primitives.Account) (ConfirmationHeightInfo, error) {
	b, err := rtx.Get(storage.TableConfirmationHeight, account[:])
	if err != nil {
		if err == storage.ErrNotFound {
			return ConfirmationHeightInfo{}, nil
		}
		return ConfirmationHeightInfo{}, err
	}
	return decodeConfirmationHeight(b)
}

// SetConfirmationHeight records new cementation progress for account.
func (l *Ledger) SetConfirmationHeight(wtx storage.WriteTx, account primitives.Account, info ConfirmationHeightInfo) error {
	return wtx.Put(storage.TableConfirmationHeight, account[:], encodeConfirmationHeight(info))
}

// BlockAmount returns the absolute value moved by a block relative to
// its predecessor: block_amount(hash) = |balance(hash) -
// balance(previous(hash))|, with an empty previous meaning the whole
// balance counts (the open/genesis case).
func (l *Ledger) BlockAmount(rtx storage.ReadTx, hash primitives.Hash) (primitives.Amount, error) {
	blk, _, err := l.GetBlock(rtx, hash)
	if err != nil {
		return primitives.Amount{}, err
	}
	if blk.PreviousField.IsZero() {
		return blk.BalanceField, nil
	}
	prevBlk, _, err := l.GetBlock(rtx, blk.PreviousField)
	if err != nil {
		return primitives.Amount{}, err
	}
	if blk.BalanceField.Cmp(prevBlk.BalanceField) >= 0 {
		return blk.BalanceField.Sub(prevBlk.BalanceField), nil
	}
	return prevBlk.BalanceField.Sub(blk.BalanceField), nil
}
