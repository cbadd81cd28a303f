package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/stjet/rsban-node-sub005/blocks"
	"github.com/stjet/rsban-node-sub005/primitives"
)

// This file implements the fixed-width binary encodings the ledger
// stores in storage.Store. Every record is a flat struct with no
// variable-length fields, so encode/decode is a straight field-by-
// field copy rather than a general-purpose serializer.

func encodeAccountInfo(a AccountInfo) []byte {
	buf := make([]byte, 32+32+32+16+8+1+8)
	off := 0
	copy(buf[off:], a.Head[:])
	off += 32
	copy(buf[off:], a.Representative[:])
	off += 32
	copy(buf[off:], a.OpenBlock[:])
	off += 32
	bal := a.Balance.Bytes()
	copy(buf[off:], bal[:])
	off += 16
	binary.BigEndian.PutUint64(buf[off:], a.BlockCount)
	off += 8
	buf[off] = byte(a.Epoch)
	off++
	binary.BigEndian.PutUint64(buf[off:], a.ModifiedTimestamp)
	return buf
}

func decodeAccountInfo(b []byte) (AccountInfo, error) {
	var a AccountInfo
	want := 32 + 32 + 32 + 16 + 8 + 1 + 8
	if len(b) != want {
		return a, fmt.Errorf("ledger: account info wrong length: got %d want %d", len(b), want)
	}
	off := 0
	copy(a.Head[:], b[off:off+32])
	off += 32
	copy(a.Representative[:], b[off:off+32])
	off += 32
	copy(a.OpenBlock[:], b[off:off+32])
	off += 32
	bal, err := primitives.AmountFromBytes(b[off : off+16])
	if err != nil {
		return a, err
	}
	a.Balance = bal
	off += 16
	a.BlockCount = binary.BigEndian.Uint64(b[off:])
	off += 8
	a.Epoch = blocks.Epoch(b[off])
	off++
	a.ModifiedTimestamp = binary.BigEndian.Uint64(b[off:])
	return a, nil
}

func encodePendingInfo(p PendingInfo) []byte {
	buf := make([]byte, 32+16+1)
	copy(buf[0:32], p.Source[:])
	amt := p.Amount.Bytes()
	copy(buf[32:48], amt[:])
	buf[48] = byte(p.Epoch)
	return buf
}

func decodePendingInfo(b []byte) (PendingInfo, error) {
	var p PendingInfo
	if len(b) != 49 {
		return p, fmt.Errorf("ledger: pending info wrong length: got %d want 49", len(b))
	}
	copy(p.Source[:], b[0:32])
	amt, err := primitives.AmountFromBytes(b[32:48])
	if err != nil {
		return p, err
	}
	p.Amount = amt
	p.Epoch = blocks.Epoch(b[48])
	return p, nil
}

func pendingKeyBytes(k PendingKey) []byte {
	buf := make([]byte, 64)
	copy(buf[0:32], k.Account[:])
	copy(buf[32:64], k.Hash[:])
	return buf
}

func encodeConfirmationHeight(c ConfirmationHeightInfo) []byte {
	buf := make([]byte, 8+32)
	binary.BigEndian.PutUint64(buf[0:8], c.Height)
	copy(buf[8:], c.Frontier[:])
	return buf
}

func decodeConfirmationHeight(b []byte) (ConfirmationHeightInfo, error) {
	var c ConfirmationHeightInfo
	if len(b) != 40 {
		return c, fmt.Errorf("ledger: confirmation height wrong length: got %d want 40", len(b))
	}
	c.Height = binary.BigEndian.Uint64(b[0:8])
	copy(c.Frontier[:], b[8:])
	return c, nil
}

// storedBlock is the on-disk record for a state block: the signed
// fields plus its sideband. Legacy block variants are out of scope
// for storage encoding since the ledger only ever applies new state
// blocks; existing legacy chains are read through bootstrap response
// parsing instead of this codec (see wire package).
type storedBlock struct {
	Block    blocks.StateBlock
	Sideband blocks.Sideband
}

func encodeStateBlock(b *blocks.StateBlock, sb blocks.Sideband) []byte {
	buf := make([]byte, 0, 32*4+16+8+64+8+32+32+16+8+8+1+3)
	buf = append(buf, b.AccountField[:]...)
	buf = append(buf, b.PreviousField[:]...)
	buf = append(buf, b.RepresentativeField[:]...)
	balBytes := b.BalanceField.Bytes()
	buf = append(buf, balBytes[:]...)
	buf = append(buf, b.LinkField[:]...)
	buf = append(buf, b.SignatureField[:]...)
	var workBuf [8]byte
	binary.BigEndian.PutUint64(workBuf[:], b.WorkField)
	buf = append(buf, workBuf[:]...)

	buf = append(buf, sb.Successor[:]...)
	buf = append(buf, sb.Account[:]...)
	sbBal := sb.Balance.Bytes()
	buf = append(buf, sbBal[:]...)
	var heightBuf, tsBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], sb.Height)
	binary.BigEndian.PutUint64(tsBuf[:], sb.Timestamp)
	buf = append(buf, heightBuf[:]...)
	buf = append(buf, tsBuf[:]...)
	buf = append(buf, byte(sb.Details.Epoch))
	buf = append(buf, boolByte(sb.Details.IsSend), boolByte(sb.Details.IsReceive), boolByte(sb.Details.IsEpoch))
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func decodeStateBlock(b []byte) (*blocks.StateBlock, blocks.Sideband, error) {
	const fixedLen = 32 + 32 + 32 + 16 + 32 + 64 + 8 + 32 + 32 + 16 + 8 + 8 + 1 + 3
	if len(b) != fixedLen {
		return nil, blocks.Sideband{}, fmt.Errorf("ledger: stored block wrong length: got %d want %d", len(b), fixedLen)
	}
	off := 0
	readHash := func() primitives.Hash {
		var h primitives.Hash
		copy(h[:], b[off:off+32])
		off += 32
		return h
	}
	blk := blocks.NewStateBlock()
	acc := readHash()
	prev := readHash()
	rep := readHash()
	bal, err := primitives.AmountFromBytes(b[off : off+16])
	if err != nil {
		return nil, blocks.Sideband{}, err
	}
	off += 16
	link := readHash()
	var sig primitives.Signature
	copy(sig[:], b[off:off+64])
	off += 64
	work := binary.BigEndian.Uint64(b[off:])
	off += 8

	blk.Account(primitives.Account(acc)).
		Previous(prev).
		Representative(primitives.Account(rep)).
		Balance(bal).
		Link(link).
		Work(work)
	built := blk.Build()
	built.SignatureField = sig

	var sb blocks.Sideband
	sb.Successor = readHash()
	sb.Account = primitives.Account(readHash())
	sbBal, err := primitives.AmountFromBytes(b[off : off+16])
	if err != nil {
		return nil, blocks.Sideband{}, err
	}
	off += 16
	sb.Height = binary.BigEndian.Uint64(b[off:])
	off += 8
	sb.Timestamp = binary.BigEndian.Uint64(b[off:])
	off += 8
	sb.Details.Epoch = blocks.Epoch(b[off])
	off++
	sb.Details.IsSend = b[off] == 1
	sb.Details.IsReceive = b[off+1] == 1
	sb.Details.IsEpoch = b[off+2] == 1
	sb.Balance = sbBal

	return built, sb, nil
}
