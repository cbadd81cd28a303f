// Package storage defines the abstract key-value storage interface
// the rest of the node is built against. No package outside of
// storage and its concrete engine subpackages (e.g. leveldbstore)
// knows which embedded database is actually in use.
package storage

import "errors"

// ErrNotFound is returned by Get when a key does not exist in a table.
var ErrNotFound = errors.New("storage: key not found")

// ErrClosed is returned when an operation is attempted on a closed
// store or a transaction after it has been committed or discarded.
var ErrClosed = errors.New("storage: closed")

// Table names a logical keyspace within the store. Concrete engines
// are free to implement tables as column families, key prefixes, or
// separate files; callers only ever address data by (Table, key).
type Table uint8

const (
	TableBlocks Table = iota
	TableAccounts
	TablePending
	TableFrontiers
	TableConfirmationHeight
	TablePruned
)

func (t Table) String() string {
	switch t {
	case TableBlocks:
		return "blocks"
	case TableAccounts:
		return "accounts"
	case TablePending:
		return "pending"
	case TableFrontiers:
		return "frontiers"
	case TableConfirmationHeight:
		return "confirmation_height"
	case TablePruned:
		return "pruned"
	default:
		return "unknown"
	}
}

// AllTables lists every table the ledger depends on existing.
var AllTables = []Table{
	TableBlocks, TableAccounts, TablePending, TableFrontiers,
	TableConfirmationHeight, TablePruned,
}

// Iterator walks a table's keys in ascending byte order starting at
// or after a given key. Callers must call Close when done.
type Iterator interface {
	// Next advances to the next entry, returning false when exhausted
	// or on error (check Err after Next returns false).
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// ReadTx is a read-only, snapshot-isolated view of the store. Many
// read transactions may be open concurrently with each other and with
// at most one write transaction.
type ReadTx interface {
	Get(table Table, key []byte) ([]byte, error) // ErrNotFound if absent
	Has(table Table, key []byte) (bool, error)
	// Iterate returns an Iterator over table starting at the first key
	// >= start (start == nil means from the beginning).
	Iterate(table Table, start []byte) Iterator
	// Discard releases the transaction's snapshot. Safe to call
	// multiple times.
	Discard()
}

// WriteTx is a serialized, single-writer transaction. Writes are only
// visible to other transactions after Commit succeeds.
type WriteTx interface {
	ReadTx
	Put(table Table, key, value []byte) error
	Delete(table Table, key []byte) error
	Clear(table Table) error
	Commit() error
	Rollback()
}

// Store is the abstract handle other packages depend on. The core
// must not assume any specific embedded engine and must work given
// only these operations, with strict total ordering of writes within
// a transaction and atomic commit.
type Store interface {
	BeginRead() ReadTx
	BeginWrite() (WriteTx, error)
	// Refresh hints the store that long-running read transactions may
	// be released and re-opened to bound snapshot growth. It is a
	// hint, not a correctness requirement: implementations may no-op.
	Refresh()
	Close() error
}
