// Package leveldbstore is the concrete storage.Store implementation
// used by the node binary and integration tests, backed by goleveldb.
// It is the only package in this module that imports goleveldb
// directly; everything else depends on storage.Store.
package leveldbstore

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/stjet/rsban-node-sub005/storage"
)

// Store is a storage.Store backed by a single goleveldb database.
// Tables are namespaced by a one-byte key prefix, the same prefixing
// technique the teacher's rawdb.PrefixedStore uses to multiplex
// several logical keyspaces over one flat KV engine.
type Store struct {
	db *leveldb.DB

	// writeMu serializes write transactions: goleveldb allows
	// concurrent writers internally, but the storage.Store contract
	// promises a single active writer at a time.
	writeMu sync.Mutex
}

// Open opens (creating if necessary) a goleveldb database at dir.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func tableKey(t storage.Table, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = byte(t)
	copy(out[1:], key)
	return out
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Refresh is a no-op here: goleveldb snapshots are cheap and the
// store does not hold any long-lived read transaction open on the
// caller's behalf beyond what ReadTx.Discard releases.
func (s *Store) Refresh() {}

func (s *Store) BeginRead() storage.ReadTx {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return &errTx{err: err}
	}
	return &readTx{snap: snap}
}

func (s *Store) BeginWrite() (storage.WriteTx, error) {
	s.writeMu.Lock()
	snap, err := s.db.GetSnapshot()
	if err != nil {
		s.writeMu.Unlock()
		return nil, err
	}
	return &writeTx{
		db:    s.db,
		snap:  snap,
		batch: new(leveldb.Batch),
		mu:    &s.writeMu,
	}, nil
}

// readTx is a read-only snapshot-backed transaction.
type readTx struct {
	snap *leveldb.Snapshot
}

func (t *readTx) Get(table storage.Table, key []byte) ([]byte, error) {
	v, err := t.snap.Get(tableKey(table, key), nil)
	if err == leveldb.ErrNotFound {
		return nil, storage.ErrNotFound
	}
	return v, err
}

func (t *readTx) Has(table storage.Table, key []byte) (bool, error) {
	return t.snap.Has(tableKey(table, key), nil)
}

func (t *readTx) Iterate(table storage.Table, start []byte) storage.Iterator {
	prefix := []byte{byte(table)}
	rng := util.BytesPrefix(prefix)
	if start != nil {
		rng.Start = tableKey(table, start)
	}
	return &prefixIterator{it: t.snap.NewIterator(rng, nil), prefix: prefix}
}

func (t *readTx) Discard() {
	t.snap.Release()
}

// writeTx buffers puts/deletes in a batch and applies them atomically
// on Commit, reading through its own snapshot so readers within the
// same transaction see their own uncommitted writes is NOT supported
// (matching goleveldb batches, which are write-only); reads observe
// the pre-transaction snapshot until commit.
type writeTx struct {
	db    *leveldb.DB
	snap  *leveldb.Snapshot
	batch *leveldb.Batch
	mu    *sync.Mutex
	done  bool
}

func (t *writeTx) Get(table storage.Table, key []byte) ([]byte, error) {
	v, err := t.snap.Get(tableKey(table, key), nil)
	if err == leveldb.ErrNotFound {
		return nil, storage.ErrNotFound
	}
	return v, err
}

func (t *writeTx) Has(table storage.Table, key []byte) (bool, error) {
	return t.snap.Has(tableKey(table, key), nil)
}

func (t *writeTx) Iterate(table storage.Table, start []byte) storage.Iterator {
	prefix := []byte{byte(table)}
	rng := util.BytesPrefix(prefix)
	if start != nil {
		rng.Start = tableKey(table, start)
	}
	return &prefixIterator{it: t.snap.NewIterator(rng, nil), prefix: prefix}
}

func (t *writeTx) Put(table storage.Table, key, value []byte) error {
	t.batch.Put(tableKey(table, key), value)
	return nil
}

func (t *writeTx) Delete(table storage.Table, key []byte) error {
	t.batch.Delete(tableKey(table, key))
	return nil
}

func (t *writeTx) Clear(table storage.Table) error {
	prefix := []byte{byte(table)}
	it := t.snap.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		k := make([]byte, len(it.Key()))
		copy(k, it.Key())
		t.batch.Delete(k)
	}
	return it.Error()
}

func (t *writeTx) Commit() error {
	if t.done {
		return storage.ErrClosed
	}
	t.done = true
	defer t.finish()
	return t.db.Write(t.batch, nil)
}

func (t *writeTx) Rollback() {
	if t.done {
		return
	}
	t.done = true
	t.finish()
}

func (t *writeTx) Discard() {
	t.Rollback()
}

func (t *writeTx) finish() {
	t.snap.Release()
	t.mu.Unlock()
}

// prefixIterator strips the one-byte table prefix from keys returned
// by the underlying goleveldb iterator, the same role the teacher's
// prefixedIterator plays over its MemoryKVStore.
type prefixIterator struct {
	it     iterator.Iterator
	prefix []byte
}

func (p *prefixIterator) Next() bool {
	return p.it.Next()
}

func (p *prefixIterator) Key() []byte {
	k := p.it.Key()
	return k[len(p.prefix):]
}

func (p *prefixIterator) Value() []byte {
	return p.it.Value()
}

func (p *prefixIterator) Err() error {
	return p.it.Error()
}

func (p *prefixIterator) Close() error {
	p.it.Release()
	return nil
}

// errTx is returned by BeginRead if acquiring a snapshot fails; every
// method reports the same error so callers fail fast without a nil
// check at every call site.
type errTx struct{ err error }

func (t *errTx) Get(storage.Table, []byte) ([]byte, error)   { return nil, t.err }
func (t *errTx) Has(storage.Table, []byte) (bool, error)     { return false, t.err }
func (t *errTx) Iterate(storage.Table, []byte) storage.Iterator {
	return &errIterator{err: t.err}
}
func (t *errTx) Discard() {}

type errIterator struct{ err error }

func (e *errIterator) Next() bool       { return false }
func (e *errIterator) Key() []byte      { return nil }
func (e *errIterator) Value() []byte    { return nil }
func (e *errIterator) Err() error       { return e.err }
func (e *errIterator) Close() error     { return nil }
