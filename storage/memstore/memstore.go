// Package memstore is an in-memory storage.Store used by package
// tests that need a Store without touching disk, mirroring the
// teacher's MemoryKVStore test double.
package memstore

import (
	"sort"
	"sync"

	"github.com/stjet/rsban-node-sub005/storage"
)

// Store is a simple mutex-guarded map-of-maps implementation of
// storage.Store. It provides no real snapshot isolation: read
// transactions see a shallow copy taken at BeginRead time, which is
// sufficient for single-goroutine unit tests.
type Store struct {
	mu     sync.Mutex
	tables map[storage.Table]map[string][]byte
}

func New() *Store {
	s := &Store{tables: make(map[storage.Table]map[string][]byte)}
	for _, t := range storage.AllTables {
		s.tables[t] = make(map[string][]byte)
	}
	return s
}

func (s *Store) Close() error { return nil }
func (s *Store) Refresh()     {}

func (s *Store) snapshot() map[storage.Table]map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[storage.Table]map[string][]byte, len(s.tables))
	for t, m := range s.tables {
		cp := make(map[string][]byte, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[t] = cp
	}
	return out
}

func (s *Store) BeginRead() storage.ReadTx {
	return &memTx{data: s.snapshot()}
}

func (s *Store) BeginWrite() (storage.WriteTx, error) {
	s.mu.Lock()
	// s.mu stays held until Commit or Rollback, so copy the tables here
	// rather than through snapshot, which takes s.mu itself.
	data := make(map[storage.Table]map[string][]byte, len(s.tables))
	for t, m := range s.tables {
		cp := make(map[string][]byte, len(m))
		for k, v := range m {
			cp[k] = v
		}
		data[t] = cp
	}
	return &memTx{data: data, store: s, write: true}, nil
}

type memTx struct {
	data  map[storage.Table]map[string][]byte
	store *Store
	write bool
	done  bool
}

func (t *memTx) Get(table storage.Table, key []byte) ([]byte, error) {
	v, ok := t.data[table][string(key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (t *memTx) Has(table storage.Table, key []byte) (bool, error) {
	_, ok := t.data[table][string(key)]
	return ok, nil
}

func (t *memTx) Iterate(table storage.Table, start []byte) storage.Iterator {
	m := t.data[table]
	keys := make([]string, 0, len(m))
	for k := range m {
		if start == nil || k >= string(start) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &memIterator{m: m, keys: keys, idx: -1}
}

func (t *memTx) Put(table storage.Table, key, value []byte) error {
	t.data[table][string(key)] = value
	return nil
}

func (t *memTx) Delete(table storage.Table, key []byte) error {
	delete(t.data[table], string(key))
	return nil
}

func (t *memTx) Clear(table storage.Table) error {
	t.data[table] = make(map[string][]byte)
	return nil
}

// Commit installs the transaction's working copy as the store's
// tables. The caller already holds store.mu from BeginWrite, so this
// only needs to release it once done.
func (t *memTx) Commit() error {
	if t.done {
		return storage.ErrClosed
	}
	t.done = true
	t.store.tables = t.data
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() {
	if t.done {
		return
	}
	t.done = true
	if t.write {
		t.store.mu.Unlock()
	}
}

func (t *memTx) Discard() {
	t.Rollback()
}

type memIterator struct {
	m    map[string][]byte
	keys []string
	idx  int
}

func (it *memIterator) Next() bool {
	it.idx++
	return it.idx < len(it.keys)
}

func (it *memIterator) Key() []byte   { return []byte(it.keys[it.idx]) }
func (it *memIterator) Value() []byte { return it.m[it.keys[it.idx]] }
func (it *memIterator) Err() error    { return nil }
func (it *memIterator) Close() error  { return nil }
