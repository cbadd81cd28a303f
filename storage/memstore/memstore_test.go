package memstore

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/storage"
)

func TestPutGetThroughCommit(t *testing.T) {
	s := New()
	wtx, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("begin write: %v", err)
	}
	if err := wtx.Put(storage.TableAccounts, []byte("a"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	rtx := s.BeginRead()
	defer rtx.Discard()
	v, err := rtx.Get(storage.TableAccounts, []byte("a"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != "1" {
		t.Fatalf("got %q, want %q", v, "1")
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s := New()
	wtx, _ := s.BeginWrite()
	_ = wtx.Put(storage.TableAccounts, []byte("a"), []byte("1"))
	wtx.Rollback()

	rtx := s.BeginRead()
	defer rtx.Discard()
	if _, err := rtx.Get(storage.TableAccounts, []byte("a")); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound after rollback, got %v", err)
	}
}

func TestIteratePrefixOrder(t *testing.T) {
	s := New()
	wtx, _ := s.BeginWrite()
	_ = wtx.Put(storage.TableBlocks, []byte("b"), []byte("2"))
	_ = wtx.Put(storage.TableBlocks, []byte("a"), []byte("1"))
	_ = wtx.Put(storage.TableBlocks, []byte("c"), []byte("3"))
	_ = wtx.Commit()

	rtx := s.BeginRead()
	defer rtx.Discard()
	it := rtx.Iterate(storage.TableBlocks, nil)
	defer it.Close()
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("got %v, want sorted [a b c]", keys)
	}
}
