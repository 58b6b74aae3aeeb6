package kvstore

import (
	"context"
	"testing"

	"github.com/trigoo007/cagcore/pkg/fsx/fsxlocal"
)

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("local filesystem: %v", err)
	}
	return NewFSStore(fs, "")
}

func TestFSStore_GetMissingReturnsNotFound(t *testing.T) {
	s := newTestFSStore(t)
	_, found, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected found=false for a missing key")
	}
}

func TestFSStore_PutThenGetRoundTrip(t *testing.T) {
	s := newTestFSStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "doc", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, found, err := s.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected found=true after a put")
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("expected round-tripped content, got %q", data)
	}
}

func TestFSStore_DefaultsBaseDirWhenEmpty(t *testing.T) {
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("local filesystem: %v", err)
	}
	s := NewFSStore(fs, "")
	if s.baseDir != "global_memory" {
		t.Fatalf("expected the default base directory, got %q", s.baseDir)
	}
}

func TestFSStore_OverwritesExistingKey(t *testing.T) {
	s := newTestFSStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "doc", []byte("first")); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := s.Put(ctx, "doc", []byte("second")); err != nil {
		t.Fatalf("put 2: %v", err)
	}
	data, _, err := s.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected the latest write to win, got %q", data)
	}
}
