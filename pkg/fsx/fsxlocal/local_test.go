package fsxlocal

import (
	"context"
	"strings"
	"testing"
)

func newTestLocalFS(t *testing.T) *LocalFileSystem {
	t.Helper()
	fs, err := NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("new local filesystem: %v", err)
	}
	return fs
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "dir/sub/file.txt", []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := fs.ReadFile(ctx, "dir/sub/file.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected round-tripped content, got %q", data)
	}
}

func TestReadFile_MissingReturnsNotFoundError(t *testing.T) {
	fs := newTestLocalFS(t)
	_, err := fs.ReadFile(context.Background(), "missing.txt")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestExists(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	exists, err := fs.Exists(ctx, "a.txt")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected the file not to exist yet")
	}

	if err := fs.WriteFile(ctx, "a.txt", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	exists, err = fs.Exists(ctx, "a.txt")
	if err != nil || !exists {
		t.Fatalf("expected the file to exist, got exists=%v err=%v", exists, err)
	}
}

func TestStat_ReportsSizeAndContentType(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "doc.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := fs.Stat(ctx, "doc.json")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size != int64(len(`{"a":1}`)) {
		t.Fatalf("expected size %d, got %d", len(`{"a":1}`), info.Size)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("expected application/json, got %q", info.ContentType)
	}
	if info.IsDir {
		t.Fatal("expected a file, not a directory")
	}
}

func TestList_ReturnsFilesAndSubdirectories(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "docs/a.txt", []byte("1")); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := fs.CreateDir(ctx, "docs/sub"); err != nil {
		t.Fatalf("create dir: %v", err)
	}

	infos, err := fs.List(ctx, "docs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var sawFile, sawDir bool
	for _, info := range infos {
		if info.Name == "a.txt" && !info.IsDir {
			sawFile = true
		}
		if info.Name == "sub" && info.IsDir {
			sawDir = true
		}
	}
	if !sawFile || !sawDir {
		t.Fatalf("expected both a file and a subdirectory entry, got %+v", infos)
	}
}

func TestDeleteFile_MissingIsNotAnError(t *testing.T) {
	fs := newTestLocalFS(t)
	if err := fs.DeleteFile(context.Background(), "missing.txt"); err != nil {
		t.Fatalf("expected deleting a missing file to be a no-op, got %v", err)
	}
}

func TestDeleteFile_RemovesExistingFile(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "a.txt", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.DeleteFile(ctx, "a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	exists, err := fs.Exists(ctx, "a.txt")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected the file to be gone")
	}
}

func TestDeleteDir_RecursiveRemovesContents(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "docs/a.txt", []byte("1")); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := fs.WriteFile(ctx, "docs/sub/b.txt", []byte("2")); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := fs.DeleteDir(ctx, "docs", true); err != nil {
		t.Fatalf("delete dir: %v", err)
	}
	exists, err := fs.Exists(ctx, "docs")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected the directory to be gone")
	}
}

func TestDeleteDir_NonRecursiveFailsWhenNotEmpty(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "docs/a.txt", []byte("1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.DeleteDir(ctx, "docs", false); err == nil {
		t.Fatal("expected a non-recursive delete of a non-empty directory to fail")
	}
}

func TestWriteFile_OverwriteIsAtomicallyVisible(t *testing.T) {
	fs := newTestLocalFS(t)
	ctx := context.Background()

	if err := fs.WriteFile(ctx, "a.txt", []byte("first")); err != nil {
		t.Fatalf("write 1: %v", err)
	}
	if err := fs.WriteFile(ctx, "a.txt", []byte("second")); err != nil {
		t.Fatalf("write 2: %v", err)
	}
	data, err := fs.ReadFile(ctx, "a.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected the latest write to win, got %q", data)
	}
}

func TestJoin_DelegatesToFilepathJoin(t *testing.T) {
	fs := newTestLocalFS(t)
	if got := fs.Join("a", "b", "c.txt"); got != "a/b/c.txt" {
		t.Fatalf("expected joined path, got %q", got)
	}
}

func TestGetBasePath_ReturnsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFileSystem(dir)
	if err != nil {
		t.Fatalf("new local filesystem: %v", err)
	}
	if fs.GetBasePath() == "" {
		t.Fatal("expected a non-empty base path")
	}
}
