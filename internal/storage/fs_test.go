package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/pagesmith/internal/apperr"
)

func tempTree(t *testing.T, opts ...FSOption) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, opts...)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempTree(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("page.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("page.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if !s.Exists("page.md") || s.Exists("missing.md") {
		t.Error("Exists reported wrong state")
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempTree(t)
	if err := s.Write("a/b/c.html", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("read deleted file err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("del.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestList_SortedWithExclusions(t *testing.T) {
	s := tempTree(t, WithExclusions(Exclusions{
		Dirs:  []string{"drafts"},
		Files: []string{"README.md"},
	}))
	_ = s.Write("z.md", []byte("z"))
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("README.md", []byte("root readme is kept"))
	_ = s.Write("sub/README.md", []byte("nested readme is dropped"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("drafts/x.md", []byte("x"))
	_ = s.Write("sub/drafts/y.md", []byte("y"))
	_ = s.Write("notes.txt", []byte("not md"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"README.md", "a.md", "sub/b.md", "z.md"}
	if len(items) != len(want) {
		t.Fatalf("items = %v, want %v", items, want)
	}
	for i, p := range want {
		if items[i].Path != p {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Path, p)
		}
		if items[i].Checksum == "" {
			t.Errorf("items[%d] has no checksum", i)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempTree(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("read %q err = %v, want ErrInvalidInput", p, err)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("atomic.html", []byte("original"))
	if err := s.Write("atomic.html", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.html")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".pagesmith-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestCopyTree(t *testing.T) {
	src := tempTree(t)
	dst := tempTree(t)
	_ = src.Write("blog/images/a.png", []byte("png"))
	_ = src.Write("blog/images/icons/b.svg", []byte("svg"))
	_ = src.Write("blog/style.css", []byte("css"))

	n, err := CopyTree(dst, src, "blog/images", "posts/images")
	if err != nil {
		t.Fatalf("CopyTree dir: %v", err)
	}
	if n != 2 {
		t.Errorf("copied = %d, want 2", n)
	}
	if !dst.Exists("posts/images/icons/b.svg") {
		t.Error("nested file not copied")
	}

	if n, err := CopyTree(dst, src, "blog/style.css", "posts/style.css"); err != nil || n != 1 {
		t.Errorf("CopyTree file = %d, %v", n, err)
	}
	if _, err := CopyTree(dst, src, "blog/missing", "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing source err = %v, want ErrNotFound", err)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "pagesmith-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
