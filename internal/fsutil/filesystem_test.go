package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// TestOSFileSystem_RoundTrip tests writing and reading back a file through
// the OS-backed implementation.
func TestOSFileSystem_RoundTrip(t *testing.T) {
	fs := &OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "report.json")

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := fs.WriteFile(path, []byte(`{"ok":true}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected content: %s", data)
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), info.Size())
	}
	if !fs.Exists(path) {
		t.Error("Exists returned false for existing file")
	}

	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if fs.Exists(path) {
		t.Error("Exists returned true after Remove")
	}
}

// TestOSFileSystem_ReadDir tests directory listings from the OS-backed
// implementation.
func TestOSFileSystem_ReadDir(t *testing.T) {
	fs := &OSFileSystem{}
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	entries, err := fs.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name() != "a.json" || entries[1].Name() != "b.json" {
		t.Errorf("expected sorted entries, got %s, %s", entries[0].Name(), entries[1].Name())
	}
}

func TestMemoryFileSystem_RoundTrip(t *testing.T) {
	fs := NewMemoryFileSystem()

	if err := fs.WriteFile("/exports/report.json", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile("/exports/report.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected content: %s", data)
	}

	info, err := fs.Stat("/exports/report.json")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("expected size 5, got %d", info.Size())
	}
	if info.IsDir() {
		t.Error("file reported as directory")
	}
	if info.ModTime().IsZero() {
		t.Error("expected a modification time")
	}
}

func TestMemoryFileSystem_WriteCopiesData(t *testing.T) {
	fs := NewMemoryFileSystem()
	buf := []byte("original")
	if err := fs.WriteFile("/f.txt", buf, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	buf[0] = 'X'

	data, err := fs.ReadFile("/f.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("stored data aliased the caller's buffer: %s", data)
	}
}

func TestMemoryFileSystem_ImplicitParents(t *testing.T) {
	fs := NewMemoryFileSystem()
	if err := fs.WriteFile("/a/b/c.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	for _, dir := range []string{"/a", "/a/b"} {
		info, err := fs.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%s) failed: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s not reported as directory", dir)
		}
	}
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	fs := NewMemoryFileSystem()
	if err := fs.MkdirAll("/exports/archive", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, name := range []string{"z.json", "a.json"} {
		if err := fs.WriteFile("/exports/"+name, []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	// A file in a subdirectory must not appear in the parent listing.
	if err := fs.WriteFile("/exports/archive/old.json", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	entries, err := fs.ReadDir("/exports")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a.json", "archive", "z.json"}
	if !sort.StringsAreSorted(names) {
		t.Errorf("entries not sorted: %v", names)
	}
	if len(names) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], names[i])
		}
	}

	for _, e := range entries {
		if e.Name() == "archive" && !e.IsDir() {
			t.Error("archive not reported as directory")
		}
		if e.Name() == "a.json" && e.IsDir() {
			t.Error("a.json reported as directory")
		}
	}
}

func TestMemoryFileSystem_ReadDirMissing(t *testing.T) {
	fs := NewMemoryFileSystem()
	if _, err := fs.ReadDir("/nope"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	fs := NewMemoryFileSystem()
	if _, err := fs.ReadFile("/nope.txt"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error from ReadFile, got %v", err)
	}
	if _, err := fs.Stat("/nope.txt"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error from Stat, got %v", err)
	}
	if fs.Exists("/nope.txt") {
		t.Error("Exists returned true for missing path")
	}
}

func TestMemoryFileSystem_Remove(t *testing.T) {
	fs := NewMemoryFileSystem()
	if err := fs.WriteFile("/exports/report.json", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := fs.Remove("/exports"); err == nil {
		t.Error("expected Remove of a non-empty directory to fail")
	}
	if err := fs.Remove("/exports/report.json"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if fs.Exists("/exports/report.json") {
		t.Error("file still exists after Remove")
	}
	if err := fs.Remove("/exports"); err != nil {
		t.Errorf("Remove of emptied directory failed: %v", err)
	}
	if err := fs.Remove("/nope"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
