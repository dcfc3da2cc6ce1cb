package hash

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	size, digest, err := File(path)
	if err != nil {
		t.Fatalf("File() error: %v", err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if digest != want {
		t.Errorf("digest = %s, want %s", digest, want)
	}

	if _, _, err := File(filepath.Join(dir, "missing")); err == nil {
		t.Error("File() on missing path should fail")
	}
}

func TestFindDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jpg", "same bytes")
	b := writeFile(t, dir, "sub/b.jpg", "same bytes")
	writeFile(t, dir, "c.jpg", "different")
	writeFile(t, dir, "short.jpg", "x") // unique size, must not be hashed into a group

	groups := FindDuplicates([]string{
		a, b,
		filepath.Join(dir, "c.jpg"),
		filepath.Join(dir, "short.jpg"),
	}, 2)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.FileSize != int64(len("same bytes")) {
		t.Errorf("group size = %d, want %d", g.FileSize, len("same bytes"))
	}
	if len(g.Paths) != 2 || g.Paths[0] != a || g.Paths[1] != b {
		t.Errorf("group paths = %v, want [%s %s]", g.Paths, a, b)
	}
}

func TestFindDuplicatesSameSizeDifferentContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jpg", "aaaa")
	b := writeFile(t, dir, "b.jpg", "bbbb")

	groups := FindDuplicates([]string{a, b}, 1)
	if len(groups) != 0 {
		t.Fatalf("got %d groups, want 0", len(groups))
	}
}

func TestBatchSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jpg", "content")
	missing := filepath.Join(dir, "gone.jpg")

	out := Batch([]string{a, missing}, 4)
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if _, ok := out[a]; !ok {
		t.Errorf("missing result for %s", a)
	}
}

func TestDeleteDuplicatesKeepsOldest(t *testing.T) {
	dir := t.TempDir()
	oldest := writeFile(t, dir, "oldest.jpg", "same")
	newer := writeFile(t, dir, "newer.jpg", "same")
	newest := writeFile(t, dir, "newest.jpg", "same")

	base := time.Now().Add(-3 * time.Hour)
	for i, p := range []string{oldest, newer, newest} {
		ts := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(p, ts, ts); err != nil {
			t.Fatal(err)
		}
	}

	groups := FindDuplicates([]string{newest, oldest, newer}, 1)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}

	deleted, err := DeleteDuplicates(groups)
	if err != nil {
		t.Fatalf("DeleteDuplicates() error: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("deleted %d files, want 2", len(deleted))
	}
	if _, err := os.Stat(oldest); err != nil {
		t.Errorf("oldest copy should survive: %v", err)
	}
	for _, p := range []string{newer, newest} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be deleted", p)
		}
	}
}
