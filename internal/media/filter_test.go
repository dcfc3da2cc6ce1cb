package media

import (
	"testing"
)

func TestApplyExcludePatterns(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "Camera/IMG_0001.jpg")
	writeFile(t, root, "Camera/IMG_0001_thumb.jpg")
	writeFile(t, root, "Cache/IMG_0002.jpg")
	writeFile(t, root, "sub/cache/IMG_0003.jpg")

	result, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	filtered := ApplyExcludePatterns(result, root, []string{"*_thumb.*"}, []string{"cache"})
	if len(filtered.Photos) != 1 || filtered.Photos[0] != keep {
		t.Errorf("Photos = %v, want [%s]", filtered.Photos, keep)
	}
}

func TestGroupByDirectoryDeepestFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "top.jpg")
	writeFile(t, root, "a/one.jpg")
	writeFile(t, root, "a/b/two.jpg")
	writeFile(t, root, "z/three.jpg")

	result, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	groups := GroupByDirectory(result, root)
	got := make([]string, len(groups))
	for i, g := range groups {
		got[i] = g.RelPath
	}

	want := []string{"a/b", "a", "z", "."}
	if len(got) != len(want) {
		t.Fatalf("got %d groups %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group[%d] = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestGroupByDirectoryCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mix/a.jpg")
	writeFile(t, root, "mix/b.mp4")
	writeFile(t, root, "mix/c.mp3")
	writeFile(t, root, "mix/d.txt")

	result, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	groups := GroupByDirectory(result, root)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.PhotoCount != 1 || g.VideoCount != 1 || g.AudioCount != 1 || g.UnknownCount != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/1/1/1",
			g.PhotoCount, g.VideoCount, g.AudioCount, g.UnknownCount)
	}
	if g.TotalSize == 0 {
		t.Error("TotalSize should be non-zero")
	}
}

func TestFilterByDirectories(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "a/one.jpg")
	writeFile(t, root, "b/two.jpg")

	result, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	filtered := FilterByDirectories(result, root, map[string]bool{"a": true})
	if len(filtered.Photos) != 1 || filtered.Photos[0] != keep {
		t.Errorf("Photos = %v, want [%s]", filtered.Photos, keep)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
