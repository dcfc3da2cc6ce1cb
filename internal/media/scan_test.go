package media

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(rel), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"IMG_0001.jpg", KindPhoto},
		{"IMG_0001.JPG", KindPhoto},
		{"raw.cr2", KindPhoto},
		{"pano.heic", KindPhoto},
		{"clip.mp4", KindVideo},
		{"clip.MOV", KindVideo},
		{"song.mp3", KindAudio},
		{"song.flac", KindAudio},
		{"notes.txt", KindUnknown},
		{"noext", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	photo := writeFile(t, root, "Camera/IMG_0001.jpg")
	video := writeFile(t, root, "Camera/clip.mp4")
	audio := writeFile(t, root, "Music/song.mp3")
	unknown := writeFile(t, root, "notes.txt")
	writeFile(t, root, ".thumbnails/IMG_0001.jpg") // hidden dir
	writeFile(t, root, "Camera/.hidden.jpg")       // hidden file

	result, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(result.Photos) != 1 || result.Photos[0] != photo {
		t.Errorf("Photos = %v, want [%s]", result.Photos, photo)
	}
	if len(result.Videos) != 1 || result.Videos[0] != video {
		t.Errorf("Videos = %v, want [%s]", result.Videos, video)
	}
	if len(result.Audios) != 1 || result.Audios[0] != audio {
		t.Errorf("Audios = %v, want [%s]", result.Audios, audio)
	}
	if len(result.Unknown) != 1 || result.Unknown[0] != unknown {
		t.Errorf("Unknown = %v, want [%s]", result.Unknown, unknown)
	}
	if result.Total() != 4 {
		t.Errorf("Total() = %d, want 4", result.Total())
	}
	if len(result.MediaFiles()) != 3 {
		t.Errorf("MediaFiles() = %d entries, want 3", len(result.MediaFiles()))
	}
}

func TestScanMissingDirectory(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Scan() on missing directory should fail")
	}
}
