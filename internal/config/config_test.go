package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig("/home/u", "/home/u/.local/share/undisorder")

	if cfg.Targets.Images != "/home/u/Pictures/Photos" {
		t.Errorf("Images = %s", cfg.Targets.Images)
	}
	if cfg.Targets.Video != "/home/u/Videos" {
		t.Errorf("Video = %s", cfg.Targets.Video)
	}
	if cfg.Targets.Audio != "/home/u/Music" {
		t.Errorf("Audio = %s", cfg.Targets.Audio)
	}
	if cfg.Import.BatchSize != 50 || cfg.Import.AudioBatchSize != 10 {
		t.Errorf("batch sizes = %d/%d", cfg.Import.BatchSize, cfg.Import.AudioBatchSize)
	}
	if cfg.Geocoding.Mode != "off" {
		t.Errorf("geocoding mode = %s", cfg.Geocoding.Mode)
	}
	if cfg.DatabasePath() != "/home/u/.local/share/undisorder/undisorder.db" {
		t.Errorf("DatabasePath() = %s", cfg.DatabasePath())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestRead(t *testing.T) {
	input := `
data_dir = "~/data"

[targets]
images = "~/Photos"
audio = "/mnt/music"

[import]
move = true
batch_size = 25
exclude = ["*.tmp"]

[geocoding]
mode = "online"

[identify]
enabled = true
acoustid_key = "key123"
`
	cfg, err := Read(strings.NewReader(input), "/home/u", "/default/data")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if cfg.DataDir != "/home/u/data" {
		t.Errorf("DataDir = %s, want home-expanded path", cfg.DataDir)
	}
	if cfg.Targets.Images != "/home/u/Photos" {
		t.Errorf("Images = %s", cfg.Targets.Images)
	}
	// Unset sections keep defaults.
	if cfg.Targets.Video != "/home/u/Videos" {
		t.Errorf("Video = %s, want default", cfg.Targets.Video)
	}
	if cfg.Targets.Audio != "/mnt/music" {
		t.Errorf("Audio = %s", cfg.Targets.Audio)
	}
	if !cfg.Import.Move || cfg.Import.BatchSize != 25 {
		t.Errorf("import = %+v", cfg.Import)
	}
	if cfg.Import.AudioBatchSize != 10 {
		t.Errorf("AudioBatchSize = %d, want default 10", cfg.Import.AudioBatchSize)
	}
	if len(cfg.Import.Exclude) != 1 || cfg.Import.Exclude[0] != "*.tmp" {
		t.Errorf("Exclude = %v", cfg.Import.Exclude)
	}
	if cfg.Geocoding.Mode != "online" {
		t.Errorf("geocoding mode = %s", cfg.Geocoding.Mode)
	}
	if !cfg.Identify.Enabled || cfg.Identify.AcoustIDKey != "key123" {
		t.Errorf("identify = %+v", cfg.Identify)
	}
}

func TestReadInvalid(t *testing.T) {
	t.Run("bad geocoding mode", func(t *testing.T) {
		_, err := Read(strings.NewReader("[geocoding]\nmode = \"offline\"\n"), "/home/u", "/data")
		if err == nil {
			t.Error("expected error for unsupported geocoding mode")
		}
	})
	t.Run("bad batch size", func(t *testing.T) {
		_, err := Read(strings.NewReader("[import]\nbatch_size = -1\n"), "/home/u", "/data")
		if err == nil {
			t.Error("expected error for negative batch size")
		}
	})
	t.Run("malformed toml", func(t *testing.T) {
		_, err := Read(strings.NewReader("= nope"), "/home/u", "/data")
		if err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestReadFromFileMissingYieldsDefaults(t *testing.T) {
	cfg, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml"), "/home/u", "/data")
	if err != nil {
		t.Fatalf("ReadFromFile() error: %v", err)
	}
	if cfg.Import.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want default", cfg.Import.BatchSize)
	}
}

func TestInitAndRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "undisorder.toml")

	cfg := NewConfig("/home/u", "/data")
	cfg.Targets.Images = "/mnt/photos"

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if err := Init(path, cfg); err == nil {
		t.Error("second Init() should fail on existing file")
	}

	got, err := ReadFromFile(path, "/home/u", "/data")
	if err != nil {
		t.Fatalf("ReadFromFile() error: %v", err)
	}
	if got.Targets.Images != "/mnt/photos" {
		t.Errorf("round-tripped Images = %s", got.Targets.Images)
	}
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"~", "/home/u"},
		{"~/x/y", "/home/u/x/y"},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
	}
	for _, tt := range tests {
		if got := expandHome(tt.in, "/home/u"); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadFromFileUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission bits are not enforced")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.toml")
	if err := os.WriteFile(path, []byte(""), 0000); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFromFile(path, "/home/u", "/data"); err == nil {
		t.Error("expected error for unreadable file")
	}
}
