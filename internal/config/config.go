package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"undisorder/internal/geocode"
)

// Config is the main configuration for undisorder. Values act as defaults;
// CLI flags override them per run.
type Config struct {
	DataDir   string          `toml:"data_dir"` // index database and logs live here
	LogDir    string          `toml:"log_dir"`
	Targets   TargetsConfig   `toml:"targets"`
	Import    ImportConfig    `toml:"import"`
	Geocoding GeocodingConfig `toml:"geocoding"`
	Identify  IdentifyConfig  `toml:"identify"`
}

// TargetsConfig holds the destination roots per media kind.
type TargetsConfig struct {
	Images string `toml:"images"`
	Video  string `toml:"video"`
	Audio  string `toml:"audio"`
}

// ImportConfig holds pipeline tuning and default behavior flags.
type ImportConfig struct {
	Move           bool     `toml:"move"`
	Update         bool     `toml:"update"`
	BatchSize      int      `toml:"batch_size"`       // photo/video batch size
	AudioBatchSize int      `toml:"audio_batch_size"` // smaller, to bound identification exposure
	HashWorkers    int      `toml:"hash_workers"`     // 0 means number of CPUs
	Exclude        []string `toml:"exclude"`
	ExcludeDir     []string `toml:"exclude_dir"`
}

// GeocodingConfig selects the reverse-geocoding mode ("off" or "online").
type GeocodingConfig struct {
	Mode string `toml:"mode"`
}

// IdentifyConfig controls AcoustID-based audio identification.
type IdentifyConfig struct {
	Enabled     bool   `toml:"enabled"`
	AcoustIDKey string `toml:"acoustid_key"`
}

// DatabasePath returns the index database location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "undisorder.db")
}

// NewConfig creates a Config with built-in defaults rooted at the user's
// home directory.
func NewConfig(homeDir, dataDir string) *Config {
	return &Config{
		DataDir: dataDir,
		LogDir:  filepath.Join(dataDir, "log"),
		Targets: TargetsConfig{
			Images: filepath.Join(homeDir, "Pictures", "Photos"),
			Video:  filepath.Join(homeDir, "Videos"),
			Audio:  filepath.Join(homeDir, "Music"),
		},
		Import: ImportConfig{
			BatchSize:      50,
			AudioBatchSize: 10,
		},
		Geocoding: GeocodingConfig{Mode: string(geocode.ModeOff)},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if !geocode.ValidMode(c.Geocoding.Mode) {
		return fmt.Errorf("geocoding mode %q is not supported (use \"off\" or \"online\")", c.Geocoding.Mode)
	}
	if c.Import.BatchSize < 1 {
		return fmt.Errorf("import batch_size must be positive, got %d", c.Import.BatchSize)
	}
	if c.Import.AudioBatchSize < 1 {
		return fmt.Errorf("import audio_batch_size must be positive, got %d", c.Import.AudioBatchSize)
	}
	return nil
}

// Read decodes a Config from the provided reader and applies defaults for
// absent sections.
func Read(r io.Reader, homeDir, dataDir string) (*Config, error) {
	cfg := NewConfig(homeDir, dataDir)
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	expandConfigPaths(cfg, homeDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFromFile reads a Config from path. A missing file yields the built-in
// defaults rather than an error.
func ReadFromFile(path, homeDir, dataDir string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewConfig(homeDir, dataDir), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f, homeDir, dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Init creates a new config file at path. Fails if one already exists.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := Write(f, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

func expandConfigPaths(cfg *Config, homeDir string) {
	cfg.DataDir = expandHome(cfg.DataDir, homeDir)
	cfg.LogDir = expandHome(cfg.LogDir, homeDir)
	cfg.Targets.Images = expandHome(cfg.Targets.Images, homeDir)
	cfg.Targets.Video = expandHome(cfg.Targets.Video, homeDir)
	cfg.Targets.Audio = expandHome(cfg.Targets.Audio, homeDir)
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
