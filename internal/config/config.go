// Package config resolves where tasks are stored and how the program looks
// and logs. Sources, lowest priority first: defaults, the TOML config file,
// TADA_* environment variables, then command-line flags (applied by the
// caller through Overrides).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the directory name used under the XDG config and data dirs.
	AppName = "tada"

	// FileName is the config file looked up in the config dir.
	FileName = "config.toml"

	DefaultBackend  = "file"
	DefaultKey      = "tada_todos_v2"
	DefaultTheme    = "classic"
	DefaultLogLevel = "warn"
)

// Config is the resolved configuration.
type Config struct {
	Storage Storage `toml:"storage"`
	UI      UI      `toml:"ui"`
	Log     Log     `toml:"log"`
}

type Storage struct {
	// Backend is file, sqlite or memory.
	Backend string `toml:"backend"`
	// Path of the data file. Empty means the default under the data dir.
	Path string `toml:"path"`
	// Key is the slot the task list is stored under.
	Key string `toml:"key"`
}

type UI struct {
	Theme string `toml:"theme"`
}

type Log struct {
	Level string `toml:"level"`
	// File receives logs from the interactive program.
	File string `toml:"file"`
}

// Overrides holds flag values; empty fields leave the config untouched.
type Overrides struct {
	Backend string
	Path    string
	Theme   string
	Debug   bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: Storage{Backend: DefaultBackend, Key: DefaultKey},
		UI:      UI{Theme: DefaultTheme},
		Log:     Log{Level: DefaultLogLevel},
	}
}

// Load reads path (or the default config file when path is empty), then
// applies the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(Dir(), FileName)
	}
	if err := loadFile(cfg, path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	cfg.finalize()
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TADA_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("TADA_DATA"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TADA_KEY"); v != "" {
		cfg.Storage.Key = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Apply layers flag values over the config.
func (c *Config) Apply(o Overrides) {
	if o.Backend != "" {
		c.Storage.Backend = o.Backend
		c.Storage.Path = ""
	}
	if o.Path != "" {
		c.Storage.Path = o.Path
	}
	if o.Theme != "" {
		c.UI.Theme = o.Theme
	}
	if o.Debug {
		c.Log.Level = "debug"
	}
	c.finalize()
}

func (c *Config) finalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultBackend
	}
	if c.Storage.Key == "" {
		c.Storage.Key = DefaultKey
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultDataPath(c.Storage.Backend)
	}
	c.Storage.Path = expandHome(c.Storage.Path)
	if c.Log.File == "" {
		c.Log.File = filepath.Join(DataDir(), "tada.log")
	}
	c.Log.File = expandHome(c.Log.File)
}

func defaultDataPath(backend string) string {
	if backend == "sqlite" {
		return filepath.Join(DataDir(), "todos.db")
	}
	return filepath.Join(DataDir(), "todos.json")
}

// Dir is the config directory: $XDG_CONFIG_HOME/tada or ~/.config/tada.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DataDir is the data directory: $XDG_DATA_HOME/tada or ~/.local/share/tada.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}
