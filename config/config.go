// Package config loads the statline TOML configuration over built-in defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/statline/editor"
	"github.com/lixenwraith/statline/history"
	"github.com/lixenwraith/statline/terminal"
	"github.com/lixenwraith/statline/toml"
)

// Backend and bell choices
const (
	BackendUnix = "unix"
	BackendTTY  = "tty"

	BellTerminal = "terminal"
	BellAudio    = "audio"
	BellNone     = "none"
)

type Config struct {
	Editor   EditorConfig      `toml:"editor"`
	Screen   ScreenConfig      `toml:"screen"`
	Terminal TerminalConfig    `toml:"terminal"`
	History  HistoryConfig     `toml:"history"`
	Audio    AudioConfig       `toml:"audio"`
	Keys     map[string]string `toml:"keys,omitempty"`
	Log      LogConfig         `toml:"log"`
}

type EditorConfig struct {
	Prompt      string `toml:"prompt"`
	WordPattern string `toml:"word_pattern"`
	// Columns overrides the terminal width when positive
	Columns int `toml:"columns"`
	// Words feed the prefix completer
	Words []string `toml:"words"`
}

type ScreenConfig struct {
	Rows    int           `toml:"rows"`
	Top     int           `toml:"top"`
	Refresh time.Duration `toml:"refresh"`
}

type TerminalConfig struct {
	Backend   string `toml:"backend"`
	Bell      string `toml:"bell"`
	HighWater int    `toml:"high_water"`
}

type HistoryConfig struct {
	Backend string `toml:"backend"`
	// Path defaults to a backend-specific file under the state directory
	Path  string `toml:"path,omitempty"`
	Limit int    `toml:"limit"`
}

// AudioConfig shapes the tone played when bell = "audio"
type AudioConfig struct {
	Volume     float64       `toml:"volume"`
	Frequency  float64       `toml:"frequency"`
	Length     time.Duration `toml:"length"`
	SampleRate int           `toml:"sample_rate"`
}

type LogConfig struct {
	Debug   bool   `toml:"debug"`
	Dir     string `toml:"dir"`
	MaxSize int64  `toml:"max_size"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			Prompt:      "> ",
			WordPattern: editor.DefaultWordPattern,
			Words:       []string{"clear", "date", "echo", "exit", "help", "history", "rows", "status", "uptime"},
		},
		Screen: ScreenConfig{
			Rows:    2,
			Top:     1,
			Refresh: time.Second,
		},
		Terminal: TerminalConfig{
			Backend:   BackendUnix,
			Bell:      BellTerminal,
			HighWater: terminal.DefaultHighWater,
		},
		History: HistoryConfig{
			Backend: history.BackendMemory,
			Limit:   1000,
		},
		Audio: AudioConfig{
			Volume:     0.3,
			Frequency:  880,
			Length:     80 * time.Millisecond,
			SampleRate: 44100,
		},
		Log: LogConfig{
			Dir:     "logs",
			MaxSize: 10 << 20,
		},
	}
}

// DefaultPath is ~/.config/statline/config.toml, or the platform equivalent
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".config", "statline", "config.toml")
	}
	return filepath.Join(dir, "statline", "config.toml")
}

// StateDir holds history files when no path is configured
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "statline")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".statline"
	}
	return filepath.Join(home, ".local", "state", "statline")
}

// Load reads the configuration at path over the defaults. An empty path
// selects DefaultPath, which may be missing; an explicit path must exist.
// Environment overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides settings from STATLINE_* variables; unparsable values are ignored
func (c *Config) applyEnv() {
	if v := os.Getenv("STATLINE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Debug = b
		}
	}
	if v := os.Getenv("STATLINE_BELL"); v != "" {
		c.Terminal.Bell = v
	}
	if v := os.Getenv("STATLINE_HISTORY"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("STATLINE_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("STATLINE_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Screen.Rows = n
		}
	}
}

// Validate reports the first invalid setting, naming its key
func (c *Config) Validate() error {
	if _, err := regexp.Compile(c.Editor.WordPattern); err != nil {
		return fmt.Errorf("editor.word_pattern: %w", err)
	}
	if c.Editor.Columns < 0 {
		return fmt.Errorf("editor.columns: must not be negative, got %d", c.Editor.Columns)
	}
	if c.Screen.Rows < 0 {
		return fmt.Errorf("screen.rows: must not be negative, got %d", c.Screen.Rows)
	}
	if c.Screen.Top < 1 {
		return fmt.Errorf("screen.top: must be at least 1, got %d", c.Screen.Top)
	}
	if c.Screen.Refresh <= 0 {
		return fmt.Errorf("screen.refresh: must be positive, got %s", c.Screen.Refresh)
	}

	switch c.Terminal.Backend {
	case BackendUnix, BackendTTY:
	default:
		return fmt.Errorf("terminal.backend: unknown backend %q", c.Terminal.Backend)
	}
	switch c.Terminal.Bell {
	case BellTerminal, BellAudio, BellNone:
	default:
		return fmt.Errorf("terminal.bell: unknown bell %q", c.Terminal.Bell)
	}
	if c.Terminal.HighWater < 0 {
		return fmt.Errorf("terminal.high_water: must not be negative, got %d", c.Terminal.HighWater)
	}

	switch c.History.Backend {
	case history.BackendMemory, history.BackendSQLite, history.BackendTOML:
	default:
		return fmt.Errorf("history.backend: unknown backend %q", c.History.Backend)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit: must not be negative, got %d", c.History.Limit)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume: must be within [0, 1], got %g", c.Audio.Volume)
	}
	if c.Audio.Frequency <= 0 {
		return fmt.Errorf("audio.frequency: must be positive, got %g", c.Audio.Frequency)
	}
	if c.Audio.Length <= 0 {
		return fmt.Errorf("audio.length: must be positive, got %s", c.Audio.Length)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate: must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Frequency*2 >= float64(c.Audio.SampleRate) {
		return fmt.Errorf("audio.frequency: %g Hz is not below half the sample rate", c.Audio.Frequency)
	}

	if _, err := editor.KeyBindings(c.Keys); err != nil {
		return err
	}
	return nil
}

// HistoryPath resolves the history file, expanding a leading ~
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return ExpandHome(c.History.Path)
	}
	switch c.History.Backend {
	case history.BackendSQLite:
		return filepath.Join(StateDir(), "history.db")
	case history.BackendTOML:
		return filepath.Join(StateDir(), "history.toml")
	}
	return ""
}

// ExpandHome replaces a leading "~/" with the home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// Marshal renders the configuration as TOML
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
