// Package config persists user settings between sessions. The file is
// plain TOML so it stays hand-editable, mirroring the original tool's
// opus2mp3.cfg.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Window holds the remembered main-window geometry.
type Window struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Paths holds the last-used source and destination directories.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	OutputDir string `toml:"output_dir"`
}

// Encoding holds the FFmpeg parameters applied to every conversion.
type Encoding struct {
	// Normalize enables the two-pass loudnorm measurement before encoding.
	Normalize bool    `toml:"normalize"`
	TargetI   float64 `toml:"target_i"`
	TargetLRA float64 `toml:"target_lra"`
	TargetTP  float64 `toml:"target_tp"`
	// Quality is the LAME VBR quality passed as -q:a (0 best, 9 worst).
	Quality    int `toml:"quality"`
	SampleRate int `toml:"sample_rate"`
}

// Settings is the root of the config file.
type Settings struct {
	Window    Window   `toml:"window"`
	Paths     Paths    `toml:"paths"`
	Encoding  Encoding `toml:"encoding"`
	WatchMode bool     `toml:"watch_mode"`
	LogLevel  string   `toml:"log_level"`
}

// Default returns the settings used when no config file exists.
// The loudnorm targets match the original converter's fixed filter.
func Default() Settings {
	return Settings{
		Window: Window{Width: 640, Height: 800},
		Encoding: Encoding{
			Normalize:  true,
			TargetI:    -12,
			TargetLRA:  11,
			TargetTP:   -1.5,
			Quality:    0,
			SampleRate: 48000,
		},
	}
}

// Dir returns the per-user directory holding the config file, lock file
// and logs.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "opus2mp3"), nil
}

// DefaultPath returns the full path of the config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the settings file at path. A missing file is not an error;
// defaults are returned and exists reports false.
func Load(path string) (cfg Settings, exists bool, err error) {
	cfg = Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, false, nil
		}
		return cfg, false, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), true, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, true, nil
}

// Save writes the settings to path, creating parent directories as
// needed.
func (s Settings) Save(path string) error {
	s.normalize()

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// normalize clamps values a hand-edited file could have pushed out of
// range. Loudness targets are interpreted as negative regardless of
// sign, like the original UI did.
func (s *Settings) normalize() {
	if s.Window.Width < 400 {
		s.Window.Width = Default().Window.Width
	}
	if s.Window.Height < 300 {
		s.Window.Height = Default().Window.Height
	}
	if s.Encoding.Quality < 0 || s.Encoding.Quality > 9 {
		s.Encoding.Quality = Default().Encoding.Quality
	}
	switch s.Encoding.SampleRate {
	case 44100, 48000:
	default:
		s.Encoding.SampleRate = Default().Encoding.SampleRate
	}
	if s.Encoding.TargetI > 0 {
		s.Encoding.TargetI = -s.Encoding.TargetI
	}
	if s.Encoding.TargetTP > 0 {
		s.Encoding.TargetTP = -s.Encoding.TargetTP
	}
	if s.Encoding.TargetLRA <= 0 {
		s.Encoding.TargetLRA = Default().Encoding.TargetLRA
	}
}
