// Package settings persists the user's narration choices between runs.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	FormatMP4 = "mp4"
	FormatMP3 = "mp3"

	MinVolume = 0
	MaxVolume = 200
	MinRate   = 50
	MaxRate   = 400
)

type Settings struct {
	Voice           string `yaml:"voice"`
	OutputFormat    string `yaml:"output_format"`
	NarrationVolume int    `yaml:"narration_volume"`
	NarrationRate   int    `yaml:"narration_rate"`
	BaseVolume      int    `yaml:"base_volume"`
}

// Default returns the settings used for absent keys
func Default() Settings {
	return Settings{
		Voice:           "",
		OutputFormat:    FormatMP4,
		NarrationVolume: 100,
		NarrationRate:   200,
		BaseVolume:      100,
	}
}

// Load reads settings from path. A missing file yields Default(); keys
// absent from the file keep their default values.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path through a temp file and rename
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (s Settings) Validate() error {
	if s.OutputFormat != FormatMP4 && s.OutputFormat != FormatMP3 {
		return fmt.Errorf("output_format must be %q or %q, got %q", FormatMP4, FormatMP3, s.OutputFormat)
	}
	if s.NarrationVolume < MinVolume || s.NarrationVolume > MaxVolume {
		return fmt.Errorf("narration_volume must be within %d-%d, got %d", MinVolume, MaxVolume, s.NarrationVolume)
	}
	if s.BaseVolume < MinVolume || s.BaseVolume > MaxVolume {
		return fmt.Errorf("base_volume must be within %d-%d, got %d", MinVolume, MaxVolume, s.BaseVolume)
	}
	if s.NarrationRate < MinRate || s.NarrationRate > MaxRate {
		return fmt.Errorf("narration_rate must be within %d-%d, got %d", MinRate, MaxRate, s.NarrationRate)
	}
	return nil
}
