package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	TTS     TTSConfig     `yaml:"tts"`
	Script  ScriptConfig  `yaml:"script"`
	Logging LoggingConfig `yaml:"logging"`
}

type PathsConfig struct {
	Work     string `yaml:"work"`
	Input    string `yaml:"input"`
	Settings string `yaml:"settings"`
}

type FFmpegConfig struct {
	Binary      string `yaml:"binary"`
	ProbeBinary string `yaml:"probe_binary"`
	VideoCodec  string `yaml:"video_codec"`
	AudioCodec  string `yaml:"audio_codec"`
	MP3Codec    string `yaml:"mp3_codec"`
	SampleRate  int    `yaml:"sample_rate"`

	// FilterScriptOption passes the filter graph file. ffmpeg 7.1 deprecates
	// -filter_complex_script in favour of -/filter_complex.
	FilterScriptOption string `yaml:"filter_script_option"`
}

type TTSConfig struct {
	Binary       string `yaml:"binary"`
	DefaultVoice string `yaml:"default_voice"`
}

type ScriptConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Filename string `yaml:"filename"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration, ignoring the environment
func Default() *Config {
	cfg := &Config{}
	// Validate only fills defaults on an empty config and cannot fail here
	_ = cfg.Validate()
	return cfg
}

// LoadDefaults builds the default configuration with NARRATE_* environment
// overrides applied. It is used when no config file exists.
func LoadDefaults() (*Config, error) {
	cfg := &Config{}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Load reads a YAML config file, applies NARRATE_* environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadEnv loads a .env file into the process environment. A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"NARRATE_WORK_DIR":    &c.Paths.Work,
		"NARRATE_INPUT_DIR":   &c.Paths.Input,
		"NARRATE_SETTINGS":    &c.Paths.Settings,
		"NARRATE_FFMPEG":      &c.FFmpeg.Binary,
		"NARRATE_FFPROBE":     &c.FFmpeg.ProbeBinary,
		"NARRATE_TTS_BINARY":  &c.TTS.Binary,
		"NARRATE_TTS_VOICE":   &c.TTS.DefaultVoice,
		"NARRATE_LOG_LEVEL":   &c.Logging.Level,
		"NARRATE_SCRIPT_FILE": &c.Script.Filename,
	}
	for key, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
}

func (c *Config) Validate() error {
	if c.FFmpeg.SampleRate < 0 {
		return fmt.Errorf("ffmpeg.sample_rate must be positive")
	}
	if c.Paths.Input != "" && c.Paths.Input == c.Paths.Work {
		return fmt.Errorf("paths.input and paths.work must differ")
	}

	if c.Paths.Work == "" {
		c.Paths.Work = "conversion"
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Settings == "" {
		c.Paths.Settings = "settings.yaml"
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = "ffprobe"
	}
	if c.FFmpeg.VideoCodec == "" {
		c.FFmpeg.VideoCodec = "copy"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "aac"
	}
	if c.FFmpeg.MP3Codec == "" {
		c.FFmpeg.MP3Codec = "libmp3lame"
	}
	switch c.FFmpeg.FilterScriptOption {
	case "":
		c.FFmpeg.FilterScriptOption = "-filter_complex_script"
	case "-filter_complex_script", "-/filter_complex":
	default:
		return fmt.Errorf("ffmpeg.filter_script_option must be -filter_complex_script or -/filter_complex, got %q", c.FFmpeg.FilterScriptOption)
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 44100
	}
	if c.TTS.Binary == "" {
		c.TTS.Binary = "espeak-ng"
	}
	if c.Script.Filename == "" {
		c.Script.Filename = "narration_script.docx"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
