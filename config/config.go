package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Script    ScriptConfig    `yaml:"script"`
	Narration NarrationConfig `yaml:"narration"`
	Images    ImagesConfig    `yaml:"images"`
	Video     VideoConfig     `yaml:"video"`
	Upload    UploadConfig    `yaml:"upload"`
}

type PathsConfig struct {
	ShortsRoot    string `yaml:"shorts_root"`
	AnimalsFile   string `yaml:"animals_file"`
	ClientSecrets string `yaml:"client_secrets"`
	TokenFile     string `yaml:"token_file"`
}

type ScriptConfig struct {
	Model         string  `yaml:"model"`
	MetadataModel string  `yaml:"metadata_model"`
	Temperature   float64 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
}

type NarrationConfig struct {
	Command        string  `yaml:"command"` // TTS command; empty = $TTS_COMMAND or edge-tts
	Voice          string  `yaml:"voice"`
	Workers        int     `yaml:"workers"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
}

type ImagesConfig struct {
	Provider       string  `yaml:"provider"` // dall_e | flux_schnell | flux_pro
	Size           string  `yaml:"size"`
	Workers        int     `yaml:"workers"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
}

type VideoConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type UploadConfig struct {
	Disclaimer string `yaml:"disclaimer"`
	CategoryID string `yaml:"category_id"`
	Privacy    string `yaml:"privacy"`
	PageSize   int64  `yaml:"page_size"`
}

// Load reads a YAML config file and fills in defaults for anything omitted.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with every field at its built-in default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Paths.ShortsRoot == "" {
		c.Paths.ShortsRoot = "shorts"
	}
	if c.Paths.AnimalsFile == "" {
		c.Paths.AnimalsFile = "animals.txt"
	}
	if c.Paths.ClientSecrets == "" {
		c.Paths.ClientSecrets = "client_secrets.json"
	}
	if c.Paths.TokenFile == "" {
		c.Paths.TokenFile = "token.bin"
	}
	if c.Script.Model == "" {
		c.Script.Model = "gpt-4"
	}
	if c.Script.MetadataModel == "" {
		c.Script.MetadataModel = "gpt-4o"
	}
	if c.Script.MaxTokens == 0 {
		c.Script.MaxTokens = 4096
	}
	if c.Narration.Voice == "" {
		c.Narration.Voice = "en-US-GuyNeural"
	}
	if c.Narration.Workers == 0 {
		c.Narration.Workers = 4
	}
	if c.Narration.RequestsPerSec == 0 {
		c.Narration.RequestsPerSec = 2
	}
	if c.Images.Provider == "" {
		c.Images.Provider = "dall_e"
	}
	if c.Images.Size == "" {
		c.Images.Size = "1024x1792"
	}
	if c.Images.Workers == 0 {
		c.Images.Workers = 4
	}
	if c.Images.RequestsPerSec == 0 {
		c.Images.RequestsPerSec = 1
	}
	if c.Video.Width == 0 {
		c.Video.Width = 1080
	}
	if c.Video.Height == 0 {
		c.Video.Height = 1920
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 30
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = "15" // Pets & Animals
	}
	if c.Upload.Privacy == "" {
		c.Upload.Privacy = "private"
	}
	if c.Upload.PageSize == 0 {
		c.Upload.PageSize = 50
	}
}
