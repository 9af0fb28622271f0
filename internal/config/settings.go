package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/handiism/novel-downloader/internal/model"
)

// EnvPrefix prefixes every environment variable that overrides a setting.
const EnvPrefix = "NOVEL_"

// Settings holds all configuration options.
type Settings struct {
	// Output layout
	OutputDir        string `json:"output_dir" env:"OUTPUT_DIR"`
	FolderFormat     string `json:"folder_format" env:"FOLDER_FORMAT"`
	DocumentFileName string `json:"document_file_name" env:"DOCUMENT_FILE_NAME"`
	MetaFileName     string `json:"meta_file_name" env:"META_FILE_NAME"`

	// Download settings
	ChapterMaxRetries     int  `json:"chapter_max_retries" env:"CHAPTER_MAX_RETRIES"`
	MaxConcurrentImages   int  `json:"max_concurrent_images" env:"MAX_CONCURRENT_IMAGES"`
	RequestTimeoutSeconds int  `json:"request_timeout_seconds" env:"REQUEST_TIMEOUT_SECONDS"`
	BridgeVolumes         bool `json:"bridge_volumes" env:"BRIDGE_VOLUMES"`

	// Request settings
	UserAgent string `json:"user_agent" env:"USER_AGENT"`
	Cookie    string `json:"cookie" env:"COOKIE"` // cookie string or path to a JSON cookie file

	// Output extras
	WriteConversionScript bool `json:"write_conversion_script" env:"WRITE_CONVERSION_SCRIPT"`
	ConvertCoverToJPG     bool `json:"convert_cover_to_jpg" env:"CONVERT_COVER_TO_JPG"`
	CoverMaxSize          int  `json:"cover_max_size" env:"COVER_MAX_SIZE"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	outputDir, err := os.Getwd()
	if err != nil {
		outputDir = "."
	}
	return &Settings{
		OutputDir:        outputDir,
		FolderFormat:     "{name}/{title}",
		DocumentFileName: "article.md",
		MetaFileName:     "meta.json",

		ChapterMaxRetries:     5,
		MaxConcurrentImages:   3,
		RequestTimeoutSeconds: 60,
		BridgeVolumes:         true,

		WriteConversionScript: true,
		ConvertCoverToJPG:     true,
		CoverMaxSize:          0,
	}
}

// DefaultPath returns the default settings file location,
// <user config dir>/novel-downloader/settings.json.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "novel-downloader", "settings.json")
}

// Load reads settings from a JSON file and applies NOVEL_* environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}
	return settings, nil
}

// ApplyEnv overrides settings from NOVEL_* environment variables. Unset
// variables leave the current values alone.
func (s *Settings) ApplyEnv() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// RequestTimeout returns the HTTP request timeout.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		FolderFormat:     s.FolderFormat,
		DocumentFileName: s.DocumentFileName,
		MetaFileName:     s.MetaFileName,
	}
}
