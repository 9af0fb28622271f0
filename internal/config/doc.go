// Package config provides configuration management for novel-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Overriding settings from NOVEL_* environment variables
//   - Conversion to PathConfig for the assembly writer
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Writes to ./<name>/<title>/article.md
//	// 5 retries per page, 3 concurrent image downloads
//	// pandoc conversion script enabled
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // malformed file or environment variable
//	}
//
// # Environment Overrides
//
// Every setting has an environment variable named after its JSON key in
// upper case with the NOVEL_ prefix, applied after the file is read:
//
//	NOVEL_OUTPUT_DIR=/books NOVEL_MAX_CONCURRENT_IMAGES=5 novel-dl <address>
//
// # Saving Settings
//
//	settings.OutputDir = "/books"
//	err := settings.Save(config.DefaultPath())
package config
