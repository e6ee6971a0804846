// Package config provides configuration management for sclone.
//
// It utilizes Viper for loading configuration from a .env file, an optional
// config file (config.yaml, config.json or config.toml) and environment
// variables. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
//   - Sync: mode, deletion, safety limit, queue tuning, cache and artifacts
//   - Source, Target: storage backends (s3, aws, swift)
//   - Log: level, format and rotating file
//   - Server: HTTP status API
//   - Database: optional MySQL for the cache and run history
//
// Environment variables map to nested keys by replacing dots with
// underscores: SYNC_MODE sets sync.mode, TARGET_BUCKET sets target.bucket.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
