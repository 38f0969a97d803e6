// Package config provides configuration management for roster-sync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Log: Logging level and format
//   - Source: roster provider and column mapping
//   - Baserow / SQL / Database: roster provider settings
//   - Buttondown: mailing list credentials and skippable error codes
//   - Storage / Membership: optional S3/MinIO report archive
//
// Nested keys map to upper-case environment variables with "." replaced by "_",
// e.g. source.tag_columns is read from SOURCE_TAG_COLUMNS. List values are comma separated.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Buttondown.URL)
package config
