// Package config loads the facility matcher configuration.
//
// Values come from environment variables, optionally seeded from a .env file via godotenv,
// and are decoded with Viper. Defaults live in 'default' struct tags next to each field.
//
// # Sections
//
//   - Server: HTTP port, API key, upload size limit (SERVER_PORT, SERVER_API_KEY, ...)
//   - Storage: S3/MinIO endpoint, credentials and bucket (STORAGE_BUCKET, ...)
//   - Log: level and format (LOG_LEVEL, LOG_FORMAT)
//   - Database: optional registry database (DATABASE_DRIVER, DATABASE_HOST, ...)
//   - Matching: default threshold, labels, workers, session TTL (MATCHING_DEFAULT_THRESHOLD, ...)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
