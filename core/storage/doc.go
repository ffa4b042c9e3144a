// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so the matcher can read
// facility lists from a bucket and publish exports to it. Both AWS S3 and self-hosted
// MinIO work.
//
// # Layout
//
// Inputs are expected under uploads/ and exports are written under exports/<timestamp>/.
//
// # Helpers
//
//   - ReadTable: downloads an object and parses it as CSV, TSV or XLSX.
//   - PutExport: uploads an export file and returns its key.
//   - EnsureBucket: creates the bucket if needed.
//
// The Client interface makes storage easy to mock in tests (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	ref, err := storage.ReadTable(ctx, client, cfg.Storage.Bucket, "uploads/dhis2.xlsx", table.ReadOptions{})
package storage
