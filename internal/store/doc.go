// Package store provides the durable per-URL download state for docpull,
// backed by SQLite (modernc.org/sqlite, pure Go, no cgo).
//
// One row per URL in the downloads table records filename, size, checksum,
// content-type, HTTP status, lifecycle status, attempt count, last error,
// and last-attempt time. Each mutation is its own autocommit transaction,
// so a crash between operations leaves a consistent, resumable state. WAL
// journaling lets inspection tooling (the status command) read a consistent
// snapshot while the download pipeline writes.
package store
