// Package download fetches harvested file URLs with verification and
// durable idempotency.
//
// Every URL goes through the same lifecycle: an idempotency check against
// the state store (a verified file that already exists on disk is never
// re-fetched), then up to a configured number of attempts. Each attempt is
// recorded in the store before the network request, streams the response
// to a temporary file, validates size and leading magic bytes, and
// installs the file with an atomic rename so a verified name never refers
// to a partial download. Failed attempts back off exponentially; a URL
// that exhausts its attempts is marked failed with its last error and
// never aborts the rest of the batch.
package download
