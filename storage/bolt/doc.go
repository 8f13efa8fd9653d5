// Package bolt provides an embedded, file-backed storage backend for the
// OAuth engine using bbolt.
//
// It suits single-instance deployments that must survive restarts without
// running a separate database. All entries live in one bucket under the
// kv key schema; a background sweeper deletes expired codes and tokens.
package bolt
