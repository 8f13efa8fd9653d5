// Package storage defines the Model consumed by the OAuth engine: the
// mandatory Model interface, the optional capability interfaces, and the
// entities they exchange.
//
// The engine owns no persistent state. Every lookup and write goes through
// a Model supplied by the caller, and each capability a configured grant
// needs is checked once at startup rather than mid-request.
//
// Lookups return (nil, nil) when the entity does not exist; an error is
// reserved for backend failures.
//
// Implementations are provided in subpackages:
//   - storage/memory: mutex-guarded in-memory store
//   - storage/kv: Model over any key-value Backend with atomic get-and-delete
//   - storage/valkey, storage/redis, storage/bolt: kv Backends
//   - storage/mock: gomock mocks for unit tests
//   - storage/seed: YAML provisioning of clients and users
package storage
