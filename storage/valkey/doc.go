// Package valkey provides a Valkey storage backend for the OAuth engine.
//
// Valkey is a key-value store that is wire-compatible with Redis. The Store
// type embeds a kv.Store, so it implements storage.FullModel with the key
// schema described in package kv, and is suitable for deployments that
// need:
//
//   - Shared state across several engine instances
//   - Persistence across server restarts
//   - Automatic TTL-based expiration
//
// # Atomic Operations
//
// Consuming an authorization code, rotating a refresh token and revoking an
// access token use GETDEL, so when two requests race on the same value the
// server lets exactly one of them win. GETDEL requires Valkey 7.2 or Redis
// 6.2 and later.
//
// # Usage
//
//	store, err := valkey.New(valkey.Config{
//		Address:   "localhost:6379",
//		KeyPrefix: "oauth2:",
//	})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
// # Testing
//
// The tests need a running server. Set VALKEY_TEST_ADDR, or they try
// localhost:6379 and skip when nothing answers.
package valkey
