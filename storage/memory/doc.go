// Package memory provides an in-memory implementation of storage.FullModel.
//
// All state lives in the Store value passed to the engine; two Stores never
// share entries. Client secrets and user passwords are kept as bcrypt
// hashes. Code consumption and refresh-token expiry are atomic under the
// store mutex, so exactly one of several concurrent redemptions succeeds.
//
// A background goroutine removes codes and tokens some time after they
// expire; call Stop when the store is no longer needed.
//
//	store := memory.New(memory.WithLogger(logger))
//	defer store.Stop()
//
// For multi-instance deployments use one of the storage/kv backends.
package memory
