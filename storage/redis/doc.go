// Package redis provides a Redis storage backend, built on go-redis, for
// the OAuth engine.
//
// It supports a single node or a Sentinel-managed primary. The Store embeds
// a kv.Store and therefore shares the key schema and expiry handling of
// every other kv backend. Code consumption and refresh-token rotation use
// GETDEL (Redis 6.2 or later).
//
//	store, err := redis.New(ctx, redis.Config{Addrs: []string{"localhost:6379"}})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
package redis
