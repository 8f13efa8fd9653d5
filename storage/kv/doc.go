// Package kv implements storage.FullModel on top of any key-value Backend.
//
// Entities are stored as JSON under prefixed keys:
//
//	{prefix}client:{id}
//	{prefix}user:{username}
//	{prefix}code:{code}
//	{prefix}access:{token}
//	{prefix}refresh:{token}
//
// Codes and tokens are written with a TTL of their remaining lifetime plus
// Config.ExpiredRetention, so a token presented shortly after expiry is
// still found and reported as expired instead of unknown. Consuming a code,
// rotating a refresh token and revoking an access token use the backend's
// atomic GetDel.
//
// Backends live in storage/valkey, storage/redis and storage/bolt.
package kv
