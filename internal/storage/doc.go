// Package storage provides the persisted and process-lifetime stores for hostlock.
//
// The durable store is a BBolt database with two buckets:
//   - config: the credential record (passwd, recoveryKeyHash), one JSON value per key
//   - meta: the instance ID used by clients as a keyring account name
//
// Every committed write to the config bucket is published to subscribers
// as a Change carrying the full bucket contents as of that commit. The
// tamper guard relies on this to tell its own writes apart from others.
//
// The ephemeral store lives in memory and is gone when the process exits.
// It holds the session counter captured when the host is locked.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
