// Package guard reverts unsanctioned writes to the credential record.
//
// The guard keeps the last known-good contents of the config bucket and
// consumes the store's change notifications. A write made by the
// controller itself is announced in advance with Arm, which registers the
// canonical digest of the bucket contents that write will produce. A
// notification whose snapshot carries a registered digest is sanctioned
// and ignored. Any other notification triggers a comparison of the store's
// current contents with the known-good copy, and a mismatch is undone by
// replacing the bucket with the known-good copy. A revert also forgets the
// tokens of writes that already settled, since the restored copy holds them.
//
// Digests are BLAKE3-256 over the RFC 8949 core deterministic CBOR
// encoding of the bucket, so equal contents always hash equal regardless
// of map iteration order.
//
// A Guard is not safe for concurrent use; it is owned by the controller
// goroutine.
package guard
