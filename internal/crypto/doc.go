// Package crypto provides the credential vault for hostlock.
//
// The master password is never hashed. Instead it is encrypted with a key
// derived from itself, and a later password is accepted only if the
// resulting ciphertext opens under the key derived from that candidate.
// The GCM tag is the proof; the plaintext is never compared.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from password via PBKDF2
//   - 12-byte random nonce per encryption operation
//   - nonce, ciphertext and tag stored together as one hex string
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 64-byte random salt (stored hex-encoded next to the ciphertext)
//   - 102,400 iterations
//
// The iteration count is not stored with the credential, so changing
// DefaultIters invalidates every stored password.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Encryptor.Destroy() when done with encryption operations
package crypto
