package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrEmptyPassword is returned when asked to encrypt an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// Credential is the persisted form of the master password.
// Data is hex(nonce || ciphertext || tag), Salt is hex(salt).
type Credential struct {
	Data string `json:"data"`
	Salt string `json:"salt"`
}

// Encrypt seals password under a key derived from password itself and a
// fresh random salt. No separate hash is produced: the credential verifies
// a candidate password only through Decrypt.
func Encrypt(password string) (*Credential, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	kdf, err := NewKDF()
	if err != nil {
		return nil, err
	}

	secret := []byte(password)
	defer ClearBytes(secret)

	enc := NewEncryptor(kdf.DeriveKey(secret))
	defer enc.Destroy()

	sealed, err := enc.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt password: %w", err)
	}

	return &Credential{
		Data: hex.EncodeToString(sealed),
		Salt: hex.EncodeToString(kdf.Salt),
	}, nil
}

// Decrypt reports whether password opens the credential given as hex
// strings. It returns false for any malformed input instead of an error.
func Decrypt(dataHex, password, saltHex string) bool {
	if dataHex == "" || saltHex == "" {
		return false
	}
	if len(saltHex)%2 != 0 {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return false
	}

	secret := []byte(password)
	defer ClearBytes(secret)

	enc := NewEncryptor(DeriveKey(secret, salt, DefaultIters))
	defer enc.Destroy()

	plaintext, err := enc.Decrypt(data)
	if err != nil {
		return false
	}
	ClearBytes(plaintext)
	return true
}

// Verify reports whether password opens c. A nil credential never verifies.
func (c *Credential) Verify(password string) bool {
	if c == nil {
		return false
	}
	return Decrypt(c.Data, password, c.Salt)
}
