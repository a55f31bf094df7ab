package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0x42}, SaltSize)

	k1 := DeriveKey([]byte("hunter2"), salt, DefaultIters)
	k2 := DeriveKey([]byte("hunter2"), salt, DefaultIters)
	if !bytes.Equal(k1, k2) {
		t.Fatal("Same inputs produced different keys")
	}
	if len(k1) != KeySize {
		t.Errorf("Key length mismatch: got %d, want %d", len(k1), KeySize)
	}

	k3 := DeriveKey([]byte("hunter3"), salt, DefaultIters)
	if bytes.Equal(k1, k3) {
		t.Error("Different passwords produced the same key")
	}
}

func TestEncryptorRoundTrip(t *testing.T) {
	kdf, err := NewKDF()
	if err != nil {
		t.Fatalf("Failed to create KDF: %v", err)
	}
	if len(kdf.Salt) != SaltSize {
		t.Errorf("Salt length mismatch: got %d, want %d", len(kdf.Salt), SaltSize)
	}

	enc := NewEncryptor(kdf.DeriveKey([]byte("secret")))
	defer enc.Destroy()

	sealed, err := enc.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	if len(sealed) != NonceSize+len("payload")+TagSize {
		t.Errorf("Unexpected sealed length %d", len(sealed))
	}

	plain, err := enc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}
	if string(plain) != "payload" {
		t.Errorf("Plaintext mismatch: got %q", plain)
	}

	sealed[len(sealed)-1] ^= 0xff
	if _, err := enc.Decrypt(sealed); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed for tampered ciphertext, got %v", err)
	}

	if _, err := enc.Decrypt([]byte("short")); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Expected ErrInvalidCiphertext, got %v", err)
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	for _, password := range []string{"Abc123!", "x", "pässwörd with spaces"} {
		cred, err := Encrypt(password)
		if err != nil {
			t.Fatalf("Failed to encrypt %q: %v", password, err)
		}

		if !Decrypt(cred.Data, password, cred.Salt) {
			t.Errorf("Correct password %q rejected", password)
		}
		if Decrypt(cred.Data, password+"?", cred.Salt) {
			t.Errorf("Wrong password accepted for %q", password)
		}
		if !cred.Verify(password) {
			t.Errorf("Verify rejected correct password %q", password)
		}
	}
}

func TestCredentialLayout(t *testing.T) {
	cred, err := Encrypt("Abc123!")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	salt, err := hex.DecodeString(cred.Salt)
	if err != nil {
		t.Fatalf("Salt is not hex: %v", err)
	}
	if len(salt) != SaltSize {
		t.Errorf("Salt length mismatch: got %d, want %d", len(salt), SaltSize)
	}

	data, err := hex.DecodeString(cred.Data)
	if err != nil {
		t.Fatalf("Data is not hex: %v", err)
	}
	if len(data) != NonceSize+len("Abc123!")+TagSize {
		t.Errorf("Data length mismatch: got %d", len(data))
	}

	// Two encryptions of the same password never share salt or nonce
	other, err := Encrypt("Abc123!")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	if other.Salt == cred.Salt || other.Data == cred.Data {
		t.Error("Encrypt reused randomness")
	}
}

func TestEncryptEmptyPassword(t *testing.T) {
	cred, err := Encrypt("")
	if !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected ErrEmptyPassword, got %v", err)
	}
	if cred != nil {
		t.Error("Expected no credential for empty password")
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	cred, err := Encrypt("Abc123!")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	cases := []struct {
		name string
		data string
		salt string
	}{
		{"missing data", "", cred.Salt},
		{"missing salt", cred.Data, ""},
		{"odd salt", cred.Data, cred.Salt[:len(cred.Salt)-1]},
		{"non-hex salt", cred.Data, "zz" + cred.Salt[2:]},
		{"non-hex data", "zz" + cred.Data[2:], cred.Salt},
		{"truncated data", cred.Data[:20], cred.Salt},
	}
	for _, tc := range cases {
		if Decrypt(tc.data, "Abc123!", tc.salt) {
			t.Errorf("%s: expected false", tc.name)
		}
	}

	var nilCred *Credential
	if nilCred.Verify("Abc123!") {
		t.Error("Nil credential verified a password")
	}
}

func TestConstantTimeCompare(t *testing.T) {
	if !ConstantTimeCompare([]byte("abc"), []byte("abc")) {
		t.Error("Equal slices compared unequal")
	}
	if ConstantTimeCompare([]byte("abc"), []byte("abd")) {
		t.Error("Different slices compared equal")
	}
}
