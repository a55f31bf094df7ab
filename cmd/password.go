package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/crypto"
	"github.com/illarion/hostlock/internal/keyring"
	"github.com/illarion/hostlock/internal/prompt"
)

// PasswordSource says where a password came from
type PasswordSource int

const (
	SourceEnv PasswordSource = iota
	SourceKeyring
	SourcePrompt
)

// GetPasswordWithRetry takes the password from HOSTLOCK_PASSWORD, then the
// keyring, then the terminal, and checks it with verify. A keyring entry
// that fails verification is removed and the user is prompted instead.
// The caller is responsible for calling crypto.ClearBytes on the result.
func GetPasswordWithRetry(msg string, instanceID string, verify func([]byte) error) ([]byte, PasswordSource, error) {
	if password := prompt.PasswordFromEnv(); password != nil {
		if err := verify(password); err != nil {
			crypto.ClearBytes(password)
			return nil, SourceEnv, err
		}
		return password, SourceEnv, nil
	}

	if instanceID != "" {
		if stored, err := keyring.GetPassword(instanceID); err == nil {
			password := []byte(stored)
			err := verify(password)
			if err == nil {
				return password, SourceKeyring, nil
			}
			crypto.ClearBytes(password)
			if !errors.Is(err, core.ErrWrongPassword) {
				return nil, SourceKeyring, err
			}
			fmt.Fprintf(os.Stderr, "warning: password in keyring is stale, removing it\n")
			keyring.DeletePassword(instanceID)
		}
	}

	password, err := prompt.ReadPassword(msg)
	if err != nil {
		return nil, SourcePrompt, err
	}
	if err := verify(password); err != nil {
		crypto.ClearBytes(password)
		return nil, SourcePrompt, err
	}
	return password, SourcePrompt, nil
}

// OfferToSavePassword asks to cache a prompted password in the keyring
func OfferToSavePassword(instanceID string, password []byte) {
	if instanceID == "" || keyring.HasPassword(instanceID) {
		return
	}
	if !prompt.Confirm("Save password to keyring?") {
		return
	}
	if err := keyring.SavePassword(instanceID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save to keyring: %s\n", err)
		return
	}
	fmt.Println("Password saved to keyring")
}

// refreshKeyring replaces a cached password after it was changed
func refreshKeyring(instanceID string, password []byte) {
	if instanceID == "" || !keyring.HasPassword(instanceID) {
		return
	}
	if err := keyring.SavePassword(instanceID, string(password)); err == nil {
		fmt.Println("Keyring updated with new password")
	}
}
