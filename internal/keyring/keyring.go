// Package keyring caches the master password in the OS keyring, keyed by
// the store's instance ID.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "hostlock"

var ErrNotFound = keyring.ErrNotFound

// SavePassword stores a password in the OS keyring
func SavePassword(instanceID string, password string) error {
	if instanceID == "" {
		return errors.New("instance ID is required")
	}
	return keyring.Set(serviceName, instanceID, password)
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(instanceID string) (string, error) {
	return keyring.Get(serviceName, instanceID)
}

// DeletePassword removes a password from the OS keyring
func DeletePassword(instanceID string) error {
	return keyring.Delete(serviceName, instanceID)
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(instanceID string) bool {
	_, err := keyring.Get(serviceName, instanceID)
	return err == nil
}
