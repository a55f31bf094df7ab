package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestPasswordLifecycle(t *testing.T) {
	keyring.MockInit()
	id := "0123456789abcdef0123456789abcdef"

	if HasPassword(id) {
		t.Fatal("Expected empty keyring")
	}
	if _, err := GetPassword(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := SavePassword(id, "secret"); err != nil {
		t.Fatalf("Failed to save password: %v", err)
	}
	got, err := GetPassword(id)
	if err != nil {
		t.Fatalf("Failed to get password: %v", err)
	}
	if got != "secret" {
		t.Errorf("Password mismatch: got %q", got)
	}
	if HasPassword("other") {
		t.Error("Entries must be keyed by instance ID")
	}

	if err := DeletePassword(id); err != nil {
		t.Fatalf("Failed to delete password: %v", err)
	}
	if HasPassword(id) {
		t.Error("Password still present after delete")
	}
}

func TestSaveRequiresInstanceID(t *testing.T) {
	keyring.MockInit()
	if err := SavePassword("", "secret"); err == nil {
		t.Error("Expected error for empty instance ID")
	}
}
