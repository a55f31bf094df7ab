package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/hostlock/internal/api"
	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/crypto"
	"github.com/illarion/hostlock/internal/keyring"
	"github.com/illarion/hostlock/internal/prompt"
)

// KeyringSave saves the password to the OS keyring
func KeyringSave(ctx context.Context, addr string) {
	client := api.NewClient(addr)

	cfg, err := client.Config(ctx)
	if err != nil {
		HandleError(err)
	}
	if !cfg.PasswdSet() {
		HandleError(ErrNoPassword)
	}

	instanceID, err := client.InstanceID(ctx)
	if err != nil {
		HandleError(err)
	}

	// Prompt for password
	password, err := prompt.ReadPassword("Enter password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if !cfg.Passwd.Verify(string(password)) {
		HandleError(core.ErrWrongPassword)
	}

	// Save to keyring
	if err := keyring.SavePassword(instanceID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete(ctx context.Context, addr string) {
	instanceID, err := api.NewClient(addr).InstanceID(ctx)
	if err != nil {
		HandleError(err)
	}

	if err := keyring.DeletePassword(instanceID); err != nil {
		fmt.Println("No password stored in keyring")
		return
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(ctx context.Context, addr string) {
	instanceID, err := api.NewClient(addr).InstanceID(ctx)
	if err != nil {
		HandleError(err)
	}

	if keyring.HasPassword(instanceID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
