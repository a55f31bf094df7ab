package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/hostlock/internal/api"
	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/crypto"
)

// Unlock unlocks the host with the master password
func Unlock(ctx context.Context, addr string) {
	client := api.NewClient(addr)

	cfg, err := client.Config(ctx)
	if err != nil {
		HandleError(err)
	}
	if !cfg.PasswdSet() {
		HandleError(ErrNoPassword)
	}

	// Get instance ID for keyring lookup
	instanceID, _ := client.InstanceID(ctx)

	password, source, err := GetPasswordWithRetry("Enter password: ", instanceID, func(pw []byte) error {
		resp, err := client.Send(ctx, core.UnlockRequest{Passwd: string(pw)})
		if err != nil {
			return err
		}
		if !resp.Success {
			return core.ErrWrongPassword
		}
		return nil
	})
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	fmt.Println("unlocked")

	// Offer to save password if it was entered manually
	if source == SourcePrompt {
		OfferToSavePassword(instanceID, password)
	}
}
