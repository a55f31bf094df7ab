package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/hostlock/internal/api"
	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/crypto"
	"github.com/illarion/hostlock/internal/prompt"
)

// Passwd sets the master password, or changes it when one is set
func Passwd(ctx context.Context, addr string) {
	client := api.NewClient(addr)

	cfg, err := client.Config(ctx)
	if err != nil {
		HandleError(err)
	}

	// Get instance ID for keyring lookup
	instanceID, _ := client.InstanceID(ctx)

	var req core.PasswdRequest
	if cfg.PasswdSet() {
		// Get current password with retry on stale keyring
		current, _, err := GetPasswordWithRetry("Enter current password: ", instanceID, func(pw []byte) error {
			if !cfg.Passwd.Verify(string(pw)) {
				return core.ErrWrongPassword
			}
			return nil
		})
		if err != nil {
			HandleError(err)
		}
		last := string(current)
		crypto.ClearBytes(current)
		req.PasswdLast = &last
	}

	newPassword, err := prompt.ReadPasswordConfirm("Enter new password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(newPassword)
	req.PasswdNew = string(newPassword)

	resp, err := client.Send(ctx, req)
	if err != nil {
		HandleError(err)
	}
	if !resp.Success {
		HandleError(responseError(resp))
	}

	printRecoveryKey(resp.RecoveryKey)
	refreshKeyring(instanceID, newPassword)

	if cfg.PasswdSet() {
		fmt.Println("password changed successfully")
	} else {
		fmt.Println("password set")
	}
}
