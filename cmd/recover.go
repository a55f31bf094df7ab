package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/illarion/hostlock/internal/api"
	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/crypto"
	"github.com/illarion/hostlock/internal/prompt"
	"github.com/illarion/hostlock/internal/recovery"
)

// Recover resets a forgotten password with the recovery key
func Recover(ctx context.Context, addr string) {
	client := api.NewClient(addr)

	cfg, err := client.Config(ctx)
	if err != nil {
		HandleError(err)
	}
	if cfg.RecoveryKeyHash == "" {
		HandleError(core.ErrNoRecoveryKey)
	}

	key, err := prompt.ReadLine("Enter recovery key: ")
	if err != nil {
		HandleError(err)
	}
	key = strings.ToUpper(strings.TrimSpace(key))
	if !recovery.Pattern.MatchString(key) {
		HandleError(core.ErrInvalidRecoveryKey)
	}

	newPassword, err := prompt.ReadPasswordConfirm("Enter new password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(newPassword)

	resp, err := client.Send(ctx, core.RecoveryRequest{RecoveryKey: key, NewPassword: string(newPassword)})
	if err != nil {
		HandleError(err)
	}
	if !resp.Success {
		HandleError(responseError(resp))
	}

	printRecoveryKey(resp.RecoveryKey)

	instanceID, _ := client.InstanceID(ctx)
	refreshKeyring(instanceID, newPassword)

	fmt.Println("password reset successfully")
}
