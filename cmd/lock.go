package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/hostlock/internal/api"
)

// Lock locks the host, as a click on the toolbar icon does
func Lock(ctx context.Context, addr string) {
	client := api.NewClient(addr)

	if err := client.Icon(ctx); err != nil {
		HandleError(err)
	}

	cfg, err := client.Config(ctx)
	if err != nil {
		HandleError(err)
	}
	if !cfg.PasswdSet() {
		fmt.Println("no password set, setup window opened")
		return
	}
	fmt.Println("locked")
}
