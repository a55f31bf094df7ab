package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/hostlock/internal/api"
)

// Status shows the lock state of the running daemon
func Status(ctx context.Context, addr string) {
	client := api.NewClient(addr)

	st, err := client.Status(ctx)
	if err != nil {
		HandleError(err)
	}
	cfg, err := client.Config(ctx)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("hostlock: running (%s)\n", addr)
	if st.Locked {
		fmt.Println("state: locked")
	} else {
		fmt.Println("state: unlocked")
	}
	if st.PanelOpened {
		fmt.Println("unlock panel: open")
	} else {
		fmt.Println("unlock panel: closed")
	}
	if cfg.PasswdSet() {
		fmt.Println("password: set")
	} else {
		fmt.Println("password: not set")
		fmt.Println("Use 'hostlock passwd' to set one")
	}
}
