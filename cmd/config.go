package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/illarion/hostlock/internal/api"
)

// Config prints the stored credential record
func Config(ctx context.Context, addr string, asJSON bool) {
	client := api.NewClient(addr)

	cfg, err := client.Config(ctx)
	if err != nil {
		HandleError(err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			HandleError(err)
		}
		return
	}

	if !cfg.PasswdSet() {
		fmt.Println("password: not set")
		return
	}
	fmt.Println("password: set")
	fmt.Printf("  salt: %d bytes\n", len(cfg.Passwd.Salt)/2)
	fmt.Printf("  data: %d bytes\n", len(cfg.Passwd.Data)/2)
	if cfg.RecoveryKeyHash != "" {
		fmt.Println("recovery key: set")
	} else {
		fmt.Println("recovery key: not set")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
	}
}
