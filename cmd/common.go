package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/hostlock/internal/api"
	"github.com/illarion/hostlock/internal/config"
	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/prompt"
)

// DefaultAddr is where client commands look for the daemon
const DefaultAddr = config.DefaultListen

var ErrNoPassword = errors.New("no password set")

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintf(os.Stderr, "Error: hostlock is not running\n")
		fmt.Fprintf(os.Stderr, "Run 'hostlock serve' first\n")
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, core.ErrInvalidRecoveryKey):
		fmt.Fprintf(os.Stderr, "Error: invalid recovery key\n")
	case errors.Is(err, core.ErrNoRecoveryKey):
		fmt.Fprintf(os.Stderr, "Error: no recovery key set\n")
		fmt.Fprintf(os.Stderr, "Use 'hostlock passwd' to set a password first\n")
	case errors.Is(err, ErrNoPassword):
		fmt.Fprintf(os.Stderr, "Error: no password set\n")
		fmt.Fprintf(os.Stderr, "Use 'hostlock passwd' to set one\n")
	case errors.Is(err, prompt.ErrMismatch):
		fmt.Fprintf(os.Stderr, "Error: passwords do not match\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// responseError maps a failed response message back to its sentinel
func responseError(resp core.Response) error {
	for _, err := range []error{
		core.ErrWrongPassword,
		core.ErrInvalidRecoveryKey,
		core.ErrNoRecoveryKey,
		core.ErrEmptyPassword,
	} {
		if resp.Message == err.Error() {
			return err
		}
	}
	if resp.Message != "" {
		return errors.New(resp.Message)
	}
	return fmt.Errorf("%s request failed", resp.Type)
}

func printRecoveryKey(key string) {
	fmt.Println()
	fmt.Printf("Recovery key: %s\n", key)
	fmt.Println("Store it somewhere safe. It is shown only once and replaces any previous key.")
	fmt.Println()
}
