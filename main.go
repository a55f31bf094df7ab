package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/illarion/hostlock/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(ctx, os.Args[2:])
	case "unlock":
		runClient(ctx, "unlock", os.Args[2:], cmd.Unlock)
	case "lock":
		runClient(ctx, "lock", os.Args[2:], cmd.Lock)
	case "status":
		runClient(ctx, "status", os.Args[2:], cmd.Status)
	case "passwd":
		runClient(ctx, "passwd", os.Args[2:], cmd.Passwd)
	case "recover":
		runClient(ctx, "recover", os.Args[2:], cmd.Recover)
	case "config":
		runConfig(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parse(fs *pflag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("serve", pflag.ExitOnError)
	configPath := fs.String("config", "", "Settings file (default $HOSTLOCK_CONFIG)")
	parse(fs, args)

	cmd.Serve(ctx, *configPath)
}

func runClient(ctx context.Context, name string, args []string, run func(context.Context, string)) {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	addr := fs.String("addr", cmd.DefaultAddr, "Daemon address")
	parse(fs, args)

	run(ctx, *addr)
}

func runConfig(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("config", pflag.ExitOnError)
	addr := fs.String("addr", cmd.DefaultAddr, "Daemon address")
	asJSON := fs.Bool("json", false, "Print the raw record as JSON")
	parse(fs, args)

	cmd.Config(ctx, *addr, *asJSON)
}

func runKeyring(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("keyring", pflag.ExitOnError)
	addr := fs.String("addr", cmd.DefaultAddr, "Daemon address")
	parse(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: hostlock keyring <save|delete|status>\n")
		os.Exit(1)
	}

	switch fs.Arg(0) {
	case "save":
		cmd.KeyringSave(ctx, *addr)
	case "delete":
		cmd.KeyringDelete(ctx, *addr)
	case "status":
		cmd.KeyringStatus(ctx, *addr)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", fs.Arg(0))
		fmt.Fprintf(os.Stderr, "Usage: hostlock keyring <save|delete|status>\n")
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: hostlock completion <bash|zsh|fish>\n")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("hostlock - Master password lock for a desktop host")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  hostlock <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve       Run the lock daemon")
	fmt.Println("  unlock      Unlock with the master password")
	fmt.Println("  lock        Lock now")
	fmt.Println("  status      Show lock state")
	fmt.Println("  passwd      Set or change the master password")
	fmt.Println("  recover     Reset a forgotten password with the recovery key")
	fmt.Println("  config      Show the stored credential record")
	fmt.Println("  keyring     Manage password in OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hostlock serve                  # Start the daemon")
	fmt.Println("  hostlock passwd                 # Set the master password")
	fmt.Println("  hostlock lock                   # Lock now")
	fmt.Println("  hostlock unlock                 # Unlock")
	fmt.Println()
	fmt.Println("Use 'hostlock help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "serve":
		fmt.Println("hostlock serve [--config FILE]")
		fmt.Println()
		fmt.Println("Runs the lock daemon on a loopback address.")
		fmt.Println("Settings are read from --config, then $HOSTLOCK_CONFIG.")
		fmt.Println("Without either, built-in defaults are used.")
		fmt.Println("When a password is set, the daemon starts locked.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --config FILE   YAML settings file")
	case "unlock":
		fmt.Println("hostlock unlock [--addr HOST:PORT]")
		fmt.Println()
		fmt.Println("Unlocks the host and restores the windows closed by the lock.")
		fmt.Println("The password is taken from $HOSTLOCK_PASSWORD, then the OS keyring,")
		fmt.Println("then a prompt. A stale keyring entry is removed.")
	case "lock":
		fmt.Println("hostlock lock [--addr HOST:PORT]")
		fmt.Println()
		fmt.Println("Locks the host now: every window is closed and the unlock panel shown.")
		fmt.Println("Without a password, opens the setup window instead.")
	case "status":
		fmt.Println("hostlock status [--addr HOST:PORT]")
		fmt.Println()
		fmt.Println("Shows whether the host is locked and the unlock panel is open.")
	case "passwd":
		fmt.Println("hostlock passwd [--addr HOST:PORT]")
		fmt.Println()
		fmt.Println("Sets the master password, or changes it after asking for the current one.")
		fmt.Println("Prints a new recovery key. Previous recovery keys stop working.")
	case "recover":
		fmt.Println("hostlock recover [--addr HOST:PORT]")
		fmt.Println()
		fmt.Println("Resets a forgotten password with the recovery key.")
		fmt.Println("Prints a new recovery key. The one used stops working.")
	case "config":
		fmt.Println("hostlock config [--addr HOST:PORT] [--json]")
		fmt.Println()
		fmt.Println("Shows the stored credential record. It contains no plaintext secrets.")
	case "keyring":
		fmt.Println("hostlock keyring <save|delete|status> [--addr HOST:PORT]")
		fmt.Println()
		fmt.Println("Manages the master password in the OS keyring.")
		fmt.Println()
		fmt.Println("Subcommands:")
		fmt.Println("  save      Save password to keyring")
		fmt.Println("  delete    Remove password from keyring")
		fmt.Println("  status    Check if password is stored")
	case "completion":
		fmt.Println("hostlock completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs a shell completion script.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  hostlock completion bash > /etc/bash_completion.d/hostlock")
		fmt.Println("  hostlock completion zsh > \"${fpath[1]}/_hostlock\"")
		fmt.Println("  hostlock completion fish > ~/.config/fish/completions/hostlock.fish")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}
