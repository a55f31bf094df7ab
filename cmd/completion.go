package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_hostlock() {
    local cur prev words cword
    _init_completion || return

    local commands="serve unlock lock status passwd recover config keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        serve)
            if [[ "$prev" == "--config" ]]; then
                _filedir
            else
                COMPREPLY=($(compgen -W "--config" -- "$cur"))
            fi
            ;;
        unlock|lock|status|passwd|recover)
            COMPREPLY=($(compgen -W "--addr" -- "$cur"))
            ;;
        config)
            COMPREPLY=($(compgen -W "--addr --json" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status --addr" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _hostlock hostlock
`

const zshCompletion = `#compdef hostlock

_hostlock() {
    local -a commands
    commands=(
        'serve:Run the lock daemon'
        'unlock:Unlock with the master password'
        'lock:Lock now'
        'status:Show lock state'
        'passwd:Set or change the master password'
        'recover:Reset the password with the recovery key'
        'config:Show the stored credential record'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'hostlock commands' commands
            ;;
        args)
            case "${words[2]}" in
                serve)
                    _arguments '--config[Settings file]:file:_files'
                    ;;
                unlock|lock|status|passwd|recover)
                    _arguments '--addr[Daemon address]:address:'
                    ;;
                config)
                    _arguments \
                        '--addr[Daemon address]:address:' \
                        '--json[Print raw JSON]'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'hostlock commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_hostlock "$@"
`

const fishCompletion = `# hostlock fish completions

set -l commands serve unlock lock status passwd recover config keyring help completion

complete -c hostlock -f

# Commands
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a serve -d 'Run the lock daemon'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a unlock -d 'Unlock with the master password'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a lock -d 'Lock now'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show lock state'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Set or change the master password'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a recover -d 'Reset the password with the recovery key'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a config -d 'Show the stored credential record'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c hostlock -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# flags
complete -c hostlock -n "__fish_seen_subcommand_from serve" -l config -r -F -d 'Settings file'
complete -c hostlock -n "__fish_seen_subcommand_from unlock lock status passwd recover config keyring" -l addr -r -d 'Daemon address'
complete -c hostlock -n "__fish_seen_subcommand_from config" -l json -d 'Print raw JSON'

# keyring subcommands
complete -c hostlock -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c hostlock -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c hostlock -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
