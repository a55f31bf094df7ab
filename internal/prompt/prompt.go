// Package prompt reads secrets from the terminal and the environment.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/illarion/hostlock/internal/crypto"
)

// PasswordEnv is read before prompting, for scripted use
const PasswordEnv = "HOSTLOCK_PASSWORD"

var ErrMismatch = errors.New("passwords do not match")

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm(prompt string) ([]byte, error) {
	password1, err := ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, ErrMismatch
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// ReadLine reads a visible line, used for recovery keys
func ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	var line string
	if _, err := fmt.Scanln(&line); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}

// Confirm asks a yes/no question, defaulting to yes
func Confirm(question string) bool {
	fmt.Print(question + " [Y/n]: ")
	var response string
	fmt.Scanln(&response)
	return response != "n" && response != "N" && response != "no"
}

// PasswordFromEnv reads the password from HOSTLOCK_PASSWORD
func PasswordFromEnv() []byte {
	password := os.Getenv(PasswordEnv)
	if password == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(password))
	copy(result, []byte(password))
	return result
}
