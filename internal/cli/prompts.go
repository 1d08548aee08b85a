package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassword prompts for a new password with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPassword("Enter encryption password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < 8 {
		ethcrypto.ZeroBytes(password)
		return nil, ethrawerr.WithSuggestion(
			ethrawerr.ErrInvalidInput,
			"password must be at least 8 characters",
		)
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		ethcrypto.ZeroBytes(password)
		return nil, err
	}
	defer ethcrypto.ZeroBytes(confirm)

	if string(password) != string(confirm) {
		ethcrypto.ZeroBytes(password)
		return nil, ethrawerr.WithSuggestion(
			ethrawerr.ErrInvalidInput,
			"passwords do not match",
		)
	}

	return password, nil
}

// promptMnemonic reads a full mnemonic phrase from stdin.
func promptMnemonic() (string, error) {
	out(os.Stderr, "Enter mnemonic (all words on one line): ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", ethrawerr.WithSuggestion(ethrawerr.ErrInvalidInput, "no input provided")
	}

	mnemonic := strings.TrimSpace(line)
	if mnemonic == "" {
		return "", ethrawerr.WithSuggestion(ethrawerr.ErrInvalidInput, "no input provided")
	}
	return mnemonic, nil
}
