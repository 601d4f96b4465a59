// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ReadPassword reads a password from passwordFile, or prompts on the
// terminal when passwordFile is "" or "-". With confirm, the prompt
// asks twice and the entries must match.
func ReadPassword(passwordFile string, confirm bool) (string, error) {
	if passwordFile != "" && passwordFile != "-" {
		return readSecretFile(passwordFile)
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return "", Validation("no terminal available for interactive password prompt (use --password-file)")
	}

	password, err := promptPassword(stdinFileDescriptor, "Password: ")
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := promptPassword(stdinFileDescriptor, "Confirm password: ")
		if err != nil {
			return "", err
		}
		if again != password {
			return "", Validation("passwords do not match")
		}
	}
	if password == "" {
		return "", Validation("password is empty")
	}
	return password, nil
}

func promptPassword(fileDescriptor int, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	passwordBytes, err := term.ReadPassword(fileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", Internal("reading password: %w", err)
	}
	return string(passwordBytes), nil
}

// readSecretFile reads a secret from path, stripping trailing newlines.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Internal("reading %s: %w", path, err)
	}
	data = bytes.TrimRight(data, "\r\n")
	if len(data) == 0 {
		return "", Validation("file %s is empty (after stripping trailing newlines)", path)
	}
	return string(data), nil
}
