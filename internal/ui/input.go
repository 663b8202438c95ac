package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrPasswordMismatch is returned when the confirmation does not match.
var ErrPasswordMismatch = errors.New("passwords do not match")

var (
	// stdin is swapped out in tests.
	stdin io.Reader = os.Stdin

	// stdinReader is shared by prompts so buffered input is not lost
	// between consecutive calls.
	stdinReader *bufio.Reader
	stdinSource io.Reader
)

func lineReader() *bufio.Reader {
	if stdinReader == nil || stdinSource != stdin {
		stdinReader = bufio.NewReader(stdin)
		stdinSource = stdin
	}
	return stdinReader
}

// Prompt displays a prompt and reads user input.
//
// Parameters:
//   - message: The prompt message to display
//
// Returns:
//   - string: The user's input
//   - error: Any error that occurred
func Prompt(message string) (string, error) {
	fmt.Fprintf(stdout, "%s ", InfoStyle.Render(message))

	input, err := lineReader().ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}

	return strings.TrimSpace(input), nil
}

// PromptPassword reads a password without echo. When stdin is not a terminal
// the line is read as is, which lets scripts pipe passwords in.
//
// Parameters:
//   - message: The prompt message to display
//
// Returns:
//   - string: The password
//   - error: Any error that occurred
func PromptPassword(message string) (string, error) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return Prompt(message)
	}

	fmt.Fprintf(stdout, "%s ", InfoStyle.Render(message))
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// PromptNewPassword asks for a password twice and checks that both match.
func PromptNewPassword() (string, error) {
	pass, err := PromptPassword("New password for account:")
	if err != nil {
		return "", err
	}
	confirm, err := PromptPassword("Confirm password:")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", ErrPasswordMismatch
	}
	return pass, nil
}
