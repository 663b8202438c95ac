package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	// stdout and stderr are swapped out in tests.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	quietMode bool
)

// SetQuietMode suppresses success and info output. Errors and warnings are
// still printed.
//
// Parameters:
//   - quiet: Whether quiet mode is enabled
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// PrintSuccess prints a success message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintSuccess(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, SuccessStyle.Render("✓ "+msg))
}

// PrintError prints an error message to stderr.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, ErrorStyle.Render("Error: "+msg))
}

// PrintWarning prints a warning message to stderr.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, WarningStyle.Render("⚠ "+msg))
}

// PrintInfo prints an informational message.
func PrintInfo(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, InfoStyle.Render(msg))
}

// PrintDim prints a dimmed message.
func PrintDim(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, DimStyle.Render(msg))
}

// PrintKeyValue prints a dimmed label followed by a value.
//
// Parameters:
//   - label: The field label
//   - value: The rendered value
func PrintKeyValue(label, value string) {
	fmt.Fprintf(stdout, "%s %s\n", DimStyle.Render(label+":"), value)
}

// PrintRaw prints text exactly as given with a trailing newline. Data output
// such as configs and logs goes through here so quiet mode never hides it.
func PrintRaw(text string) {
	fmt.Fprintln(stdout, text)
}
