package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// tagline is shown under the name in the version banner.
const tagline = "Command-line client for the Octyne process manager"

// PrintBanner prints the octynectl name with version info.
//
// Parameters:
//   - version: The CLI version string to display
func PrintBanner(version string) {
	if quietMode {
		return
	}

	name := lipgloss.NewStyle().
		Foreground(Blue).
		Bold(true).
		PaddingLeft(2).
		Render("octynectl")
	fmt.Fprintln(stdout, name)

	taglineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		PaddingLeft(2)
	fmt.Fprintln(stdout, taglineStyle.Render(tagline))
	fmt.Fprintln(stdout)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		PaddingLeft(2)
	fmt.Fprintln(stdout, infoStyle.Render(fmt.Sprintf("Version: %s", version)))
	fmt.Fprintln(stdout, infoStyle.Render("Docs:    https://github.com/retrixe/octyne"))
	fmt.Fprintln(stdout)
}
