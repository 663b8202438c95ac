// Package ui provides terminal UI components using Charm libraries.
//
// This package contains the styling, message printing, prompts, tables and
// full-screen handling used by the octynectl commands.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Brand colors for octynectl.
var (
	// Primary brand color
	Blue = lipgloss.Color("#3B82F6")

	// Secondary colors
	Teal    = lipgloss.Color("#14B8A6")
	Red     = lipgloss.Color("#EF4444")
	Amber   = lipgloss.Color("#F59E0B")
	Green   = lipgloss.Color("#22C55E")
	Gray    = lipgloss.Color("#6B7280")
	DimGray = lipgloss.Color("#9CA3AF")
)

// Text styles.
var (
	// TitleStyle for main headings
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Blue)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// WarningStyle for warning messages
	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	// InfoStyle for informational messages
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	// DimStyle for less important text
	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	// AccentStyle for highlighted values
	AccentStyle = lipgloss.NewStyle().
			Foreground(Teal)
)

// App status styles.
var (
	StatusOnlineStyle = lipgloss.NewStyle().
				Foreground(Green)

	StatusOfflineStyle = lipgloss.NewStyle().
				Foreground(Gray)

	StatusCrashedStyle = lipgloss.NewStyle().
				Foreground(Red).
				Bold(true)
)
