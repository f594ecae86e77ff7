package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	wideRule   = 70
	narrowRule = 50
)

var (
	green  = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#89F0CB"}
	yellow = lipgloss.AdaptiveColor{Light: "#A36A00", Dark: "#ECFD65"}
	red    = lipgloss.AdaptiveColor{Light: "#C42E37", Dark: "#FF5F87"}
	gray   = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	accent = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8CFF"}

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	okStyle      = lipgloss.NewStyle().Foreground(green)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	errStyle     = lipgloss.NewStyle().Foreground(red)
	faintStyle   = lipgloss.NewStyle().Foreground(gray)
	labelStyle   = lipgloss.NewStyle().Foreground(gray)
	keywordStyle = lipgloss.NewStyle().Foreground(accent)
)

func rule(ch string, n int) string {
	return faintStyle.Render(strings.Repeat(ch, n))
}

func ok(s string) string {
	return okStyle.Render("✓ " + s)
}

func warn(s string) string {
	return warnStyle.Render("⚠️  " + s)
}

func fail(s string) string {
	return errStyle.Render("✗ " + s)
}
