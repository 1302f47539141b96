package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cdtdelta/gachalink/internal/scanner"
)

// Colors match on dark terminals. Output that is not a terminal gets plain text.
const (
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
)

var (
	progressStyle = lipgloss.NewStyle().Foreground(colorMuted)
	freshStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	expiredStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
)

// styleProgress picks a style for a scanner progress message.
func styleProgress(msg string) string {
	if msg == scanner.MsgNotFound || strings.HasPrefix(msg, scanner.ExpiredPrefix) {
		return expiredStyle.Render(msg)
	}
	return progressStyle.Render(msg)
}

// styleState renders the fresh/expired column of the history listing.
func styleState(expired bool) string {
	if expired {
		return expiredStyle.Render("expired")
	}
	return freshStyle.Render("fresh  ")
}
