package tui

import "github.com/charmbracelet/lipgloss"

var (
	cCyan       = lipgloss.Color("39")
	cRed        = lipgloss.Color("203")
	cGold       = lipgloss.Color("220")
	cBrightGray = lipgloss.Color("246")
	cWhite      = lipgloss.Color("255")

	styleTitle   = lipgloss.NewStyle().Foreground(cCyan).Bold(true)
	styleLabel   = lipgloss.NewStyle().Foreground(cGold).Bold(true)
	styleType    = lipgloss.NewStyle().Foreground(cBrightGray)
	styleRowName = lipgloss.NewStyle().Foreground(cBrightGray).Width(13)
	styleValue   = lipgloss.NewStyle().Foreground(cWhite)
	styleDim     = lipgloss.NewStyle().Foreground(cBrightGray).Italic(true)
	styleError   = lipgloss.NewStyle().Foreground(cRed)
)
