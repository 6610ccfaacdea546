package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Palette. Clan branches are teal, in-laws and the deceased are dimmed.
var (
	colorClan  = lipgloss.Color("36")
	colorOK    = lipgloss.Color("35")
	colorWarn  = lipgloss.Color("220")
	colorFail  = lipgloss.Color("167")
	colorCmd   = lipgloss.Color("75")
	colorText  = lipgloss.Color("255")
	colorLabel = lipgloss.Color("245")
	colorMuted = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorClan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorClan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleHeader   = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	styleKey      = lipgloss.NewStyle().Foreground(colorLabel).PaddingRight(1)
	styleKinship  = lipgloss.NewStyle().Foreground(colorClan).Bold(true)
	styleSelected = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	styleCommand  = lipgloss.NewStyle().Foreground(colorCmd)
	styleSpinner  = lipgloss.NewStyle().Foreground(colorClan)
)

var statusIcons = map[string]lipgloss.Style{
	"✓": lipgloss.NewStyle().Foreground(colorOK),
	"✗": lipgloss.NewStyle().Foreground(colorFail),
	"!": lipgloss.NewStyle().Foreground(colorWarn),
	"›": lipgloss.NewStyle().Foreground(colorLabel),
}

// newTable returns a rounded table with muted borders. A row index of -1
// passed to the style func is the header row.
func newTable(style func(row, col int) lipgloss.Style, headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return style(row, col)
		})
	if len(headers) > 0 {
		t = t.Headers(headers...)
	}
	return t
}

func printStatus(icon, msg string) {
	fmt.Println(statusIcons[icon].Render(icon) + " " + msg)
}

func printSuccess(format string, args ...any) { printStatus("✓", fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { printStatus("✗", fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { printStatus("›", fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	printStatus("!", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

// printStats prints layout counts and whether the layout came from cache.
func printStats(personCount, edgeCount int, cached bool) {
	var parts []string
	if personCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d persons", personCount)))
	}
	if edgeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)))
	}
	if cached {
		parts = append(parts, styleSelected.UnsetBold().Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
