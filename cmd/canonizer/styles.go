package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/benthepsychologist/go-canonizer/diff"
)

// Semantic styles for terminal output.
var (
	addStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")) // green
	removeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")) // red
	manualStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")) // yellow
	renameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")) // blue
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// renderDiff formats a schema diff for the terminal, one change per line,
// colored by how the change can be handled.
func renderDiff(d *diff.Diff) string {
	var b strings.Builder

	if d.IsEmpty() {
		b.WriteString(mutedStyle.Render("No structural changes."))
		b.WriteString("\n")
		return b.String()
	}

	for _, c := range d.Changes {
		line := fmt.Sprintf("%-12s %-30s %s", c.Type, c.Path, c.Description)
		switch {
		case c.Type == diff.Add && c.AutoPatchable:
			line = addStyle.Render("+ " + line)
		case c.Type == diff.Rename:
			line = renameStyle.Render("~ " + line)
		case c.Type == diff.Remove:
			line = removeStyle.Render("- " + line)
		default:
			line = manualStyle.Render("! " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d change(s)", len(d.Changes))))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  auto-patchable: %d  manual review: %d",
		d.AutoPatchableCount, d.ManualReviewCount)))
	b.WriteString("\n")
	return b.String()
}
