package tui

import (
	"fmt"
	"strings"

	"invoiceterm/internal/controller"

	"github.com/charmbracelet/lipgloss"
)

var (
	statLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).PaddingTop(1)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	linkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true)
	rowErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// RenderResults is the plain text of the results container. The one-shot
// command prints it; the TUI decorates the same sections.
func RenderResults(v controller.Affordances) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total rows: %s\nProcessed: %s\nEmails sent: %s\n", v.TotalRows, v.Processed, v.EmailsSent)
	if v.DownloadListVisible {
		b.WriteString("\nGenerated invoices:\n")
		for _, inv := range v.Downloads {
			fmt.Fprintf(&b, "  %s  %s\n", inv.Client, inv.URL)
		}
	}
	if v.ErrorListVisible {
		b.WriteString("\nErrors:\n")
		for _, line := range v.ErrorLines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}

func (m *AppModel) resultsView(v controller.Affordances) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Processing complete"))
	b.WriteString("\n")

	stats := []string{
		stat("Total rows", v.TotalRows),
		stat("Processed", v.Processed),
		stat("Emails sent", v.EmailsSent),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, stats...))
	b.WriteString("\n")

	if v.DownloadListVisible {
		b.WriteString(sectionStyle.Render("Generated invoices"))
		b.WriteString("\n")
		for i, inv := range v.Downloads {
			cursor := "  "
			client := inv.Client
			if i == m.cursor {
				cursor = selectedStyle.Render("> ")
				client = selectedStyle.Render(client)
			}
			fmt.Fprintf(&b, "%s%s  %s\n", cursor, client, linkStyle.Render("Download"))
		}
	}

	if v.ErrorListVisible {
		b.WriteString(sectionStyle.Render("Errors"))
		b.WriteString("\n")
		for _, line := range v.ErrorLines {
			b.WriteString(rowErrorStyle.Render("• " + line))
			b.WriteString("\n")
		}
	}

	b.WriteString(resultsFooter(v))
	return b.String()
}

func stat(label, value string) string {
	return lipgloss.NewStyle().PaddingRight(4).Render(
		statValueStyle.Render(value) + "\n" + statLabelStyle.Render(label),
	)
}

func resultsFooter(v controller.Affordances) string {
	if v.DownloadListVisible {
		return footerStyle.Render("↑/↓: select  o: open in browser  d: download  r: upload another  q: quit")
	}
	return footerStyle.Render("r: upload another  q: quit")
}
