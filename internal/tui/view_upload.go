package tui

import (
	"strings"

	"invoiceterm/internal/controller"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingTop(1)

	dropTargetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(1, 2)

	dropTargetHighlightStyle = dropTargetStyle.
					BorderForeground(lipgloss.Color("39"))

	fileInfoStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("35")).
			Padding(0, 1)

	triggerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("33")).
			Padding(0, 2)

	triggerDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// uploadForm renders the drop-target, file-info, trigger and loading
// indicator exactly as the affordances say.
func (m *AppModel) uploadForm(v controller.Affordances) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Generate invoices from a CSV"))
	b.WriteString("\n")

	if v.DropTargetVisible {
		style := dropTargetStyle
		if v.DropTargetHighlighted {
			style = dropTargetHighlightStyle
		}
		b.WriteString(style.Render("Drag & drop your CSV here\n\n" + m.dropInput.View()))
		b.WriteString("\n")
	}

	if v.FileInfoVisible {
		b.WriteString(fileInfoStyle.Render("📄 " + v.Filename + "   (x: remove)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.TriggerVisible {
		if v.TriggerEnabled {
			b.WriteString(triggerStyle.Render("Generate Invoices"))
		} else {
			b.WriteString(triggerDisabledStyle.Render("Generate Invoices"))
		}
		b.WriteString("\n")
	}
	if v.LoadingVisible {
		b.WriteString(m.spinner.View() + loadingStyle.Render(" Processing your file..."))
		b.WriteString("\n")
	}

	b.WriteString(uploadFooter(v))
	return b.String()
}

func uploadFooter(v controller.Affordances) string {
	switch {
	case v.LoadingVisible:
		return footerStyle.Render("ctrl+f: faq  ctrl+c: quit")
	case v.DropTargetVisible:
		return footerStyle.Render("paste/drop a file or type a path + enter  ctrl+o: browse  ctrl+f: faq  esc: quit")
	default:
		return footerStyle.Render("enter: generate invoices  x: remove file  ctrl+o: browse  ctrl+f: faq  q: quit")
	}
}
