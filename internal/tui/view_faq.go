package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(4)
)

type faqItem struct {
	question string
	answer   string
}

// faqModel is an accordion: at most one answer is open.
type faqModel struct {
	items  []faqItem
	cursor int
	active int // -1 when every item is closed
}

func newFAQ() faqModel {
	return faqModel{
		active: -1,
		items: []faqItem{
			{
				"What columns does the CSV need?",
				"Client Name, Client Email, Invoice Amount and Due Date. The first row must be the header.",
			},
			{
				"Which date formats are accepted?",
				"YYYY-MM-DD is preferred. DD-MM-YYYY, MM/DD/YYYY and DD/MM/YYYY also work.",
			},
			{
				"What happens to rows with errors?",
				"They are skipped and listed after processing with their row number. Valid rows still get invoices.",
			},
			{
				"Are invoices emailed automatically?",
				"Yes, each generated invoice is sent to the row's Client Email. Failed deliveries show up in the error list.",
			},
			{
				"Where do the PDFs go?",
				"They stay on the server. Open them in your browser or download them into the configured download directory.",
			},
		},
	}
}

// toggle closes every other item and flips item i.
func (f *faqModel) toggle(i int) {
	if i < 0 || i >= len(f.items) {
		return
	}
	if f.active == i {
		f.active = -1
		return
	}
	f.active = i
}

func (f *faqModel) move(delta int) {
	f.cursor += delta
	if f.cursor < 0 {
		f.cursor = 0
	}
	if f.cursor >= len(f.items) {
		f.cursor = len(f.items) - 1
	}
}

func (f faqModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Frequently asked questions"))
	b.WriteString("\n")
	for i, it := range f.items {
		marker := "+ "
		if i == f.active {
			marker = "- "
		}
		q := questionStyle.Render(marker + it.question)
		if i == f.cursor {
			q = selectedStyle.Render(marker + it.question)
		}
		b.WriteString(q)
		b.WriteString("\n")
		if i == f.active {
			b.WriteString(answerStyle.Render(it.answer))
			b.WriteString("\n")
		}
	}
	b.WriteString(footerStyle.Render("↑/↓: move  enter: expand/collapse  esc: back"))
	return b.String()
}
