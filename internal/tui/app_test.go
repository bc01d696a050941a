package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"invoiceterm/internal/controller"
	"invoiceterm/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	result    model.SubmissionResult
	submitted []model.File
	downloads []string
	opened    []string
}

func (f *fakeBackend) Submit(_ context.Context, file model.File) model.SubmissionResult {
	f.submitted = append(f.submitted, file)
	return f.result
}

func (f *fakeBackend) Download(_ context.Context, link, dir string) (string, error) {
	f.downloads = append(f.downloads, link)
	return filepath.Join(dir, filepath.Base(link)), nil
}

func (f *fakeBackend) OpenInBrowser(link string) error {
	f.opened = append(f.opened, link)
	return nil
}

func newTestApp(t *testing.T, res model.SubmissionResult) (*AppModel, *fakeBackend) {
	t.Helper()
	be := &fakeBackend{result: res}
	app := NewAppModel(be, Options{Endpoint: "http://hub.test", DownloadDir: t.TempDir(), StartDir: t.TempDir()})
	return app, be
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func paste(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Paste: true}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and every command it batches, returning the messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func settledMsg(t *testing.T, cmd tea.Cmd) submissionSettledMsg {
	t.Helper()
	for _, msg := range run(cmd) {
		if s, ok := msg.(submissionSettledMsg); ok {
			return s
		}
	}
	t.Fatal("no submissionSettledMsg produced")
	return submissionSettledMsg{}
}

func TestPasteDropsFile(t *testing.T) {
	app, _ := newTestApp(t, nil)
	path := writeFile(t, "march.csv", "Client Name\nAcme\n")

	app.Update(paste(path))

	ctrl := app.Controller()
	assert.Equal(t, model.FileReady, ctrl.State())
	v := ctrl.View()
	assert.Equal(t, "march.csv", v.Filename)
	assert.False(t, v.DropTargetHighlighted)
	assert.Empty(t, app.dropInput.Value(), "paste does not land in the input")
	assert.Contains(t, app.View(), "march.csv")
}

func TestPasteNonCSVShowsAlert(t *testing.T) {
	app, _ := newTestApp(t, nil)
	path := writeFile(t, "notes.txt", "hello")

	app.Update(paste(path))

	assert.Equal(t, model.Idle, app.Controller().State())
	assert.Contains(t, app.View(), controller.InvalidFileMessage)

	// Keys other than acknowledgement are swallowed by the alert.
	app.Update(key("x"))
	assert.Contains(t, app.View(), controller.InvalidFileMessage)

	app.Update(key("enter"))
	assert.NotContains(t, app.View(), controller.InvalidFileMessage)
}

func TestTypedPathSelectsFile(t *testing.T) {
	app, _ := newTestApp(t, nil)
	path := writeFile(t, "april.csv", "a\n")
	app.dropInput.SetValue(path)

	app.Update(key("enter"))

	assert.Equal(t, model.FileReady, app.Controller().State())
	assert.Empty(t, app.dropInput.Value())
}

func TestSubmitSuccessFlow(t *testing.T) {
	app, be := newTestApp(t, model.Success{
		TotalRows:  10,
		Processed:  8,
		EmailsSent: 3,
		Invoices:   []model.InvoiceLink{{Client: "Acme", URL: "/invoices/a.pdf"}, {Client: "Globex", URL: "/invoices/g.pdf"}},
		Errors:     []model.RowError{{Row: "5", Messages: []string{"Missing amount"}}},
	})
	app.Update(paste(writeFile(t, "march.csv", "a\n")))

	_, cmd := app.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, model.Submitting, app.Controller().State())
	assert.Contains(t, app.View(), "Processing your file")
	assert.NotContains(t, app.View(), "Generate Invoices")

	// A second enter while loading does nothing.
	_, again := app.Update(key("enter"))
	assert.Nil(t, again)

	app.Update(settledMsg(t, cmd))

	require.Len(t, be.submitted, 1)
	assert.Equal(t, "march.csv", be.submitted[0].Name)
	assert.Equal(t, model.ResultsShown, app.Controller().State())
	out := app.View()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Row 5: Missing amount")
	assert.NotContains(t, out, "Processing your file")

	app.Update(key("down"))
	_, dl := app.Update(key("d"))
	for _, msg := range run(dl) {
		app.Update(msg)
	}
	assert.Equal(t, []string{"/invoices/g.pdf"}, be.downloads)
	assert.Contains(t, app.View(), "Saved Globex invoice")

	_, open := app.Update(key("o"))
	run(open)
	assert.Equal(t, []string{"/invoices/g.pdf"}, be.opened)

	app.Update(key("r"))
	assert.Equal(t, model.Idle, app.Controller().State())
	assert.NotContains(t, app.View(), "Acme")
	assert.True(t, app.dropInput.Focused())
}

func TestSubmitFailureFlow(t *testing.T) {
	app, be := newTestApp(t, model.Failure{Message: "Bad header"})
	app.Update(paste(writeFile(t, "march.csv", "a\n")))

	_, cmd := app.Update(key("enter"))
	app.Update(settledMsg(t, cmd))

	assert.Equal(t, model.ErrorShown, app.Controller().State())
	assert.Contains(t, app.View(), "Error: Bad header")
	app.Update(key("enter"))

	out := app.View()
	assert.Contains(t, out, "Generate Invoices")
	assert.Contains(t, out, "march.csv")

	// Retry without picking the file again.
	be.result = model.Success{Processed: 1}
	_, cmd = app.Update(key("enter"))
	app.Update(settledMsg(t, cmd))
	assert.Equal(t, model.ResultsShown, app.Controller().State())
	assert.Len(t, be.submitted, 2)
}

func TestRemoveFileClearsPickerSelection(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.Update(paste(writeFile(t, "march.csv", "a\n")))
	app.picker.Path = "/somewhere/march.csv"

	app.Update(key("x"))

	assert.Equal(t, model.Idle, app.Controller().State())
	assert.Empty(t, app.picker.Path)
	assert.True(t, app.dropInput.Focused())
}

func TestFAQAccordion(t *testing.T) {
	f := newFAQ()
	require.GreaterOrEqual(t, len(f.items), 2)
	assert.Equal(t, -1, f.active)

	f.toggle(0)
	assert.Equal(t, 0, f.active)
	f.toggle(1)
	assert.Equal(t, 1, f.active, "opening one closes the other")
	f.toggle(1)
	assert.Equal(t, -1, f.active)
	f.toggle(99)
	assert.Equal(t, -1, f.active)

	f.move(-5)
	assert.Equal(t, 0, f.cursor)
	f.move(100)
	assert.Equal(t, len(f.items)-1, f.cursor)
}

func TestFAQViewStaysResponsiveWhileSubmitting(t *testing.T) {
	app, _ := newTestApp(t, model.Success{})
	app.Update(paste(writeFile(t, "march.csv", "a\n")))
	_, cmd := app.Update(key("enter"))

	app.Update(key("ctrl+f"))
	app.Update(key("enter"))
	assert.Equal(t, 0, app.faq.active)
	assert.Contains(t, app.View(), "Frequently asked questions")

	app.Update(key("esc"))
	app.Update(settledMsg(t, cmd))
	assert.Equal(t, model.ResultsShown, app.Controller().State())
}

func TestRenderResults(t *testing.T) {
	out := RenderResults(controller.Affordances{
		TotalRows:           "10",
		Processed:           "8",
		EmailsSent:          "3",
		DownloadListVisible: true,
		Downloads:           []model.InvoiceLink{{Client: "Acme", URL: "/f/1.pdf"}},
		ErrorListVisible:    true,
		ErrorLines:          []string{"Row 5: Missing amount"},
	})
	assert.Contains(t, out, "Total rows: 10\nProcessed: 8\nEmails sent: 3\n")
	assert.Contains(t, out, "Acme  /f/1.pdf")
	assert.Contains(t, out, "Row 5: Missing amount")

	empty := RenderResults(controller.Affordances{TotalRows: "0", Processed: "0", EmailsSent: "0"})
	assert.False(t, strings.Contains(empty, "Generated invoices"))
	assert.False(t, strings.Contains(empty, "Errors"))
}

func TestPickerSelectsFile(t *testing.T) {
	be := &fakeBackend{}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "march.csv"), []byte("a\n"), 0o644))
	app := NewAppModel(be, Options{StartDir: dir, DownloadDir: t.TempDir()})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	assert.Equal(t, viewPicker, app.view)
	for _, msg := range run(cmd) {
		app.Update(msg)
	}

	app.Update(key("enter"))

	assert.Equal(t, viewPage, app.view)
	assert.Equal(t, model.FileReady, app.Controller().State())
	f, ok := app.Controller().SelectedFile()
	require.True(t, ok)
	assert.Equal(t, "march.csv", f.Name)
	assert.Equal(t, filepath.Join(dir, "march.csv"), app.picker.Path)
}
