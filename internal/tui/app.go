package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"invoiceterm/internal/controller"
	"invoiceterm/internal/hub"
	"invoiceterm/internal/model"
	"invoiceterm/internal/util"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type viewState int

const (
	viewPage   viewState = iota // upload form or results, whichever the controller shows
	viewPicker                  // file picker
	viewFAQ                     // help accordion
)

// Backend is the processing endpoint as the UI needs it.
type Backend interface {
	controller.Submitter
	Download(ctx context.Context, link, dir string) (string, error)
	OpenInBrowser(link string) error
}

type AppModel struct {
	// Core state
	ctrl        *controller.UploadController
	backend     Backend
	endpoint    string
	downloadDir string
	log         *zap.Logger
	status      string

	// Alerts queued by the controller; the first one is on screen.
	alerts []string

	// View state machine
	view   viewState
	cursor int // selected download row
	faq    faqModel

	// Sub-models
	dropInput textinput.Model
	picker    filepicker.Model
	spinner   spinner.Model

	// Layout
	width, height int
}

// Options configures NewAppModel.
type Options struct {
	Endpoint    string
	DownloadDir string
	StartDir    string
	Logger      *zap.Logger
}

func NewAppModel(backend Backend, opts Options) *AppModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Drop a CSV file here, or type its path"
	ti.Prompt = "> "
	ti.Focus()

	fp := filepicker.New()
	fp.CurrentDirectory = opts.StartDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	m := &AppModel{
		backend:     backend,
		downloadDir: opts.DownloadDir,
		log:         log,
		endpoint:    opts.Endpoint,
		view:        viewPage,
		faq:         newFAQ(),
		dropInput:   ti,
		picker:      fp,
		spinner:     sp,
	}
	m.ctrl = controller.New(
		controller.AlertFunc(m.pushAlert),
		controller.WithPicker(m),
		controller.WithLogger(log),
	)
	return m
}

// Controller exposes the upload state machine, mainly for tests.
func (m *AppModel) Controller() *controller.UploadController { return m.ctrl }

func (m *AppModel) pushAlert(message string) {
	m.alerts = append(m.alerts, message)
}

// ClearSelection forgets the picker's last choice so the same path can be
// picked again.
func (m *AppModel) ClearSelection() {
	m.picker.Path = ""
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.picker.Init())
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dropInput.Width = max(msg.Width-6, 10)
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case submissionSettledMsg:
		msg.sub.Settle(msg.result)
		m.cursor = 0
		m.syncFocus()
		return m, nil

	case downloadResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Download for %s failed: %v", msg.client, msg.err)
		} else {
			m.status = fmt.Sprintf("Saved %s invoice to %s", msg.client, msg.path)
		}
		return m, clearStatusAfter(4 * time.Second)

	case openResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not open %s invoice: %v", msg.client, msg.err)
		} else {
			m.status = fmt.Sprintf("Opened %s invoice in browser", msg.client)
		}
		return m, clearStatusAfter(2 * time.Second)

	case spinner.TickMsg:
		if !m.ctrl.View().LoadingVisible {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		if string(msg) == "" {
			m.status = ""
		}
		return m, nil
	}

	// Directory listings arrive whether or not the picker is on screen.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	if m.view == viewPage {
		m.dropInput, cmd = m.dropInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	}

	// An alert blocks everything until acknowledged.
	if len(m.alerts) > 0 {
		switch key {
		case "enter", "esc", " ":
			m.alerts = m.alerts[1:]
		}
		return m, nil
	}

	if key == "ctrl+f" && m.view != viewPicker {
		if m.view == viewFAQ {
			m.view = viewPage
		} else {
			m.view = viewFAQ
		}
		m.syncFocus()
		return m, nil
	}

	switch m.view {
	case viewFAQ:
		return m.handleFAQKey(key)
	case viewPicker:
		return m.handlePickerKey(msg)
	}

	v := m.ctrl.View()
	switch {
	case v.ResultsVisible:
		return m.handleResultsKey(key, v)
	case v.LoadingVisible:
		// Nothing to trigger while the upload runs.
		return m, nil
	case v.DropTargetVisible:
		return m.handleDropTargetKey(msg)
	default:
		return m.handleFileInfoKey(key)
	}
}

// handleDropTargetKey covers the Idle form: a paste is a file drop, enter
// takes a typed path, ctrl+o opens the picker.
func (m *AppModel) handleDropTargetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		m.drop(string(msg.Runes))
		return m, nil
	}
	switch msg.String() {
	case "ctrl+o":
		return m.openPicker()
	case "esc":
		return m, tea.Quit
	case "enter":
		text := m.dropInput.Value()
		m.dropInput.Reset()
		m.acquire(text, m.ctrl.Select)
		m.syncFocus()
		return m, nil
	}
	var cmd tea.Cmd
	m.dropInput, cmd = m.dropInput.Update(msg)
	return m, cmd
}

// drop runs the drag lifecycle for pasted file paths. The paste never
// reaches the text input.
func (m *AppModel) drop(text string) {
	m.ctrl.DragEnter()
	m.ctrl.DragOver()
	m.acquire(text, m.ctrl.Drop)
	m.ctrl.DragLeave()
	m.syncFocus()
}

func (m *AppModel) acquire(text string, take func([]model.File) error) {
	paths := util.ParseDroppedPaths(text)
	if len(paths) == 0 {
		return
	}
	files, err := hub.FilesFromPaths(paths)
	if len(files) == 0 {
		m.log.Info("Dropped path unusable", zap.Strings("paths", paths), zap.Error(err))
		m.pushAlert(fmt.Sprintf("Cannot read %s: %v", paths[0], err))
		return
	}
	if err := take(files); err != nil {
		m.log.Debug("File not acquired", zap.Error(err))
	}
}

func (m *AppModel) handleFileInfoKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "g":
		return m.startSubmission()
	case "x", "backspace", "delete":
		m.ctrl.RemoveFile()
		m.syncFocus()
		return m, nil
	case "ctrl+o":
		return m.openPicker()
	}
	return m, nil
}

func (m *AppModel) startSubmission() (tea.Model, tea.Cmd) {
	sub, ok := m.ctrl.BeginSubmission()
	if !ok {
		return m, nil
	}
	backend := m.backend
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return submissionSettledMsg{sub: sub, result: backend.Submit(context.Background(), sub.File)}
	})
}

func (m *AppModel) handleResultsKey(key string, v controller.Affordances) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		m.ctrl.Reset()
		m.cursor = 0
		m.syncFocus()
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(v.Downloads)-1 {
			m.cursor++
		}
		return m, nil
	case "enter", "o":
		if inv, ok := m.selectedInvoice(v); ok {
			return m, m.openCmd(inv)
		}
		return m, nil
	case "d":
		if inv, ok := m.selectedInvoice(v); ok {
			m.status = fmt.Sprintf("Downloading %s invoice...", inv.Client)
			return m, m.downloadCmd(inv)
		}
		return m, nil
	}
	return m, nil
}

func (m *AppModel) selectedInvoice(v controller.Affordances) (model.InvoiceLink, bool) {
	if !v.DownloadListVisible || m.cursor < 0 || m.cursor >= len(v.Downloads) {
		return model.InvoiceLink{}, false
	}
	return v.Downloads[m.cursor], true
}

func (m *AppModel) openPicker() (tea.Model, tea.Cmd) {
	m.view = viewPicker
	m.dropInput.Blur()
	return m, m.picker.Init()
}

func (m *AppModel) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.view = viewPage
		m.syncFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.view = viewPage
		f, err := hub.FileFromPath(path)
		if err != nil {
			m.pushAlert(fmt.Sprintf("Cannot read %s: %v", path, err))
		} else if err := m.ctrl.Select([]model.File{f}); err != nil {
			m.log.Debug("File not acquired", zap.Error(err))
		}
		m.syncFocus()
	}
	return m, cmd
}

func (m *AppModel) handleFAQKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.view = viewPage
		m.syncFocus()
	case "up", "k":
		m.faq.move(-1)
	case "down", "j":
		m.faq.move(1)
	case "enter", " ":
		m.faq.toggle(m.faq.cursor)
	}
	return m, nil
}

// syncFocus keeps the text input focused only while the drop-target shows.
func (m *AppModel) syncFocus() {
	if m.view == viewPage && m.ctrl.View().DropTargetVisible {
		m.dropInput.Focus()
		return
	}
	m.dropInput.Blur()
}

// Commands

func (m *AppModel) openCmd(inv model.InvoiceLink) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return openResultMsg{client: inv.Client, err: backend.OpenInBrowser(inv.URL)}
	}
}

func (m *AppModel) downloadCmd(inv model.InvoiceLink) tea.Cmd {
	backend, dir := m.backend, m.downloadDir
	return func() tea.Msg {
		path, err := backend.Download(context.Background(), inv.URL, dir)
		return downloadResultMsg{client: inv.Client, path: path, err: err}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusMsg("")
	})
}

var alertStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("203")).
	Padding(1, 3)

// View renders the appropriate view based on current state.
func (m *AppModel) View() string {
	// A pending alert is modal
	if len(m.alerts) > 0 {
		return alertStyle.Render(m.alerts[0]+"\n\n"+footerStyle.Render("enter: OK")) + "\n"
	}

	var b strings.Builder
	switch m.view {
	case viewPicker:
		b.WriteString(titleStyle.Render("Pick a CSV file"))
		b.WriteString("\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(footerStyle.Render("enter: select  esc: back"))
	case viewFAQ:
		b.WriteString(m.faq.View())
	default:
		v := m.ctrl.View()
		if v.ResultsVisible {
			b.WriteString(m.resultsView(v))
		}
		if v.FormVisible {
			b.WriteString(m.uploadForm(v))
		}
	}

	if m.endpoint != "" {
		b.WriteString("\n")
		b.WriteString(statLabelStyle.Render("endpoint: " + m.endpoint))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	return b.String()
}
