// Package controller holds the upload page state machine. It knows nothing
// about terminals or HTTP: a host feeds it user gestures, renders its
// Affordances, and hands it a Submitter for the network call.
package controller

import (
	"context"
	"errors"
	"mime"
	"slices"
	"strconv"
	"strings"

	"invoiceterm/internal/model"

	"go.uber.org/zap"
)

// InvalidFileMessage is shown when a picked or dropped file is not a CSV.
const InvalidFileMessage = "Please upload a valid CSV file."

const (
	csvMediaType = "text/csv"
	csvSuffix    = ".csv" // case-sensitive on purpose, see DESIGN.md
	errorPrefix  = "Error: "
	noResponse   = "no response from server"
)

// ErrNotAccepting is returned when a file arrives while a submission is in
// flight or results are on screen.
var ErrNotAccepting = errors.New("not accepting files in the current state")

// Alerter presents a message the user has to acknowledge.
type Alerter interface {
	Alert(message string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(message string)

func (f AlertFunc) Alert(message string) { f(message) }

// Picker is a file picker that remembers its last selection. Clearing it lets
// the user pick the same path again and still trigger acquisition.
type Picker interface {
	ClearSelection()
}

// Submitter sends a file to the processing endpoint. It must not return nil.
type Submitter interface {
	Submit(ctx context.Context, f model.File) model.SubmissionResult
}

// Affordances is what the host renders. Hosts must not keep the slices.
type Affordances struct {
	DropTargetVisible     bool
	DropTargetHighlighted bool

	FileInfoVisible bool
	Filename        string

	TriggerEnabled bool
	TriggerVisible bool
	LoadingVisible bool

	FormVisible    bool
	ResultsVisible bool

	TotalRows  string
	Processed  string
	EmailsSent string

	DownloadListVisible bool
	Downloads           []model.InvoiceLink

	ErrorListVisible bool
	ErrorLines       []string
}

func idleAffordances() Affordances {
	return Affordances{
		DropTargetVisible: true,
		TriggerVisible:    true,
		FormVisible:       true,
		TotalRows:         "0",
		Processed:         "0",
		EmailsSent:        "0",
	}
}

// UploadController owns the selected file and the page affordances. It is
// not safe for concurrent use; hosts call it from their event loop.
type UploadController struct {
	file       *model.File
	view       Affordances
	failed     bool
	submitting *Submission

	alerter Alerter
	picker  Picker
	log     *zap.Logger
}

// Option configures an UploadController.
type Option func(*UploadController)

// WithPicker sets the picker whose selection is cleared on remove and reset.
func WithPicker(p Picker) Option {
	return func(c *UploadController) { c.picker = p }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *zap.Logger) Option {
	return func(c *UploadController) { c.log = l }
}

// New returns a controller in the Idle state.
func New(alerter Alerter, opts ...Option) *UploadController {
	c := &UploadController{
		view:    idleAffordances(),
		alerter: alerter,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State derives the UI state from the controller's fields.
func (c *UploadController) State() model.UIState {
	switch {
	case c.file == nil:
		return model.Idle
	case c.submitting != nil:
		return model.Submitting
	case c.view.ResultsVisible:
		return model.ResultsShown
	case c.failed:
		return model.ErrorShown
	default:
		return model.FileReady
	}
}

// View returns a snapshot of the affordances.
func (c *UploadController) View() Affordances {
	v := c.view
	v.Downloads = slices.Clone(c.view.Downloads)
	v.ErrorLines = slices.Clone(c.view.ErrorLines)
	return v
}

// SelectedFile returns the current file, if any.
func (c *UploadController) SelectedFile() (model.File, bool) {
	if c.file == nil {
		return model.File{}, false
	}
	return *c.file, true
}

// Drag lifecycle. The highlight is purely visual. Every handler reports
// true: the host must not run its own default action for the event
// (opening or navigating to the dragged file).

func (c *UploadController) DragEnter() bool {
	c.view.DropTargetHighlighted = true
	return true
}

func (c *UploadController) DragOver() bool {
	c.view.DropTargetHighlighted = true
	return true
}

func (c *UploadController) DragLeave() bool {
	c.view.DropTargetHighlighted = false
	return true
}

// Drop ends a drag on the drop-target and acquires the first dropped file.
func (c *UploadController) Drop(files []model.File) error {
	c.view.DropTargetHighlighted = false
	return c.acquire("drop", files)
}

// Select acquires the first file chosen in the picker.
func (c *UploadController) Select(files []model.File) error {
	return c.acquire("select", files)
}

// Validate accepts a file whose declared type is text/csv or whose name ends
// in ".csv".
func Validate(f model.File) error {
	if isCSVMediaType(f.ContentType) || strings.HasSuffix(f.Name, csvSuffix) {
		return nil
	}
	return &model.ValidationError{Name: f.Name, Reason: InvalidFileMessage}
}

func isCSVMediaType(ct string) bool {
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == csvMediaType
}

func (c *UploadController) acquire(event string, files []model.File) error {
	if len(files) == 0 {
		return nil
	}
	from := c.State()
	if from == model.Submitting || from == model.ResultsShown {
		return ErrNotAccepting
	}

	f := files[0]
	if err := Validate(f); err != nil {
		c.log.Info("File rejected", zap.String("event", event), zap.String("name", f.Name), zap.String("content_type", f.ContentType))
		c.alert(InvalidFileMessage)
		return err
	}

	c.file = &f
	c.failed = false
	c.view.Filename = f.Name
	c.view.DropTargetVisible = false
	c.view.FileInfoVisible = true
	c.view.TriggerEnabled = true
	c.logTransition(event, from)
	return nil
}

// RemoveFile drops the selected file. It does nothing while a submission is
// in flight or results are shown; the file-info control is not on screen then.
func (c *UploadController) RemoveFile() bool {
	from := c.State()
	if from != model.FileReady && from != model.ErrorShown {
		return false
	}
	c.file = nil
	c.failed = false
	c.clearPicker()
	c.view.Filename = ""
	c.view.DropTargetVisible = true
	c.view.FileInfoVisible = false
	c.view.TriggerEnabled = false
	c.logTransition("remove", from)
	return true
}

// Reset returns to Idle from any state. A submission still in flight is
// detached: its result is dropped when it arrives.
func (c *UploadController) Reset() {
	from := c.State()
	c.file = nil
	c.failed = false
	c.submitting = nil
	c.clearPicker()
	c.view = idleAffordances()
	c.logTransition("reset", from)
}

// Submission owns the loading indicator for one upload.
type Submission struct {
	File model.File

	c    *UploadController
	done bool
}

// BeginSubmission hides the trigger and shows the loading indicator in one
// step. It refuses unless a file is ready (or the last attempt failed and the
// user retries).
func (c *UploadController) BeginSubmission() (*Submission, bool) {
	from := c.State()
	if from != model.FileReady && from != model.ErrorShown {
		return nil, false
	}
	c.failed = false
	s := &Submission{File: *c.file, c: c}
	c.submitting = s
	c.view.TriggerVisible = false
	c.view.LoadingVisible = true
	c.logTransition("submit", from)
	return s, true
}

// Settle applies the outcome of the upload and then hides the loading
// indicator, whatever the outcome. Settling twice is a no-op.
func (s *Submission) Settle(res model.SubmissionResult) {
	if s.done {
		return
	}
	defer s.release()

	c := s.c
	if c.submitting != s {
		c.log.Info("Dropping result of a detached submission", zap.String("file", s.File.Name))
		return
	}
	switch r := res.(type) {
	case model.Success:
		c.renderResults(r)
	case model.Failure:
		c.showError(r.Message)
	default:
		c.showError(noResponse)
	}
}

func (s *Submission) release() {
	if s.done {
		return
	}
	s.done = true
	c := s.c
	if c.submitting != s {
		return
	}
	from := c.State()
	c.submitting = nil
	c.view.LoadingVisible = false
	c.logTransition("settled", from)
}

// Submit runs a whole submission synchronously. It reports false when no
// submission could start.
func (c *UploadController) Submit(ctx context.Context, sub Submitter) bool {
	s, ok := c.BeginSubmission()
	if !ok {
		return false
	}
	defer s.release()
	s.Settle(sub.Submit(ctx, s.File))
	return true
}

func (c *UploadController) renderResults(r model.Success) {
	c.view.FormVisible = false
	c.view.ResultsVisible = true

	c.view.TotalRows = strconv.Itoa(r.TotalRows)
	c.view.Processed = strconv.Itoa(r.Processed)
	c.view.EmailsSent = strconv.Itoa(r.EmailsSent)

	c.view.Downloads = slices.Clone(r.Invoices)
	c.view.DownloadListVisible = len(c.view.Downloads) > 0

	c.view.ErrorLines = nil
	for _, e := range r.Errors {
		c.view.ErrorLines = append(c.view.ErrorLines, FormatRowError(e))
	}
	c.view.ErrorListVisible = len(c.view.ErrorLines) > 0
}

// FormatRowError renders "Row 5: a, b", or just "a, b" for errors that are
// not tied to a row.
func FormatRowError(e model.RowError) string {
	msgs := strings.Join(e.Messages, ", ")
	if e.Row == model.RowNotApplicable {
		return msgs
	}
	return "Row " + e.Row + ": " + msgs
}

func (c *UploadController) showError(message string) {
	c.failed = true
	c.alert(errorPrefix + message)
	c.view.TriggerVisible = true
}

func (c *UploadController) alert(message string) {
	if c.alerter != nil {
		c.alerter.Alert(message)
	}
}

func (c *UploadController) clearPicker() {
	if c.picker != nil {
		c.picker.ClearSelection()
	}
}

func (c *UploadController) logTransition(event string, from model.UIState) {
	c.log.Debug("Upload state changed",
		zap.String("event", event),
		zap.Stringer("from", from),
		zap.Stringer("to", c.State()),
	)
}
