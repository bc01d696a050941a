package model

import (
	"bytes"
	"io"
	"os"
)

// RowNotApplicable is the row label the server uses for errors that are not
// tied to a CSV row (email delivery, PDF generation).
const RowNotApplicable = "N/A"

// File is the file the user picked or dropped. Data, when set, takes
// precedence over Path.
type File struct {
	Name        string
	ContentType string
	Path        string
	Size        int64
	Data        []byte
}

// Reader opens the file payload for upload.
func (f File) Reader() (io.ReadCloser, error) {
	if f.Data != nil {
		return io.NopCloser(bytes.NewReader(f.Data)), nil
	}
	return os.Open(f.Path)
}

// InvoiceLink is one generated invoice artifact.
type InvoiceLink struct {
	Client string
	URL    string
}

// RowError groups the messages the server reported for one CSV row.
type RowError struct {
	Row      string
	Messages []string
}

// SubmissionResult is either Success or Failure.
type SubmissionResult interface {
	submissionResult()
}

// Success is a processed upload.
type Success struct {
	TotalRows  int
	Processed  int
	EmailsSent int
	Invoices   []InvoiceLink
	Errors     []RowError
}

// Failure is an upload the server rejected or that never got an answer.
type Failure struct {
	Message string
	Err     error
}

func (Success) submissionResult() {}
func (Failure) submissionResult() {}

// UIState is derived from the controller's fields, never stored.
type UIState int

const (
	Idle UIState = iota
	FileReady
	Submitting
	ResultsShown
	ErrorShown
)

func (s UIState) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileReady:
		return "file-ready"
	case Submitting:
		return "submitting"
	case ResultsShown:
		return "results-shown"
	case ErrorShown:
		return "error-shown"
	}
	return "unknown"
}
