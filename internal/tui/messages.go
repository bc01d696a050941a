package tui

import (
	"invoiceterm/internal/controller"
	"invoiceterm/internal/model"
)

// Async message types for Bubble Tea commands.

type submissionSettledMsg struct {
	sub    *controller.Submission
	result model.SubmissionResult
}

type downloadResultMsg struct {
	client string
	path   string
	err    error
}

type openResultMsg struct {
	client string
	err    error
}

type statusMsg string
