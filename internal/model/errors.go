package model

import "fmt"

// ValidationError rejects a file before it reaches the network.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// ApplicationError is a response whose status is not "success".
type ApplicationError struct {
	Status  string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("server status %q: %s", e.Status, e.Message)
}

// TransportError covers requests that produced no usable response body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
